package booking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/modubooking/go-booking-client/api"
)

// AppliedLabel is the read-only label shown once a section application is
// confirmed.
const AppliedLabel = "신청 완료"

// PrereservationAPI is the slice of the backend client the pre-reservation
// flow needs.
type PrereservationAPI interface {
	Performance(ctx context.Context, id int64) (api.Performance, error)
	Schedules(ctx context.Context, performanceID int64) ([]api.Schedule, error)
	PrereservationSections(ctx context.Context, scheduleID int64) ([]api.PrereservationSection, error)
	ApplyPrereservation(ctx context.Context, scheduleID, sectionID int64) error
}

// SessionGate answers whether the user principal is authenticated.
type SessionGate interface {
	IsAuthenticated() bool
}

// SectionOffer is a pre-reservation section with its derived appliable state.
// Appliable holds only while the booking window contains now and the user
// has not already applied.
type SectionOffer struct {
	api.PrereservationSection
	Appliable bool
}

// PrereservationFlow is the authentication-gated application wizard: enter
// (concurrent context load) then apply per section, exactly once each.
type PrereservationFlow struct {
	api     PrereservationAPI
	gate    SessionGate
	logger  zerolog.Logger
	nowTime func() time.Time

	performanceID int64
	scheduleID    int64

	mu          sync.Mutex
	entered     bool
	performance api.Performance
	schedules   []api.Schedule
	sections    []api.PrereservationSection
	latches     map[int64]*Latch
}

// PrereservationOption configures the flow.
type PrereservationOption func(*PrereservationFlow)

// WithNowTime sets the clock used for booking-window checks (primarily for
// testing).
func WithNowTime(nowFunc func() time.Time) PrereservationOption {
	return func(f *PrereservationFlow) {
		f.nowTime = nowFunc
	}
}

// NewPrereservationFlow creates the flow for one performance schedule.
func NewPrereservationFlow(prereserveAPI PrereservationAPI, gate SessionGate, performanceID, scheduleID int64, logger zerolog.Logger, options ...PrereservationOption) (*PrereservationFlow, error) {
	if prereserveAPI == nil {
		return nil, errors.New("[booking.NewPrereservationFlow] api is required")
	}
	if gate == nil {
		return nil, errors.New("[booking.NewPrereservationFlow] session gate is required")
	}

	f := &PrereservationFlow{
		api:           prereserveAPI,
		gate:          gate,
		logger:        logger,
		nowTime:       time.Now,
		performanceID: performanceID,
		scheduleID:    scheduleID,
		latches:       make(map[int64]*Latch),
	}
	for _, opt := range options {
		opt(f)
	}
	return f, nil
}

// ReturnTo is the destination preserved across a login redirect.
func (f *PrereservationFlow) ReturnTo() string {
	return fmt.Sprintf("/performances/%d/schedules/%d/prereservation", f.performanceID, f.scheduleID)
}

// Enter gates on authentication and loads the performance and schedule
// context concurrently. Both loads must succeed; either failure aborts the
// step with a load error.
func (f *PrereservationFlow) Enter(ctx context.Context) error {
	if !f.gate.IsAuthenticated() {
		return &ErrLoginRequired{ReturnTo: f.ReturnTo()}
	}

	var (
		wg          sync.WaitGroup
		performance api.Performance
		schedules   []api.Schedule
		perfErr     error
		schedErr    error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		performance, perfErr = f.api.Performance(ctx, f.performanceID)
	}()
	go func() {
		defer wg.Done()
		schedules, schedErr = f.api.Schedules(ctx, f.performanceID)
	}()
	wg.Wait()

	if perfErr != nil {
		return errors.Wrap(perfErr, "[PrereservationFlow.Enter] load performance")
	}
	if schedErr != nil {
		return errors.Wrap(schedErr, "[PrereservationFlow.Enter] load schedules")
	}

	sections, err := f.api.PrereservationSections(ctx, f.scheduleID)
	if err != nil {
		return errors.Wrap(err, "[PrereservationFlow.Enter] load sections")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.performance = performance
	f.schedules = schedules
	f.sections = sections
	f.entered = true
	return nil
}

// Performance returns the loaded performance context.
func (f *PrereservationFlow) Performance() api.Performance {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.performance
}

// Offers derives the appliable state for every loaded section. The apply
// action is only offered while the booking window contains now and the
// section is not already applied.
func (f *PrereservationFlow) Offers() []SectionOffer {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.nowTime()
	offers := make([]SectionOffer, 0, len(f.sections))
	for _, section := range f.sections {
		offers = append(offers, SectionOffer{
			PrereservationSection: section,
			Appliable:             f.appliable(section, now),
		})
	}
	return offers
}

func (f *PrereservationFlow) appliable(section api.PrereservationSection, now time.Time) bool {
	if section.Applied {
		return false
	}
	return !now.Before(section.BookingStartAt) && now.Before(section.BookingEndAt)
}

// Apply submits the application for one section; the backend guarantees
// exactly-once per (user, section). A conflict answer means an earlier
// attempt or a second tab already applied, so it resolves to the
// applied state rather than a failure. The section flips to applied without
// a reload.
func (f *PrereservationFlow) Apply(ctx context.Context, sectionID int64) error {
	f.mu.Lock()
	if !f.entered {
		f.mu.Unlock()
		return ErrWrongStep
	}
	idx := -1
	now := f.nowTime()
	for i, section := range f.sections {
		if section.SectionID == sectionID {
			idx = i
			break
		}
	}
	if idx < 0 || !f.appliable(f.sections[idx], now) {
		f.mu.Unlock()
		return ErrSectionNotOffered
	}
	latch, ok := f.latches[sectionID]
	if !ok {
		latch = &Latch{}
		f.latches[sectionID] = latch
	}
	f.mu.Unlock()

	if !latch.Begin() {
		if latch.Done() {
			return nil
		}
		return ErrSubmissionInFlight
	}

	err := f.api.ApplyPrereservation(ctx, f.scheduleID, sectionID)
	if err != nil {
		if api.KindOf(err) == api.KindConflict {
			// Already applied: not a failure.
			f.logger.Info().Int64("section_id", sectionID).Msg("section was already applied")
			latch.Succeed()
			f.markApplied(idx)
			return nil
		}
		latch.Fail()
		return err
	}
	latch.Succeed()
	f.markApplied(idx)
	return nil
}

func (f *PrereservationFlow) markApplied(idx int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sections[idx].Applied = true
}

// Applying reports whether the application for sectionID is in flight.
func (f *PrereservationFlow) Applying(sectionID int64) bool {
	f.mu.Lock()
	latch, ok := f.latches[sectionID]
	f.mu.Unlock()
	return ok && latch.InFlight()
}
