// Package bookingfakes provides an in-memory backend standing in for the
// api.Client in orchestrator tests.
package bookingfakes

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/modubooking/go-booking-client/api"
	"github.com/modubooking/go-booking-client/booking"
)

var (
	_ booking.DirectAPI         = (*FakeBackend)(nil)
	_ booking.PrereservationAPI = (*FakeBackend)(nil)
	_ booking.LotteryAPI        = (*FakeBackend)(nil)
)

// FakeBackend implements the booking package's API interfaces over in-memory
// state. Errors can be injected per operation; call counters expose how many
// network calls an orchestrator actually issued.
type FakeBackend struct {
	lock sync.Mutex

	Performances map[int64]api.Performance
	ScheduleSets map[int64][]api.Schedule
	SectionSets  map[int64][]api.Section
	SeatSets     map[int64][]api.Seat // keyed by section ID
	Prereserve   map[int64][]api.PrereservationSection
	Entries      []api.LotteryEntry

	PerformanceErr error
	SchedulesErr   error
	SectionsErr    error
	SeatsErr       error
	PrereserveErr  error
	ApplyErr       error
	CreateEntryErr error
	PaymentErr     error

	ApplyCalls       int
	CreateEntryCalls int
	PaymentCalls     int

	// Block, when non-nil, is closed by the test to release in-flight
	// terminal calls, for exercising duplicate-submission suppression.
	Block chan struct{}

	nextID int64
}

// NewFakeBackend creates an empty backend.
func NewFakeBackend() *FakeBackend {
	return &FakeBackend{
		Performances: make(map[int64]api.Performance),
		ScheduleSets: make(map[int64][]api.Schedule),
		SectionSets:  make(map[int64][]api.Section),
		SeatSets:     make(map[int64][]api.Seat),
		Prereserve:   make(map[int64][]api.PrereservationSection),
		nextID:       1000,
	}
}

func (f *FakeBackend) Performance(ctx context.Context, id int64) (api.Performance, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.PerformanceErr != nil {
		return api.Performance{}, f.PerformanceErr
	}
	p, ok := f.Performances[id]
	if !ok {
		return api.Performance{}, &api.Error{Kind: api.KindNotFound, Status: 404, Message: "performance not found"}
	}
	return p, nil
}

func (f *FakeBackend) Schedules(ctx context.Context, performanceID int64) ([]api.Schedule, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.SchedulesErr != nil {
		return nil, f.SchedulesErr
	}
	return f.ScheduleSets[performanceID], nil
}

func (f *FakeBackend) Sections(ctx context.Context, scheduleID int64) ([]api.Section, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.SectionsErr != nil {
		return nil, f.SectionsErr
	}
	return f.SectionSets[scheduleID], nil
}

func (f *FakeBackend) Seats(ctx context.Context, scheduleID, sectionID int64) ([]api.Seat, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.SeatsErr != nil {
		return nil, f.SeatsErr
	}
	return f.SeatSets[sectionID], nil
}

func (f *FakeBackend) PrereservationSections(ctx context.Context, scheduleID int64) ([]api.PrereservationSection, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.PrereserveErr != nil {
		return nil, f.PrereserveErr
	}
	return f.Prereserve[scheduleID], nil
}

func (f *FakeBackend) ApplyPrereservation(ctx context.Context, scheduleID, sectionID int64) error {
	f.lock.Lock()
	f.ApplyCalls++
	err := f.ApplyErr
	f.lock.Unlock()
	f.waitIfBlocked()
	if err != nil {
		return err
	}

	f.lock.Lock()
	defer f.lock.Unlock()
	sections := f.Prereserve[scheduleID]
	for i := range sections {
		if sections[i].SectionID != sectionID {
			continue
		}
		if sections[i].Applied {
			return &api.Error{Kind: api.KindConflict, Status: 409, Message: "이미 신청한 구역입니다"}
		}
		sections[i].Applied = true
		return nil
	}
	return &api.Error{Kind: api.KindNotFound, Status: 404, Message: "section not found"}
}

func (f *FakeBackend) MyLotteryEntries(ctx context.Context) ([]api.LotteryEntry, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	return append([]api.LotteryEntry(nil), f.Entries...), nil
}

func (f *FakeBackend) CreateLotteryEntry(ctx context.Context, performanceID, scheduleID int64, grade string, quantity int) (api.LotteryEntry, error) {
	f.lock.Lock()
	f.CreateEntryCalls++
	err := f.CreateEntryErr
	f.lock.Unlock()
	f.waitIfBlocked()
	if err != nil {
		return api.LotteryEntry{}, err
	}

	f.lock.Lock()
	defer f.lock.Unlock()
	f.nextID++
	entry := api.LotteryEntry{
		ID:         f.nextID,
		Status:     api.LotteryStatusApplied,
		ScheduleID: scheduleID,
		Grade:      grade,
		Quantity:   quantity,
	}
	f.Entries = append(f.Entries, entry)
	return entry, nil
}

func (f *FakeBackend) CreatePayment(ctx context.Context, req api.PaymentRequest) (api.Payment, error) {
	f.lock.Lock()
	f.PaymentCalls++
	err := f.PaymentErr
	f.lock.Unlock()
	f.waitIfBlocked()
	if err != nil {
		return api.Payment{}, err
	}
	if req.PaymentMethod == "" {
		return api.Payment{}, errors.New("payment method missing")
	}

	f.lock.Lock()
	defer f.lock.Unlock()
	f.nextID++
	return api.Payment{ID: f.nextID, Status: "PAID"}, nil
}

func (f *FakeBackend) waitIfBlocked() {
	f.lock.Lock()
	block := f.Block
	f.lock.Unlock()
	if block != nil {
		<-block
	}
}
