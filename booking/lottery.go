package booking

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/modubooking/go-booking-client/api"
)

// RouteEntryList is where the win-payment flow returns after its completion
// screen.
const RouteEntryList = "/my-page/lottery"

// autoReturnDelay gives the user time to read the payment confirmation
// before being moved back to the entry list.
const autoReturnDelay = 3 * time.Second

// LotteryStep is the lottery entry wizard's position.
type LotteryStep int

const (
	LotteryStepSchedule LotteryStep = iota
	LotteryStepGrade
	LotteryStepAcknowledge
	LotteryStepComplete
)

// LotteryAPI is the slice of the backend client the lottery flows need.
type LotteryAPI interface {
	Schedules(ctx context.Context, performanceID int64) ([]api.Schedule, error)
	CreateLotteryEntry(ctx context.Context, performanceID, scheduleID int64, grade string, quantity int) (api.LotteryEntry, error)
	MyLotteryEntries(ctx context.Context) ([]api.LotteryEntry, error)
	CreatePayment(ctx context.Context, req api.PaymentRequest) (api.Payment, error)
}

// LotteryFlow is the entry wizard: schedule -> grade/quantity ->
// acknowledgement -> submission. After a successful submission the flow is a
// read-only "entry complete" state; re-submission is impossible.
type LotteryFlow struct {
	api    LotteryAPI
	logger zerolog.Logger

	mu    sync.Mutex
	step  LotteryStep
	draft LotteryDraft
	entry api.LotteryEntry
	latch Latch
}

// NewLotteryFlow starts a lottery entry for one performance.
func NewLotteryFlow(lotteryAPI LotteryAPI, performanceID int64, logger zerolog.Logger) (*LotteryFlow, error) {
	if lotteryAPI == nil {
		return nil, errors.New("[booking.NewLotteryFlow] api is required")
	}
	if performanceID == 0 {
		return nil, errors.New("[booking.NewLotteryFlow] performanceID is required")
	}
	return &LotteryFlow{
		api:    lotteryAPI,
		logger: logger,
		draft:  LotteryDraft{PerformanceID: performanceID, Quantity: 1},
	}, nil
}

// Step returns the wizard's current position.
func (f *LotteryFlow) Step() LotteryStep {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

// LoadSchedules fetches the performance's dates and rounds for the first
// step.
func (f *LotteryFlow) LoadSchedules(ctx context.Context) ([]api.Schedule, error) {
	f.mu.Lock()
	if f.step != LotteryStepSchedule {
		f.mu.Unlock()
		return nil, ErrWrongStep
	}
	performanceID := f.draft.PerformanceID
	f.mu.Unlock()
	return f.api.Schedules(ctx, performanceID)
}

// ChooseSchedule fixes the date/round and advances to grade selection.
func (f *LotteryFlow) ChooseSchedule(scheduleID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step != LotteryStepSchedule {
		return ErrWrongStep
	}
	f.draft.ScheduleID = scheduleID
	if err := validatePartial(f.draft, "PerformanceID", "ScheduleID"); err != nil {
		f.draft.ScheduleID = 0
		return errors.Wrap(err, "[LotteryFlow.ChooseSchedule] draft validation")
	}
	f.step = LotteryStepGrade
	return nil
}

// ChooseGrade fixes the grade and quantity and advances to the
// acknowledgement step. Quantity 0 keeps the default of 1.
func (f *LotteryFlow) ChooseGrade(grade string, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step != LotteryStepGrade {
		return ErrWrongStep
	}
	if quantity == 0 {
		quantity = 1
	}
	prevGrade, prevQuantity := f.draft.Grade, f.draft.Quantity
	f.draft.Grade = grade
	f.draft.Quantity = quantity
	if err := validatePartial(f.draft, "Grade", "Quantity"); err != nil {
		f.draft.Grade, f.draft.Quantity = prevGrade, prevQuantity
		return errors.Wrap(err, "[LotteryFlow.ChooseGrade] draft validation")
	}
	f.step = LotteryStepAcknowledge
	return nil
}

// Acknowledge records the user accepting that a winning entry obliges
// payment. Submission is only reachable through it.
func (f *LotteryFlow) Acknowledge() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step != LotteryStepAcknowledge {
		return ErrWrongStep
	}
	f.draft.Acknowledged = true
	return nil
}

// Submit issues the terminal entry-creation call. The submit control must be
// disabled while the call is in flight (Submitting) and the flow transitions
// to a read-only complete state on success; a rapid double-click produces
// exactly one POST.
func (f *LotteryFlow) Submit(ctx context.Context) (api.LotteryEntry, error) {
	f.mu.Lock()
	if f.step != LotteryStepAcknowledge || !f.draft.Acknowledged {
		f.mu.Unlock()
		return api.LotteryEntry{}, ErrWrongStep
	}
	if err := validateFull(f.draft); err != nil {
		f.mu.Unlock()
		return api.LotteryEntry{}, errors.Wrap(err, "[LotteryFlow.Submit] draft validation")
	}
	draft := f.draft
	f.mu.Unlock()

	if !f.latch.Begin() {
		if f.latch.Done() {
			return api.LotteryEntry{}, ErrAlreadySubmitted
		}
		return api.LotteryEntry{}, ErrSubmissionInFlight
	}

	entry, err := f.api.CreateLotteryEntry(ctx, draft.PerformanceID, draft.ScheduleID, draft.Grade, draft.Quantity)
	if err != nil {
		f.latch.Fail()
		return api.LotteryEntry{}, err
	}
	f.latch.Succeed()

	f.mu.Lock()
	f.entry = entry
	f.step = LotteryStepComplete
	f.mu.Unlock()

	f.logger.Info().Int64("entry_id", entry.ID).Msg("lottery entry submitted")
	return entry, nil
}

// Submitting reports whether the terminal call is in flight.
func (f *LotteryFlow) Submitting() bool {
	return f.latch.InFlight()
}

// Entry returns the submitted entry once the flow completed.
func (f *LotteryFlow) Entry() (api.LotteryEntry, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entry, f.step == LotteryStepComplete
}

// PaymentOffered reports whether the payment action may be shown for an
// entry. Only WIN offers a forward path.
func PaymentOffered(entry api.LotteryEntry) bool {
	return entry.Status == api.LotteryStatusWin
}
