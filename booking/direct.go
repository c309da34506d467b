package booking

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/modubooking/go-booking-client/api"
)

// DirectStep is the direct-booking wizard's position.
type DirectStep int

const (
	DirectStepSection DirectStep = iota
	DirectStepSeats
	DirectStepPayment
	DirectStepComplete
)

// DirectAPI is the slice of the backend client the direct flow needs.
type DirectAPI interface {
	Sections(ctx context.Context, scheduleID int64) ([]api.Section, error)
	Seats(ctx context.Context, scheduleID, sectionID int64) ([]api.Seat, error)
	CreatePayment(ctx context.Context, req api.PaymentRequest) (api.Payment, error)
}

// DirectFlow is the section -> seats -> payment wizard. Each step is gated
// on the previous step's output and the terminal payment call is issued at
// most once per flow instance.
type DirectFlow struct {
	api    DirectAPI
	logger zerolog.Logger

	mu       sync.Mutex
	step     DirectStep
	draft    DirectDraft
	sections []api.Section
	section  api.Section
	seatMap  *SeatMap
	payment  api.Payment
	latch    Latch
}

// NewDirectFlow starts a direct booking for one schedule.
func NewDirectFlow(directAPI DirectAPI, scheduleID int64, logger zerolog.Logger) (*DirectFlow, error) {
	if directAPI == nil {
		return nil, errors.New("[booking.NewDirectFlow] api is required")
	}
	if scheduleID == 0 {
		return nil, errors.New("[booking.NewDirectFlow] scheduleID is required")
	}
	return &DirectFlow{
		api:    directAPI,
		logger: logger,
		draft:  DirectDraft{ScheduleID: scheduleID},
	}, nil
}

// Step returns the wizard's current position.
func (f *DirectFlow) Step() DirectStep {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

// LoadSections fetches the schedule's sections for the first step.
func (f *DirectFlow) LoadSections(ctx context.Context) ([]api.Section, error) {
	f.mu.Lock()
	if f.step != DirectStepSection {
		f.mu.Unlock()
		return nil, ErrWrongStep
	}
	scheduleID := f.draft.ScheduleID
	f.mu.Unlock()

	sections, err := f.api.Sections(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.sections = sections
	f.mu.Unlock()
	return sections, nil
}

// ChooseSection fixes the section, loads its seat map, and advances to the
// seat step.
func (f *DirectFlow) ChooseSection(ctx context.Context, sectionID int64) error {
	f.mu.Lock()
	if f.step != DirectStepSection {
		f.mu.Unlock()
		return ErrWrongStep
	}
	var chosen *api.Section
	for i := range f.sections {
		if f.sections[i].ID == sectionID {
			chosen = &f.sections[i]
			break
		}
	}
	if chosen == nil {
		f.mu.Unlock()
		return errors.Errorf("[DirectFlow.ChooseSection] unknown section %d", sectionID)
	}
	section := *chosen
	scheduleID := f.draft.ScheduleID
	f.mu.Unlock()

	seats, err := f.api.Seats(ctx, scheduleID, sectionID)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.section = section
	f.draft.SectionID = sectionID
	if err := validatePartial(f.draft, "ScheduleID", "SectionID"); err != nil {
		return errors.Wrap(err, "[DirectFlow.ChooseSection] draft validation")
	}
	f.seatMap = NewSeatMap(seats, section)
	f.step = DirectStepSeats
	return nil
}

// ToggleSeat flips a seat's selection on the seat step.
func (f *DirectFlow) ToggleSeat(seatID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step != DirectStepSeats {
		return ErrWrongStep
	}
	return f.seatMap.Toggle(seatID)
}

// SeatMap exposes the seat-selection state for rendering.
func (f *DirectFlow) SeatMap() *SeatMap {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seatMap
}

// TotalPrice is the derived price of the current selection.
func (f *DirectFlow) TotalPrice() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seatMap == nil {
		return 0
	}
	return f.seatMap.TotalPrice()
}

// ConfirmSeats closes the seat step. It cannot advance with zero seats
// selected.
func (f *DirectFlow) ConfirmSeats() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step != DirectStepSeats {
		return ErrWrongStep
	}
	if f.seatMap.SelectedCount() == 0 {
		return ErrNoSeatsSelected
	}
	f.draft.SeatIDs = f.seatMap.SelectedSeatIDs()
	if err := validatePartial(f.draft, "ScheduleID", "SectionID", "SeatIDs"); err != nil {
		return errors.Wrap(err, "[DirectFlow.ConfirmSeats] draft validation")
	}
	f.step = DirectStepPayment
	return nil
}

// ChoosePaymentMethod records the payment method for the terminal step.
func (f *DirectFlow) ChoosePaymentMethod(method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step != DirectStepPayment {
		return ErrWrongStep
	}
	f.draft.PaymentMethod = method
	if err := validatePartial(f.draft, "PaymentMethod"); err != nil {
		f.draft.PaymentMethod = ""
		return errors.Wrap(err, "[DirectFlow.ChoosePaymentMethod] draft validation")
	}
	return nil
}

// Submit issues the terminal payment call carrying the selected seats and
// section reference. Duplicate invocations while the call is in flight, or
// after success, are suppressed by the latch; a failure reopens the step
// for retry.
func (f *DirectFlow) Submit(ctx context.Context) (api.Payment, error) {
	f.mu.Lock()
	if f.step != DirectStepPayment {
		f.mu.Unlock()
		return api.Payment{}, ErrWrongStep
	}
	if err := validateFull(f.draft); err != nil {
		f.mu.Unlock()
		return api.Payment{}, errors.Wrap(err, "[DirectFlow.Submit] draft validation")
	}
	req := api.PaymentRequest{
		DomainType:    api.PaymentDomainBooking,
		PaymentMethod: f.draft.PaymentMethod,
		SectionID:     f.draft.SectionID,
		SeatIDs:       f.draft.SeatIDs,
	}
	f.mu.Unlock()

	if !f.latch.Begin() {
		if f.latch.Done() {
			return api.Payment{}, ErrAlreadySubmitted
		}
		return api.Payment{}, ErrSubmissionInFlight
	}

	payment, err := f.api.CreatePayment(ctx, req)
	if err != nil {
		f.latch.Fail()
		return api.Payment{}, err
	}
	f.latch.Succeed()

	f.mu.Lock()
	f.payment = payment
	f.step = DirectStepComplete
	f.mu.Unlock()

	f.logger.Info().Int64("payment_id", payment.ID).Msg("direct booking completed")
	return payment, nil
}

// Submitting reports whether the terminal call is in flight, for disabling
// the submit control.
func (f *DirectFlow) Submitting() bool {
	return f.latch.InFlight()
}

// Payment returns the completed payment once the flow reached the read-only
// confirmation state.
func (f *DirectFlow) Payment() (api.Payment, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.payment, f.step == DirectStepComplete
}
