package booking

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/modubooking/go-booking-client/api"
)

// WinPaymentFlow is the single forward path for a winning lottery entry:
// choose one of the three payment methods, confirm once, then rest on the
// completion screen until the automatic return to the entry list.
type WinPaymentFlow struct {
	api    LotteryAPI
	logger zerolog.Logger
	entry  api.LotteryEntry

	returnDelay time.Duration
	navigate    func(route string)

	mu      sync.Mutex
	method  string
	payment api.Payment
	timer   *time.Timer
	latch   Latch
}

// WinPaymentOption configures the flow.
type WinPaymentOption func(*WinPaymentFlow)

// WithAutoReturnDelay overrides the fixed delay before the automatic return
// (primarily for testing).
func WithAutoReturnDelay(d time.Duration) WinPaymentOption {
	return func(f *WinPaymentFlow) {
		f.returnDelay = d
	}
}

// NewWinPaymentFlow creates the payment flow for a winning entry. navigate
// is called with the entry-list route when the post-payment timer fires.
// Entries in any status other than WIN offer no payment action and are
// rejected here.
func NewWinPaymentFlow(lotteryAPI LotteryAPI, entry api.LotteryEntry, navigate func(route string), logger zerolog.Logger, options ...WinPaymentOption) (*WinPaymentFlow, error) {
	if lotteryAPI == nil {
		return nil, errors.New("[booking.NewWinPaymentFlow] api is required")
	}
	if !PaymentOffered(entry) {
		return nil, errors.Errorf("[booking.NewWinPaymentFlow] no payment action for entry status %s", entry.Status)
	}
	if navigate == nil {
		navigate = func(string) {}
	}

	f := &WinPaymentFlow{
		api:         lotteryAPI,
		logger:      logger,
		entry:       entry,
		returnDelay: autoReturnDelay,
		navigate:    navigate,
	}
	for _, opt := range options {
		opt(f)
	}
	return f, nil
}

// ChooseMethod records exactly one of the three payment methods.
func (f *WinPaymentFlow) ChooseMethod(method string) error {
	switch method {
	case api.PaymentMethodCard, api.PaymentMethodVirtualAccount, api.PaymentMethodEasyPay:
	default:
		return errors.Errorf("[WinPaymentFlow.ChooseMethod] unsupported payment method %q", method)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.method = method
	return nil
}

// Confirm issues the payment call carrying the entry reference and chosen
// method. On success the flow shows its completion state and schedules the
// automatic return to the entry list after the fixed delay.
func (f *WinPaymentFlow) Confirm(ctx context.Context) (api.Payment, error) {
	f.mu.Lock()
	method := f.method
	f.mu.Unlock()
	if method == "" {
		return api.Payment{}, errors.New("[WinPaymentFlow.Confirm] payment method not chosen")
	}

	if !f.latch.Begin() {
		if f.latch.Done() {
			return api.Payment{}, ErrAlreadySubmitted
		}
		return api.Payment{}, ErrSubmissionInFlight
	}

	payment, err := f.api.CreatePayment(ctx, api.PaymentRequest{
		DomainType:    api.PaymentDomainLottery,
		PaymentMethod: method,
		EntryID:       f.entry.ID,
	})
	if err != nil {
		f.latch.Fail()
		return api.Payment{}, err
	}
	f.latch.Succeed()

	f.mu.Lock()
	f.payment = payment
	f.timer = time.AfterFunc(f.returnDelay, func() {
		f.navigate(RouteEntryList)
	})
	f.mu.Unlock()

	f.logger.Info().
		Int64("entry_id", f.entry.ID).
		Str("method", method).
		Msg("lottery win paid")
	return payment, nil
}

// CancelAutoReturn stops the pending automatic navigation, for when the user
// navigates away manually before the timer fires.
func (f *WinPaymentFlow) CancelAutoReturn() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
}

// Confirming reports whether the payment call is in flight.
func (f *WinPaymentFlow) Confirming() bool {
	return f.latch.InFlight()
}

// Payment returns the completed payment, if any.
func (f *WinPaymentFlow) Payment() (api.Payment, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.payment, f.latch.Done()
}
