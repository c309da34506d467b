package booking

import (
	"github.com/go-playground/validator/v10"
)

// Drafts accumulate a wizard's required fields across steps and are
// re-validated on every step transition, not just at submission. Nothing is
// persisted until the terminal call.

var validate = validator.New(validator.WithRequiredStructEnabled())

// DirectDraft is the direct-booking wizard's accumulated state.
type DirectDraft struct {
	ScheduleID    int64   `validate:"required"`
	SectionID     int64   `validate:"required"`
	SeatIDs       []int64 `validate:"min=1"`
	PaymentMethod string  `validate:"required,oneof=CARD VIRTUAL_ACCOUNT EASY_PAY"`
}

// LotteryDraft is the lottery wizard's accumulated state. Quantity defaults
// to 1 and must stay positive; Acknowledged records the user accepting that
// a win obliges payment.
type LotteryDraft struct {
	PerformanceID int64  `validate:"required"`
	ScheduleID    int64  `validate:"required"`
	Grade         string `validate:"required"`
	Quantity      int    `validate:"required,gt=0"`
	Acknowledged  bool   `validate:"eq=true"`
}

// validatePartial checks only the named fields of draft, so each step can
// confirm its own output without demanding fields from later steps.
func validatePartial(draft any, fields ...string) error {
	return validate.StructPartial(draft, fields...)
}

// validateFull checks the whole draft before the terminal call.
func validateFull(draft any) error {
	return validate.Struct(draft)
}
