package api

import "time"

// TokenPair is the credential material returned by login endpoints.
// RefreshToken is absent on flows without refresh (admin login).
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// Performance is a performance listing entry.
type Performance struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	VenueName   string `json:"venueName"`
	Description string `json:"description,omitempty"`
}

// Schedule is one showing of a performance.
type Schedule struct {
	ID            int64     `json:"id"`
	PerformanceID int64     `json:"performanceId"`
	StartAt       time.Time `json:"startAt"`
	Round         int       `json:"round"`
}

// Section is a priced block of seats within a schedule.
type Section struct {
	ID        int64  `json:"id"`
	Name      string `json:"sectionName"`
	UnitPrice int64  `json:"unitPrice"`
}

// Seat is one seat within a section. Sold seats can never be selected.
type Seat struct {
	ID         int64  `json:"id"`
	RowLabel   string `json:"rowLabel"`
	SeatNumber int    `json:"seatNumber"`
	Sold       bool   `json:"sold"`
}

// PrereservationSection is a section eligible for pre-reservation, with its
// booking window and whether the current user has already applied.
type PrereservationSection struct {
	SectionID      int64     `json:"sectionId"`
	SectionName    string    `json:"sectionName"`
	BookingStartAt time.Time `json:"bookingStartAt"`
	BookingEndAt   time.Time `json:"bookingEndAt"`
	Applied        bool      `json:"applied"`
}

// Lottery entry statuses are backend-authoritative; this client only reads
// them.
const (
	LotteryStatusApplied   = "APPLIED"
	LotteryStatusWin       = "WIN"
	LotteryStatusLose      = "LOSE"
	LotteryStatusCancelled = "CANCELLED"
)

// LotteryEntry is a raffle application and its backend-reported outcome.
type LotteryEntry struct {
	ID         int64  `json:"id"`
	Status     string `json:"status"`
	ScheduleID int64  `json:"scheduleId"`
	Grade      string `json:"grade"`
	Quantity   int    `json:"quantity"`
}

// Payment methods accepted by the payment endpoint.
const (
	PaymentMethodCard           = "CARD"
	PaymentMethodVirtualAccount = "VIRTUAL_ACCOUNT"
	PaymentMethodEasyPay        = "EASY_PAY"
)

// Payment domain types distinguish what a payment finalizes.
const (
	PaymentDomainBooking = "BOOKING"
	PaymentDomainLottery = "LOTTERY"
)

// PaymentRequest drives the single payment endpoint. EntryID is set for
// lottery-win payments; SectionID and SeatIDs for direct bookings.
type PaymentRequest struct {
	DomainType    string  `json:"domainType"`
	PaymentMethod string  `json:"paymentMethod"`
	EntryID       int64   `json:"entryId,omitempty"`
	SectionID     int64   `json:"sectionId,omitempty"`
	SeatIDs       []int64 `json:"seatIds,omitempty"`
}

// Payment is the backend's record of a completed payment request.
type Payment struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
	Amount int64  `json:"amount"`
}
