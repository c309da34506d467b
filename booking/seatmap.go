package booking

import (
	"sort"

	"github.com/modubooking/go-booking-client/api"
)

// SeatState is the display state of one seat in the map.
type SeatState int

const (
	SeatAvailable SeatState = iota
	SeatSelected
	SeatSold
)

// SeatMap models the seat-selection step: sold seats are immutably disabled,
// the rest toggle between available and selected, and the total price is
// always selected count times the section's unit price.
type SeatMap struct {
	unitPrice int64
	seats     map[int64]api.Seat
	selected  map[int64]bool
}

// NewSeatMap builds a SeatMap for the seats of one section.
func NewSeatMap(seats []api.Seat, section api.Section) *SeatMap {
	byID := make(map[int64]api.Seat, len(seats))
	for _, seat := range seats {
		byID[seat.ID] = seat
	}
	return &SeatMap{
		unitPrice: section.UnitPrice,
		seats:     byID,
		selected:  make(map[int64]bool),
	}
}

// Toggle flips a seat between available and selected. Sold seats never
// toggle.
func (m *SeatMap) Toggle(seatID int64) error {
	seat, ok := m.seats[seatID]
	if !ok {
		return ErrSeatUnknown
	}
	if seat.Sold {
		return ErrSeatSold
	}
	if m.selected[seatID] {
		delete(m.selected, seatID)
	} else {
		m.selected[seatID] = true
	}
	return nil
}

// StateOf returns the display state of a seat. Unknown seats read as sold so
// they can never be offered.
func (m *SeatMap) StateOf(seatID int64) SeatState {
	seat, ok := m.seats[seatID]
	if !ok || seat.Sold {
		return SeatSold
	}
	if m.selected[seatID] {
		return SeatSelected
	}
	return SeatAvailable
}

// SelectedSeatIDs returns the selected seats in stable order.
func (m *SeatMap) SelectedSeatIDs() []int64 {
	ids := make([]int64, 0, len(m.selected))
	for id := range m.selected {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// SelectedCount returns the number of selected seats.
func (m *SeatMap) SelectedCount() int {
	return len(m.selected)
}

// TotalPrice is SelectedCount times the section unit price, exactly.
func (m *SeatMap) TotalPrice() int64 {
	return int64(len(m.selected)) * m.unitPrice
}
