package api

import (
	"context"
	"fmt"

	"github.com/modubooking/go-booking-client/credentials"
)

// Admin-scoped venue management. These calls are authorized with the admin
// credential store's token, never the user's.

// CreateVenueSection adds a named section to a venue.
func (c *Client) CreateVenueSection(ctx context.Context, venueID int64, sectionName string) error {
	path := fmt.Sprintf("/admin/venues/%d/sections", venueID)
	return c.post(ctx, path, credentials.PrincipalAdmin, map[string]string{
		"sectionName": sectionName,
	}, nil)
}

// CreateVenueSeat adds a seat to a venue section.
func (c *Client) CreateVenueSeat(ctx context.Context, venueID, sectionID int64, rowLabel string, seatNumber int) error {
	path := fmt.Sprintf("/admin/venues/%d/seats", venueID)
	return c.post(ctx, path, credentials.PrincipalAdmin, map[string]any{
		"sectionId":  sectionID,
		"rowLabel":   rowLabel,
		"seatNumber": seatNumber,
	}, nil)
}
