package api

import (
	"context"
	"fmt"

	"github.com/modubooking/go-booking-client/credentials"
)

// PrereservationSections lists the sections of a schedule that take
// pre-reservation applications, with their booking windows and the current
// user's applied state.
func (c *Client) PrereservationSections(ctx context.Context, scheduleID int64) ([]PrereservationSection, error) {
	var out []PrereservationSection
	path := fmt.Sprintf("/schedules/%d/prereservation-sections", scheduleID)
	err := c.get(ctx, path, credentials.PrincipalUser, &out)
	return out, err
}

// ApplyPrereservation applies the current user to one section. The backend
// enforces exactly-once per (user, section); a duplicate surfaces as a
// conflict-kind error which callers treat as already-applied.
func (c *Client) ApplyPrereservation(ctx context.Context, scheduleID, sectionID int64) error {
	path := fmt.Sprintf("/schedules/%d/prereservation-sections/%d/apply", scheduleID, sectionID)
	return c.post(ctx, path, credentials.PrincipalUser, nil, nil)
}
