package api

import (
	"context"
	"fmt"

	"github.com/modubooking/go-booking-client/credentials"
)

// MyLotteryEntries lists the current user's lottery entries.
func (c *Client) MyLotteryEntries(ctx context.Context) ([]LotteryEntry, error) {
	var out []LotteryEntry
	err := c.get(ctx, "/lottery/entries", credentials.PrincipalUser, &out)
	return out, err
}

// CreateLotteryEntry submits a lottery entry for a performance schedule.
func (c *Client) CreateLotteryEntry(ctx context.Context, performanceID, scheduleID int64, grade string, quantity int) (LotteryEntry, error) {
	var out LotteryEntry
	path := fmt.Sprintf("/performances/%d/lottery-entries", performanceID)
	err := c.post(ctx, path, credentials.PrincipalUser, map[string]any{
		"scheduleId": scheduleID,
		"grade":      grade,
		"quantity":   quantity,
	}, &out)
	return out, err
}
