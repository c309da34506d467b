package api

import (
	"context"

	"github.com/modubooking/go-booking-client/credentials"
)

// CreatePayment issues the terminal payment call for a booking or a
// lottery-win entry.
func (c *Client) CreatePayment(ctx context.Context, req PaymentRequest) (Payment, error) {
	var out Payment
	err := c.post(ctx, "/payments", credentials.PrincipalUser, req, &out)
	return out, err
}
