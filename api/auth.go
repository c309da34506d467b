package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/modubooking/go-booking-client/credentials"
)

// Login exchanges email/password for a user token pair. The caller persists
// the pair; this method does not touch any credential store.
func (c *Client) Login(ctx context.Context, email, password string) (TokenPair, error) {
	var pair TokenPair
	err := c.post(ctx, "/login", "", map[string]string{
		"email":    email,
		"password": password,
	}, &pair)
	return pair, err
}

// Logout invalidates the user's session server-side. Callers must clear
// local credentials regardless of this call's outcome.
func (c *Client) Logout(ctx context.Context) error {
	return c.post(ctx, "/logout", credentials.PrincipalUser, nil, nil)
}

// AdminLogin authenticates the admin principal. Admin has no refresh flow,
// so only the access token of the returned pair is populated.
func (c *Client) AdminLogin(ctx context.Context, email, password string) (TokenPair, error) {
	var pair TokenPair
	err := c.post(ctx, "/admin/login", "", map[string]string{
		"email":    email,
		"password": password,
	}, &pair)
	return pair, err
}

// AdminLogout invalidates the admin session server-side.
func (c *Client) AdminLogout(ctx context.Context) error {
	return c.post(ctx, "/admin/logout", credentials.PrincipalAdmin, nil, nil)
}

// OAuthAuthorizeURL asks the backend for the external provider's
// authorization URL, including the redirect target the provider will send
// the user back to.
func (c *Client) OAuthAuthorizeURL(ctx context.Context, provider, redirectURI string) (string, error) {
	var out struct {
		AuthorizeURL string `json:"authorizeUrl"`
	}
	path := fmt.Sprintf("/oauth/%s/authorize-url", url.PathEscape(provider))
	if redirectURI != "" {
		path += "?redirect_uri=" + url.QueryEscape(redirectURI)
	}
	err := c.get(ctx, path, "", &out)
	return out.AuthorizeURL, err
}

// OAuthLogin exchanges the provider's authorization code for a session. This
// is the login-completion leg of the callback; the backend owns the actual
// code-for-token exchange with the provider.
func (c *Client) OAuthLogin(ctx context.Context, provider, code string) (TokenPair, error) {
	var pair TokenPair
	path := fmt.Sprintf("/oauth/%s/login", url.PathEscape(provider))
	err := c.post(ctx, path, "", map[string]string{"code": code}, &pair)
	return pair, err
}

// OAuthLink associates the external identity with the already-authenticated
// account. Does not return credential material: linking never changes the
// session.
func (c *Client) OAuthLink(ctx context.Context, provider, code, state string) error {
	path := fmt.Sprintf("/oauth/%s/link", url.PathEscape(provider))
	return c.post(ctx, path, credentials.PrincipalUser, map[string]string{
		"code":  code,
		"state": state,
	}, nil)
}

// RequestWithdrawalRecovery starts account recovery by sending a mail with a
// recovery token.
func (c *Client) RequestWithdrawalRecovery(ctx context.Context, email string) error {
	return c.post(ctx, "/withdrawal-recovery/email", "", map[string]string{"email": email}, nil)
}

// ConfirmWithdrawalRecovery completes account recovery with the mailed token.
func (c *Client) ConfirmWithdrawalRecovery(ctx context.Context, token string) error {
	return c.post(ctx, "/withdrawal-recovery/confirm", "", map[string]string{"token": token}, nil)
}
