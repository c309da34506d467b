package oauthflow

import (
	"context"
	"net/url"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/modubooking/go-booking-client/api"
)

// UI route destinations the flow resolves to.
const (
	RouteHome   = "/"
	RouteLogin  = "/login"
	RouteMyPage = "/my-page"
)

// ErrorInvalidCallback marks a redirect that arrived without the expected
// parameters.
const ErrorInvalidCallback = "invalid_callback"

// OAuthAPI is the slice of the backend client the flow needs.
type OAuthAPI interface {
	OAuthAuthorizeURL(ctx context.Context, provider, redirectURI string) (string, error)
	OAuthLogin(ctx context.Context, provider, code string) (api.TokenPair, error)
	OAuthLink(ctx context.Context, provider, code, state string) error
}

// SessionContext is the slice of the session manager the flow needs.
type SessionContext interface {
	IsAuthenticated() bool
	AdoptTokens(pair api.TokenPair)
}

// CallbackParams are the query parameters of the provider's redirect.
type CallbackParams struct {
	Code             string
	State            string
	Error            string
	ErrorDescription string
}

// Result is where the UI goes after the callback resolves. Message is the
// user-facing text to show at the destination, if any; error destinations
// also carry it as an ?error= marker on the route.
type Result struct {
	Ignored bool
	Route   string
	Message string
}

// handler one-shot states. Once the callback has been observed the handler
// never processes another, whatever the parameters.
type handlerState int

const (
	stateIdle handlerState = iota
	stateProcessing
	stateDone
)

// Flow drives the external-identity round trip: recording intent before the
// outbound redirect and resolving the inbound callback exactly once.
type Flow struct {
	api      OAuthAPI
	session  SessionContext
	intents  *IntentStore
	provider string
	logger   zerolog.Logger

	mu    sync.Mutex
	state handlerState
}

// NewFlow creates a Flow for the named provider.
func NewFlow(oauthAPI OAuthAPI, sess SessionContext, provider string, logger zerolog.Logger) (*Flow, error) {
	if oauthAPI == nil {
		return nil, errors.New("[oauthflow.NewFlow] api is required")
	}
	if sess == nil {
		return nil, errors.New("[oauthflow.NewFlow] session is required")
	}
	if provider == "" {
		return nil, errors.New("[oauthflow.NewFlow] provider is required")
	}
	return &Flow{
		api:      oauthAPI,
		session:  sess,
		intents:  NewIntentStore(),
		provider: provider,
		logger:   logger,
	}, nil
}

// BeginLogin fetches the provider's authorization URL for a login. No intent
// is recorded: login is the default interpretation of the callback.
func (f *Flow) BeginLogin(ctx context.Context, redirectURI string) (string, error) {
	return f.api.OAuthAuthorizeURL(ctx, f.provider, redirectURI)
}

// BeginLink fetches the authorization URL for linking the identity to the
// current account, and records the link intent immediately before the caller
// navigates. Only reachable while authenticated.
func (f *Flow) BeginLink(ctx context.Context, redirectURI string) (string, error) {
	if !f.session.IsAuthenticated() {
		return "", errors.New("[Flow.BeginLink] linking requires an authenticated session")
	}
	authorizeURL, err := f.api.OAuthAuthorizeURL(ctx, f.provider, redirectURI)
	if err != nil {
		return "", err
	}
	f.intents.Set(IntentLink)
	return authorizeURL, nil
}

// HandleCallback resolves the provider's redirect. The first invocation
// consumes the pending intent regardless of outcome and routes to
// exactly one destination; every later invocation is a no-op.
func (f *Flow) HandleCallback(ctx context.Context, params CallbackParams) Result {
	f.mu.Lock()
	if f.state != stateIdle {
		f.mu.Unlock()
		return Result{Ignored: true}
	}
	f.state = stateProcessing
	f.mu.Unlock()

	result := f.resolve(ctx, params)

	f.mu.Lock()
	f.state = stateDone
	f.mu.Unlock()
	return result
}

// Reset rearms the handler for a fresh provider round trip. The one-shot
// guard protects a single redirect return, not the process lifetime.
func (f *Flow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = stateIdle
}

func (f *Flow) resolve(ctx context.Context, params CallbackParams) Result {
	intent := f.intents.TakeAndClear()

	if params.Error != "" {
		f.logger.Warn().
			Str("intent", intent.String()).
			Str("error", params.Error).
			Msg("provider reported authorization error")
		return errorResult(intent, params.Error)
	}

	if params.Code == "" || params.State == "" {
		f.logger.Warn().Str("intent", intent.String()).Msg("malformed provider callback")
		return errorResult(intent, ErrorInvalidCallback)
	}

	if intent == IntentLink {
		return f.completeLink(ctx, params)
	}
	return f.completeLogin(ctx, params)
}

func (f *Flow) completeLogin(ctx context.Context, params CallbackParams) Result {
	pair, err := f.api.OAuthLogin(ctx, f.provider, params.Code)
	if err != nil {
		message := api.MessageOf(err)
		return Result{Route: withError(RouteLogin, message), Message: message}
	}
	f.session.AdoptTokens(pair)
	return Result{Route: RouteHome}
}

func errorResult(intent Intent, marker string) Result {
	route := RouteLogin
	if intent == IntentLink {
		route = RouteMyPage
	}
	return Result{Route: withError(route, marker), Message: marker}
}

func withError(route, marker string) string {
	return route + "?error=" + url.QueryEscape(marker)
}
