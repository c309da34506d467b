package oauthflow_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/modubooking/go-booking-client/api"
	"github.com/modubooking/go-booking-client/oauthflow"
)

type fakeOAuthAPI struct {
	authorizeURL string
	loginPair    api.TokenPair
	loginErr     error
	linkErr      error

	loginCalls int
	linkCalls  int
	lastLogin  string
	lastLink   [2]string // code, state
}

func (f *fakeOAuthAPI) OAuthAuthorizeURL(ctx context.Context, provider, redirectURI string) (string, error) {
	return f.authorizeURL, nil
}

func (f *fakeOAuthAPI) OAuthLogin(ctx context.Context, provider, code string) (api.TokenPair, error) {
	f.loginCalls++
	f.lastLogin = code
	if f.loginErr != nil {
		return api.TokenPair{}, f.loginErr
	}
	return f.loginPair, nil
}

func (f *fakeOAuthAPI) OAuthLink(ctx context.Context, provider, code, state string) error {
	f.linkCalls++
	f.lastLink = [2]string{code, state}
	return f.linkErr
}

type fakeSession struct {
	authenticated bool
	adopted       []api.TokenPair
}

func (f *fakeSession) IsAuthenticated() bool          { return f.authenticated }
func (f *fakeSession) AdoptTokens(pair api.TokenPair) { f.adopted = append(f.adopted, pair) }

func newFlow(t *testing.T, oauthAPI *fakeOAuthAPI, sess *fakeSession) *oauthflow.Flow {
	t.Helper()
	flow, err := oauthflow.NewFlow(oauthAPI, sess, "kakao", zerolog.Nop())
	require.NoError(t, err)
	return flow
}

func TestIntentStore(t *testing.T) {
	store := oauthflow.NewIntentStore()

	t.Run("absence reads as login", func(t *testing.T) {
		require.Equal(t, oauthflow.IntentLogin, store.TakeAndClear())
	})

	t.Run("consumed exactly once", func(t *testing.T) {
		store.Set(oauthflow.IntentLink)
		require.Equal(t, oauthflow.IntentLink, store.TakeAndClear())
		require.Equal(t, oauthflow.IntentLogin, store.TakeAndClear())
	})
}

func TestFlow_BeginLink_RequiresAuthentication(t *testing.T) {
	flow := newFlow(t, &fakeOAuthAPI{authorizeURL: "https://provider/authorize"}, &fakeSession{authenticated: false})
	_, err := flow.BeginLink(context.Background(), "http://127.0.0.1:1/oauth/callback")
	require.Error(t, err)
}

func TestFlow_LoginCallback(t *testing.T) {
	oauthAPI := &fakeOAuthAPI{
		authorizeURL: "https://provider/authorize",
		loginPair:    api.TokenPair{AccessToken: "at"},
	}
	sess := &fakeSession{}
	flow := newFlow(t, oauthAPI, sess)

	_, err := flow.BeginLogin(context.Background(), "http://127.0.0.1:1/oauth/callback")
	require.NoError(t, err)

	result := flow.HandleCallback(context.Background(), oauthflow.CallbackParams{Code: "abc", State: "xyz"})
	require.False(t, result.Ignored)
	require.Equal(t, oauthflow.RouteHome, result.Route)
	require.Equal(t, 1, oauthAPI.loginCalls)
	require.Zero(t, oauthAPI.linkCalls)
	require.Len(t, sess.adopted, 1)
	require.Equal(t, "at", sess.adopted[0].AccessToken)
}

func TestFlow_LinkCallback_RoutesToLinkNotLogin(t *testing.T) {
	oauthAPI := &fakeOAuthAPI{authorizeURL: "https://provider/authorize"}
	sess := &fakeSession{authenticated: true}
	flow := newFlow(t, oauthAPI, sess)

	_, err := flow.BeginLink(context.Background(), "http://127.0.0.1:1/oauth/callback")
	require.NoError(t, err)

	result := flow.HandleCallback(context.Background(), oauthflow.CallbackParams{Code: "abc", State: "xyz"})
	require.Equal(t, oauthflow.RouteMyPage, result.Route)
	require.Equal(t, 1, oauthAPI.linkCalls)
	require.Zero(t, oauthAPI.loginCalls)
	require.Equal(t, [2]string{"abc", "xyz"}, oauthAPI.lastLink)
	// Linking adopts nothing.
	require.Empty(t, sess.adopted)
}

func TestFlow_DuplicateCallbackIsNoOp(t *testing.T) {
	oauthAPI := &fakeOAuthAPI{loginPair: api.TokenPair{AccessToken: "at"}}
	flow := newFlow(t, oauthAPI, &fakeSession{})

	params := oauthflow.CallbackParams{Code: "abc", State: "xyz"}
	first := flow.HandleCallback(context.Background(), params)
	require.False(t, first.Ignored)

	// The same parameters replayed by a re-render or reload do nothing.
	second := flow.HandleCallback(context.Background(), params)
	require.True(t, second.Ignored)
	require.Equal(t, 1, oauthAPI.loginCalls)
}

func TestFlow_ProviderError(t *testing.T) {
	t.Run("login intent routes to login page", func(t *testing.T) {
		flow := newFlow(t, &fakeOAuthAPI{}, &fakeSession{})
		result := flow.HandleCallback(context.Background(), oauthflow.CallbackParams{Error: "access_denied"})
		require.Contains(t, result.Route, oauthflow.RouteLogin+"?error=")
		require.Contains(t, result.Route, "access_denied")
	})

	t.Run("link intent routes to account page", func(t *testing.T) {
		oauthAPI := &fakeOAuthAPI{authorizeURL: "u"}
		sess := &fakeSession{authenticated: true}
		flow := newFlow(t, oauthAPI, sess)
		_, err := flow.BeginLink(context.Background(), "r")
		require.NoError(t, err)

		result := flow.HandleCallback(context.Background(), oauthflow.CallbackParams{Error: "access_denied"})
		require.Contains(t, result.Route, oauthflow.RouteMyPage+"?error=")
	})
}

func TestFlow_MalformedCallback(t *testing.T) {
	cases := []oauthflow.CallbackParams{
		{},                 // nothing at all
		{Code: "abc"},      // missing state
		{State: "xyz"},     // missing code
	}
	for _, params := range cases {
		flow := newFlow(t, &fakeOAuthAPI{}, &fakeSession{})
		result := flow.HandleCallback(context.Background(), params)
		require.False(t, result.Ignored)
		require.Contains(t, result.Route, "error="+oauthflow.ErrorInvalidCallback)
	}
}

func TestFlow_MalformedCallbackConsumesLinkIntent(t *testing.T) {
	oauthAPI := &fakeOAuthAPI{authorizeURL: "u"}
	sess := &fakeSession{authenticated: true}
	flow := newFlow(t, oauthAPI, sess)
	_, err := flow.BeginLink(context.Background(), "r")
	require.NoError(t, err)

	result := flow.HandleCallback(context.Background(), oauthflow.CallbackParams{})
	require.Contains(t, result.Route, oauthflow.RouteMyPage+"?error=")

	// The flag was consumed: a fresh round trip defaults to login.
	flow.Reset()
	next := flow.HandleCallback(context.Background(), oauthflow.CallbackParams{})
	require.Contains(t, next.Route, oauthflow.RouteLogin+"?error=")
}

func TestFlow_LinkFailureMapping(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		message string
	}{
		{"conflict", &api.Error{Kind: api.KindConflict, Status: 409, Message: "linked elsewhere"}, "이미 다른 계정에 연결된 외부 계정입니다"},
		{"not found", &api.Error{Kind: api.KindNotFound, Status: 404, Message: "no account"}, "연결할 계정을 찾을 수 없습니다"},
		{"unauthorized", &api.Error{Kind: api.KindUnauthorized, Status: 401, Message: "expired"}, "세션이 만료되었습니다. 다시 로그인해주세요"},
		{"other surfaces raw message", &api.Error{Kind: api.KindServer, Status: 500, Message: "boom"}, "boom"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			oauthAPI := &fakeOAuthAPI{authorizeURL: "u", linkErr: tc.err}
			sess := &fakeSession{authenticated: true}
			flow := newFlow(t, oauthAPI, sess)
			_, err := flow.BeginLink(context.Background(), "r")
			require.NoError(t, err)

			result := flow.HandleCallback(context.Background(), oauthflow.CallbackParams{Code: "c", State: "s"})
			require.Equal(t, tc.message, result.Message)
			// Always back to the account page, never stranded.
			require.Contains(t, result.Route, oauthflow.RouteMyPage)
		})
	}
}
