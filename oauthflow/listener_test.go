package oauthflow_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/modubooking/go-booking-client/api"
	"github.com/modubooking/go-booking-client/oauthflow"
)

func TestListener_DeliversCallbackResult(t *testing.T) {
	oauthAPI := &fakeOAuthAPI{loginPair: api.TokenPair{AccessToken: "at"}}
	sess := &fakeSession{}
	flow := newFlow(t, oauthAPI, sess)

	listener := oauthflow.NewListener(flow, 0, zerolog.Nop())
	require.NoError(t, listener.Start())
	defer listener.Shutdown(context.Background())

	resp, err := http.Get(listener.RedirectURI() + "?code=abc&state=xyz")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	result, err := listener.Wait(ctx)
	require.NoError(t, err)
	require.Equal(t, oauthflow.RouteHome, result.Route)
	require.Len(t, sess.adopted, 1)

	// A reload of the callback URL replays the parameters; nothing happens.
	resp, err = http.Get(listener.RedirectURI() + "?code=abc&state=xyz")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, 1, oauthAPI.loginCalls)
}
