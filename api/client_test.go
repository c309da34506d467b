package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/modubooking/go-booking-client/api"
	"github.com/modubooking/go-booking-client/credentials"
	"github.com/modubooking/go-booking-client/internal/httpclient"
)

type recordedRequest struct {
	Method        string
	Path          string
	Authorization string
	RequestID     string
	Body          map[string]any
}

// backendStub serves canned envelope responses and records what it saw.
type backendStub struct {
	server   *httptest.Server
	status   int
	envelope string
	requests []recordedRequest
}

func newBackendStub(t *testing.T) *backendStub {
	t.Helper()
	stub := &backendStub{status: http.StatusOK, envelope: `{"code":"OK","message":"success"}`}
	stub.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-Id"),
		}
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&rec.Body)
		}
		stub.requests = append(stub.requests, rec)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(stub.status)
		_, _ = w.Write([]byte(stub.envelope))
	}))
	t.Cleanup(stub.server.Close)
	return stub
}

func (s *backendStub) respond(status int, envelope string) {
	s.status = status
	s.envelope = envelope
}

func (s *backendStub) last(t *testing.T) recordedRequest {
	t.Helper()
	require.NotEmpty(t, s.requests)
	return s.requests[len(s.requests)-1]
}

func newTestClient(t *testing.T, stub *backendStub, options ...api.Option) *api.Client {
	t.Helper()
	client, err := api.New(stub.server.URL, httpclient.New(httpclient.Config{MaxRetries: 0}), options...)
	require.NoError(t, err)
	return client
}

func TestClient_UnwrapsEnvelopeData(t *testing.T) {
	stub := newBackendStub(t)
	stub.respond(http.StatusOK, `{
		"code": "OK",
		"message": "success",
		"data": [
			{"id": 1, "title": "견우와 직녀"},
			{"id": 2, "title": "오페라의 유령"}
		]
	}`)
	client := newTestClient(t, stub)

	performances, err := client.Performances(context.Background())
	require.NoError(t, err)
	require.Len(t, performances, 2)
	require.Equal(t, int64(1), performances[0].ID)
	require.Equal(t, "견우와 직녀", performances[0].Title)

	last := stub.last(t)
	require.Equal(t, http.MethodGet, last.Method)
	require.Equal(t, "/performances", last.Path)
	require.NotEmpty(t, last.RequestID)
	require.Empty(t, last.Authorization, "public endpoint must not carry a token")
}

func TestClient_LoginFailurePreservesBackendMessage(t *testing.T) {
	stub := newBackendStub(t)
	stub.respond(http.StatusUnauthorized, `{"code":"AUTH_FAILED","message":"비밀번호가 일치하지 않습니다"}`)
	client := newTestClient(t, stub)

	_, err := client.Login(context.Background(), "user@example.com", "wrong")
	require.Error(t, err)
	require.Equal(t, api.KindUnauthorized, api.KindOf(err))
	require.Equal(t, "비밀번호가 일치하지 않습니다", api.MessageOf(err))

	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.Status)
	require.Equal(t, "AUTH_FAILED", apiErr.Code)
}

func TestClient_ErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		envelope string
		want     api.Kind
	}{
		{
			name:     "conflict status",
			status:   http.StatusConflict,
			envelope: `{"code":"CONFLICT","message":"이미 다른 계정에 연결된 외부 계정입니다"}`,
			want:     api.KindConflict,
		},
		{
			name:     "bad request with conflict message wins over status",
			status:   http.StatusBadRequest,
			envelope: `{"code":"","message":"이미 신청한 구역입니다"}`,
			want:     api.KindConflict,
		},
		{
			name:     "bad request plain validation",
			status:   http.StatusBadRequest,
			envelope: `{"code":"","message":"수량은 1 이상이어야 합니다"}`,
			want:     api.KindValidation,
		},
		{
			name:     "not found",
			status:   http.StatusNotFound,
			envelope: `{"code":"","message":"공연을 찾을 수 없습니다"}`,
			want:     api.KindNotFound,
		},
		{
			name:     "server error",
			status:   http.StatusInternalServerError,
			envelope: `{"code":"","message":"internal error"}`,
			want:     api.KindServer,
		},
		{
			name:     "error without envelope body",
			status:   http.StatusBadGateway,
			envelope: ``,
			want:     api.KindServer,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stub := newBackendStub(t)
			stub.respond(tc.status, tc.envelope)
			client := newTestClient(t, stub)

			_, err := client.Performance(context.Background(), 1)
			require.Error(t, err)
			require.Equal(t, tc.want, api.KindOf(err))
		})
	}
}

func TestClient_PrincipalTokenIsolation(t *testing.T) {
	userStore := credentials.NewMemoryStore()
	require.NoError(t, userStore.SetAccess("user-token"))
	adminStore := credentials.NewMemoryStore()
	require.NoError(t, adminStore.SetAccess("admin-token"))

	stub := newBackendStub(t)
	client := newTestClient(t, stub,
		api.WithUserTokenSource(credentials.TokenSource(userStore)),
		api.WithAdminTokenSource(credentials.TokenSource(adminStore)),
	)

	require.NoError(t, client.Logout(context.Background()))
	require.Equal(t, "Bearer user-token", stub.last(t).Authorization)

	require.NoError(t, client.CreateVenueSection(context.Background(), 9, "R석"))
	last := stub.last(t)
	require.Equal(t, "Bearer admin-token", last.Authorization)
	require.Equal(t, "/admin/venues/9/sections", last.Path)
	require.Equal(t, "R석", last.Body["sectionName"])

	_, err := client.Performances(context.Background())
	require.NoError(t, err)
	require.Empty(t, stub.last(t).Authorization)
}

func TestClient_MissingCredentialSendsNoHeader(t *testing.T) {
	stub := newBackendStub(t)
	stub.respond(http.StatusUnauthorized, `{"code":"","message":"로그인이 필요합니다"}`)
	client := newTestClient(t, stub,
		api.WithUserTokenSource(credentials.TokenSource(credentials.NewMemoryStore())),
	)

	err := client.Logout(context.Background())
	require.Error(t, err)
	require.Equal(t, api.KindUnauthorized, api.KindOf(err))
	require.Empty(t, stub.last(t).Authorization)
}

func TestClient_OAuthLinkForwardsCodeAndState(t *testing.T) {
	userStore := credentials.NewMemoryStore()
	require.NoError(t, userStore.SetAccess("user-token"))

	stub := newBackendStub(t)
	client := newTestClient(t, stub, api.WithUserTokenSource(credentials.TokenSource(userStore)))

	require.NoError(t, client.OAuthLink(context.Background(), "kakao", "auth-code", "state-123"))

	last := stub.last(t)
	require.Equal(t, "/oauth/kakao/link", last.Path)
	require.Equal(t, "auth-code", last.Body["code"])
	require.Equal(t, "state-123", last.Body["state"])
	require.Equal(t, "Bearer user-token", last.Authorization)
}
