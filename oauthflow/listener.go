package oauthflow

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const callbackPath = "/oauth/callback"

// Listener is the loopback HTTP endpoint a native client registers as the
// provider's redirect target. It hands the redirect's query parameters to
// the Flow and reports the resolved Result to whoever is waiting.
type Listener struct {
	flow    *Flow
	logger  zerolog.Logger
	server  *http.Server
	addr    string
	results chan Result
}

// NewListener creates a Listener bound to 127.0.0.1:port. Port 0 picks a
// free port.
func NewListener(flow *Flow, port int, logger zerolog.Logger) *Listener {
	return &Listener{
		flow:    flow,
		logger:  logger,
		addr:    fmt.Sprintf("127.0.0.1:%d", port),
		results: make(chan Result, 1),
	}
}

// Start binds the listener and begins serving in the background.
func (l *Listener) Start() error {
	ln, err := net.Listen("tcp", l.addr)
	if err != nil {
		return errors.Wrap(err, "[Listener.Start] net.Listen")
	}
	l.addr = ln.Addr().String()

	router := mux.NewRouter()
	router.HandleFunc(callbackPath, l.handleCallback).Methods(http.MethodGet)

	l.server = &http.Server{Handler: router}
	go func() {
		if err := l.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			l.logger.Error().Err(err).Msg("callback listener stopped")
		}
	}()
	return nil
}

// RedirectURI is the redirect target to hand to the backend when requesting
// the provider's authorization URL.
func (l *Listener) RedirectURI() string {
	return fmt.Sprintf("http://%s%s", l.addr, callbackPath)
}

// Wait blocks until the redirect arrives and the flow resolves it, or ctx
// expires.
func (l *Listener) Wait(ctx context.Context) (Result, error) {
	select {
	case result := <-l.results:
		return result, nil
	case <-ctx.Done():
		return Result{}, errors.Wrap(ctx.Err(), "[Listener.Wait]")
	}
}

// Shutdown stops the listener.
func (l *Listener) Shutdown(ctx context.Context) error {
	if l.server == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return l.server.Shutdown(shutdownCtx)
}

func (l *Listener) handleCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	params := CallbackParams{
		Code:             query.Get("code"),
		State:            query.Get("state"),
		Error:            query.Get("error"),
		ErrorDescription: query.Get("error_description"),
	}

	result := l.flow.HandleCallback(r.Context(), params)
	if result.Ignored {
		// A reload of the callback page replays the same parameters; the
		// flow already consumed them.
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "This window can be closed.")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if result.Message != "" {
		fmt.Fprintln(w, result.Message)
	} else {
		fmt.Fprintln(w, "Done. You can return to the application.")
	}

	select {
	case l.results <- result:
	default:
	}
}
