// Package oauthflow disambiguates the external identity provider's redirect
// between two user intents, logging in with the identity versus linking it
// to the already-authenticated account, and drives the callback to exactly
// one outcome.
package oauthflow

import "sync"

// Intent is what the user meant by navigating to the provider.
type Intent int

const (
	// IntentLogin establishes a new session from the external identity.
	// This is the default when no intent was recorded.
	IntentLogin Intent = iota

	// IntentLink associates the external identity with the current account.
	IntentLink
)

func (i Intent) String() string {
	if i == IntentLink {
		return "link"
	}
	return "login"
}

// IntentStore is a single-consumer stash for the pending intent. The intent
// is recorded immediately before redirecting to the provider and consumed
// exactly once on the return leg; absence reads as IntentLogin.
type IntentStore struct {
	mu      sync.Mutex
	pending Intent
	set     bool
}

// NewIntentStore creates an empty store.
func NewIntentStore() *IntentStore {
	return &IntentStore{}
}

// Set records the pending intent, replacing any previous one.
func (s *IntentStore) Set(intent Intent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = intent
	s.set = true
}

// TakeAndClear consumes the pending intent. A second take before another
// Set returns IntentLogin, the default interpretation.
func (s *IntentStore) TakeAndClear() Intent {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set {
		return IntentLogin
	}
	taken := s.pending
	s.pending = IntentLogin
	s.set = false
	return taken
}
