// Package credentials persists bearer credentials for the two principal
// types. The user and admin principals get independent stores with disjoint
// storage and disjoint lifecycles: clearing one never touches the other.
package credentials

// Principal identifies which credential lifecycle a store belongs to.
type Principal string

const (
	PrincipalUser  Principal = "user"
	PrincipalAdmin Principal = "admin"
)

// Record is the persisted credential pair. RefreshToken is empty for
// principals without a refresh flow (admin).
type Record struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// Store holds the credentials of exactly one principal.
//
// Every operation is a silent no-op when the backing storage is unavailable:
// reads return the zero value and writes do nothing. Callers must not assume
// a credential is durable before the store reports it back.
type Store interface {
	SetAccess(token string) error
	SetRefresh(token string) error
	Access() string
	Refresh() string

	// Clear removes both tokens. From the caller's perspective the removal
	// is atomic: there is no observable state with one token cleared and
	// the other remaining.
	Clear() error

	IsAuthenticated() bool
}
