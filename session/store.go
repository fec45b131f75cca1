package session

// Store persists the session token and role string between runs. It is the
// client-side analogue of the browser's local storage: two keys, always
// written and cleared together.
type Store interface {
	// Read returns the persisted token and role. Both are empty when no
	// session is stored; an absent store entry is not an error.
	Read() (token, role string, err error)
	// Write persists the token and role, replacing any previous session.
	Write(token, role string) error
	// Clear removes the persisted token and role.
	Clear() error
}
