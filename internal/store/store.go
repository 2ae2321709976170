package store

// Stores groups the stores the authenticator depends on so a single backend
// (memory or postgres) can be selected and passed around as one value.
type Stores struct {
	Users    UserStore
	Sessions SessionStore

	// Close releases backend resources, it is nil for backends that hold none.
	Close func()
}
