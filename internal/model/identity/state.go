package identity

// DefaultName is committed when the identity dialog is toggled before any name exists.
const DefaultName = "Anonyme"

// StoreKey names the single persisted entry holding State.
const StoreKey = "kairn-chat-store"

// State is the persisted identity of the local user.
type State struct {
	UserName *string `json:"userName"`
}

// Name returns the committed name and whether one has been set.
func (s State) Name() (string, bool) {
	if s.UserName == nil {
		return "", false
	}
	return *s.UserName, true
}

// Known reports whether a non-empty name is committed. An empty string is kept as-is
// but does not count as an identity for gating purposes.
func (s State) Known() bool {
	return s.UserName != nil && *s.UserName != ""
}

// WithName returns a copy of s holding name.
func (s State) WithName(name string) State {
	return State{UserName: &name}
}
