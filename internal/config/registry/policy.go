// Package registry provides the field model behind configuration sections.
//
// Every section type declares an ordered list of typed fields at definition
// time. Each field carries a loading Policy that decides whether it is read
// from a document at all, and whether a remote (server-pushed) document may
// overwrite the locally configured value.
package registry

// Policy controls when a field is loaded.
type Policy uint8

const (
	// PolicyAlways loads the field from local and remote documents.
	PolicyAlways Policy = iota
	// PolicyRemoteOnly marks a field the server is expected to own.
	// It loads exactly like PolicyAlways.
	PolicyRemoteOnly
	// PolicyLocalOnly keeps the local value during a remote sync.
	PolicyLocalOnly
	// PolicyNever excludes the field from loading entirely.
	PolicyNever
)

// String returns the policy name.
func (p Policy) String() string {
	switch p {
	case PolicyAlways:
		return "always"
	case PolicyRemoteOnly:
		return "remote-only"
	case PolicyLocalOnly:
		return "local-only"
	case PolicyNever:
		return "never"
	default:
		return "unknown"
	}
}

// SyncContext is the ambient state of one load pass.
type SyncContext struct {
	// Remote is set while populating from a server-pushed document.
	Remote bool

	// SyncHotkeys allows a remote document to overwrite keybindings.
	SyncHotkeys bool
}

// IgnoredOnLoad reports whether a field with policy p is never loaded.
func IgnoredOnLoad(p Policy) bool {
	return p == PolicyNever
}

// LocalOnly reports whether a field must keep its local value in ctx.
// Keybindings are local unless the server also syncs hotkeys.
func LocalOnly(p Policy, k Kind, ctx SyncContext) bool {
	if !ctx.Remote {
		return false
	}
	return p == PolicyLocalOnly || (k == KindKeyCode && !ctx.SyncHotkeys)
}
