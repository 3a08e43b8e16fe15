// Package version holds build information set via ldflags.
package version

var (
	Version = "dev"
	Commit  = "none"
)

// Full returns the version string shown by `todo version`.
func Full() string {
	if Version == "dev" {
		return "todo version dev (built from source)"
	}
	return "todo version " + Version + " (" + Commit + ")"
}

// UserAgent is sent with every API request.
func UserAgent() string {
	return "todo-client/" + Version
}
