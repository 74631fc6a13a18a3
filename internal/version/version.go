package version

// Tag holds the build version of the outreach binaries. Override at build time with
// -ldflags "-X github.com/corvusHold/outreach/internal/version.Tag=v1.2.3".
var Tag = "dev"

// String returns the current version, "dev" when Tag is unset.
func String() string {
	if Tag == "" {
		return "dev"
	}
	return Tag
}
