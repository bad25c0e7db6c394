package version

// Version is the current version of argo-sweep. It is set at build time:
// -ldflags "-X github.com/rxtech-lab/argo-sweep/internal/version.Version=1.2.3"
// "main" marks a development build.
var Version = "v1.0.0"

// GetVersion returns the current version.
func GetVersion() string {
	return Version
}
