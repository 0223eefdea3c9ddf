package version

const (
	// SummaryVersion is the format version of run summaries.
	SummaryVersion = "v1"
	// CoreVersion tracks decorator semantics; bump when injection changes.
	CoreVersion = "v0.1.0"
)

// Version is the release version, overridden at build time with
// -ldflags "-X covlaunch/core/version.Version=...".
var Version = "dev"
