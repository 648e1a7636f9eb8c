package version

// overridden at build time via -ldflags
var (
	Version     = "dev"
	GitCommit   = "none"
	BuildDate   = "unknown"
	FullVersion = Version + " (" + GitCommit + " " + BuildDate + ")"
)
