package buildinfo

// Set via -ldflags at build time:
//
//	-X 'github.com/m3rciful/signalbot/core/buildinfo.Version=v0.4.0'
//	-X 'github.com/m3rciful/signalbot/core/buildinfo.Commit=abcdef0'
//	-X 'github.com/m3rciful/signalbot/core/buildinfo.Date=2026-01-30T12:00:00Z'
var (
	Version = "dev"
	Commit  = "local"
	// Date is the build timestamp in RFC3339 format.
	Date = ""
)
