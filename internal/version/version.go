package version

// Version is the semantic version of this build. Overridden at link
// time via -ldflags.
var Version = "1.0.0"

// BuildDate is the build timestamp, set at link time.
var BuildDate = "unknown"

// Commit is the VCS revision, set at link time.
var Commit = "unknown"
