package version

// Version is the varcal release string. Release builds override it with
// -ldflags "-X varcal/internal/version.Version=...".
var Version = "0.1.0"
