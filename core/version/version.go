package version

// Version is overridden at release time with -ldflags.
var Version = "dev"
