package mediaflow

// Version is overridden at build time with -ldflags "-X github.com/ofekfell/mediaflow.Version=...".
var Version = "0.3.0-dev"
