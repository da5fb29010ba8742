package config

// Version is the namedgraph binary version.
// Set at build time via: -ldflags "-X github.com/persistorai/namedgraph/internal/config.Version=<tag>"
// Defaults to "dev" when built without ldflags.
var Version = "dev"
