package version

// AppVersion is overridden at build time with
// -ldflags "-X pagewidth/version.AppVersion=...".
var AppVersion = "v0.1.0"
