package bevy

// Version is the library version. Release builds override it via
// -ldflags "-X github.com/Git0Shuai/bevy.Version=...".
var Version = "0.1.0-dev"
