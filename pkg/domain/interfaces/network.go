package interfaces

import "context"

// NetworkChecker reports the current network condition. It is an
// external collaborator: the platform shell provides the real
// implementation, and the default assumes an unmetered connection.
type NetworkChecker interface {
	// OnWiFi reports whether the device is on an unmetered WiFi network
	OnWiFi(ctx context.Context) bool
}

// NetworkCheckerFunc adapts a function to the NetworkChecker interface
type NetworkCheckerFunc func(ctx context.Context) bool

// OnWiFi implements NetworkChecker
func (f NetworkCheckerFunc) OnWiFi(ctx context.Context) bool {
	return f(ctx)
}

// AlwaysOnWiFi returns a checker that treats every network as WiFi
func AlwaysOnWiFi() NetworkChecker {
	return NetworkCheckerFunc(func(ctx context.Context) bool { return true })
}
