package testing

// Logger Constants
const (
	// TestLoggerLevelDebug is the debug log level used in most tests
	TestLoggerLevelDebug = "debug"
	// TestLoggerLevelDisabled completely disables logging in tests
	TestLoggerLevelDisabled = "disabled"
)

// Credential Constants
// Opaque credential values shared by client, provider and session tests.
const (
	TestCredential      = "cred-initial"
	TestFreshCredential = "cred-fresh"
	TestRefreshToken    = "refresh-1"
	TestRotatedRefresh  = "refresh-2"
	TestExpiredMessage  = "Token expired"
)
