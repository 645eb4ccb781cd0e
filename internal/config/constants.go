package config

import "time"

// Application constants
const (
	AppName = "CampusPulse"

	// EnvPrefix namespaces every environment variable, e.g. PULSE_SERVER_PORT.
	EnvPrefix = "PULSE"
	// ConfigFileEnv names an explicit YAML config file.
	ConfigFileEnv = "PULSE_CONFIG_FILE"

	// DefaultHost keeps the server on the loopback interface unless configured.
	DefaultHost = "127.0.0.1"

	// Rate Limiting
	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50

	// Timeouts
	DefaultRequestTimeout = 30 * time.Second
	DefaultFetchTimeout   = 20 * time.Second

	// DefaultMaxDocumentBytes caps the size of a fetched survey document.
	DefaultMaxDocumentBytes = 32 << 20

	// Log Settings
	DefaultLogLevel = "info"
	DefaultLogFile  = "logs/campuspulse.log"

	// API Endpoints
	APIBasePath     = "/api"
	SurveyEndpoint  = "/api/survey"
	HealthEndpoint  = "/api/health"
	MetricsEndpoint = "/metrics"
)
