package httpapi

// maxBodyBytes controls the maximum allowed request body size for JSON
// endpoints. Default is 1 MiB; question/context pairs are small.
var maxBodyBytes int64 = 1 << 20

// SetMaxBodyBytes allows configuring the maximum request body size.
func SetMaxBodyBytes(n int64) {
	if n <= 0 {
		maxBodyBytes = 1 << 20
		return
	}
	maxBodyBytes = n
}

// answerTimeout controls the maximum duration a POST /api request may run
// before timing out. Zero means no timeout beyond server/connection limits:
// a slow generation then blocks its request until the model returns.
var answerTimeout = int64(0) // seconds

// SetAnswerTimeoutSeconds sets the answer timeout in seconds (0 disables).
func SetAnswerTimeoutSeconds(sec int64) {
	if sec < 0 {
		sec = 0
	}
	answerTimeout = sec
}

// CORS configuration (opt-in). If disabled, no CORS middleware is added.
var (
	corsEnabled        bool
	corsAllowedOrigins []string
	corsAllowedMethods []string
	corsAllowedHeaders []string
)

// SetCORSOptions configures CORS behavior for the HTTP server.
func SetCORSOptions(enabled bool, origins, methods, headers []string) {
	corsEnabled = enabled
	corsAllowedOrigins = append([]string(nil), origins...)
	corsAllowedMethods = append([]string(nil), methods...)
	corsAllowedHeaders = append([]string(nil), headers...)
}
