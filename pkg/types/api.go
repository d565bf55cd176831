package types

// AnswerRequest is the payload accepted by POST /api.
//
// Both fields are required. They are pointers so the handler can tell a
// missing key apart from an empty string: empty question/context is valid
// input, an absent key is not.
type AnswerRequest struct {
	// Question to answer.
	// example: What color is the sky?
	InputPrompt *string `json:"input_prompt" example:"What color is the sky?"`
	// Supporting facts the answer must be grounded in.
	// example: The sky is blue.
	Context *string `json:"context" example:"The sky is blue."`
}

// AnswerResponse is returned by POST /api on success.
type AnswerResponse struct {
	// Generated answer text (first candidate from the model).
	// example: The sky is blue.
	Response string `json:"response" example:"The sky is blue."`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Engine state (loading, ready, error).
	// example: ready
	State string `json:"state" example:"ready"`
	// Checkpoint the engine was started with.
	// example: ./LaMini-Flan-T5-783M
	Checkpoint string `json:"checkpoint" example:"./LaMini-Flan-T5-783M"`
	// Backend kind serving generations (local or server).
	// example: local
	Backend string `json:"backend" example:"local"`
	// Uptime of the process in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
	// Total generations completed since start.
	// example: 42
	RequestsTotal uint64 `json:"requests_total" example:"42"`
	// Generations currently in flight (0 or 1).
	// example: 1
	Inflight int `json:"inflight" example:"1"`
	// Requests currently waiting for the generation slot.
	// example: 3
	QueueLen int `json:"queue_len" example:"3"`
	// Maximum queued requests before admission rejects with 429.
	// example: 32
	MaxQueueDepth int `json:"max_queue_depth" example:"32"`
	// Last generation error observed, if any.
	LastError string `json:"last_error,omitempty"`
}
