package engine

// tooBusyError signals queue overflow/wait timeout for 429 mapping.
type tooBusyError struct{}

func (tooBusyError) Error() string { return "too busy: generation queue is full" }

// ErrTooBusy constructs a tooBusyError.
func ErrTooBusy() error { return tooBusyError{} }

// IsTooBusy reports whether err indicates backpressure (return 429).
func IsTooBusy(err error) bool {
	_, ok := err.(tooBusyError)
	return ok
}

// unavailableError signals that the generation capability cannot serve at all
// (checkpoint missing, binary built without llama support, inference server
// unreachable) so the HTTP layer can return 503 instead of 500.
type unavailableError struct{ msg string }

func (e unavailableError) Error() string { return e.msg }

// ErrUnavailable constructs an unavailableError.
func ErrUnavailable(msg string) error { return unavailableError{msg: msg} }

// IsUnavailable reports whether err indicates a missing/failed backend.
func IsUnavailable(err error) bool {
	_, ok := err.(unavailableError)
	return ok
}
