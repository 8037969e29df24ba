package llm

// ErrorKind distinguishes completion call failure modes so the orchestration
// layer can report which kind of fault aborted a cycle.
type ErrorKind string

const (
	// KindConfig means the client is misconfigured (e.g. missing API key).
	// Surfaced at construction time, never mid-cycle.
	KindConfig ErrorKind = "config"
	// KindTimeout means the call exceeded its deadline
	KindTimeout ErrorKind = "timeout"
	// KindConnection means the request never reached the API
	KindConnection ErrorKind = "connection"
	// KindAuth means the API rejected the credentials
	KindAuth ErrorKind = "auth"
	// KindRateLimit means the API throttled the request
	KindRateLimit ErrorKind = "rate_limit"
	// KindAPI covers remote API errors and malformed responses
	KindAPI ErrorKind = "api"
)

// CallError is an error from the completion call
type CallError struct {
	Kind       ErrorKind
	Message    string
	StatusCode int
	Retryable  bool
	Cause      error
}

// Error implements the error interface
func (e *CallError) Error() string {
	if e.Cause != nil {
		return string(e.Kind) + ": " + e.Message + ": " + e.Cause.Error()
	}
	return string(e.Kind) + ": " + e.Message
}

// Unwrap implements error unwrapping
func (e *CallError) Unwrap() error {
	return e.Cause
}

// NewCallError creates a new call error
func NewCallError(kind ErrorKind, message string, statusCode int, retryable bool, cause error) *CallError {
	return &CallError{
		Kind:       kind,
		Message:    message,
		StatusCode: statusCode,
		Retryable:  retryable,
		Cause:      cause,
	}
}
