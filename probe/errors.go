package probe

// ErrorCode defines error types for probe operations
type ErrorCode string

const (
	// ErrSpawnFailed represents errors when the launch command cannot be started
	ErrSpawnFailed ErrorCode = "SpawnFailed"

	// ErrProcessExitedEarly represents a process that exited during the startup grace period
	ErrProcessExitedEarly ErrorCode = "ProcessExitedEarly"

	// ErrNoResponse represents a missing response line (stream closed or read deadline reached)
	ErrNoResponse ErrorCode = "NoResponse"

	// ErrMalformedResponse represents a response line that could not be decoded
	ErrMalformedResponse ErrorCode = "MalformedResponse"

	// ErrTransportWrite represents a failure writing a request to the child's stdin
	ErrTransportWrite ErrorCode = "TransportWrite"
)

func (c ErrorCode) ErrorCode() string {
	return string(c)
}
