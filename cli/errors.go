package cli

// ErrorCode defines error types for CLI operations
type ErrorCode string

const (
	NoCommandSpecified ErrorCode = "NoCommandSpecified"
	InvalidArguments   ErrorCode = "InvalidArguments"
)

func (c ErrorCode) ErrorCode() string {
	return string(c)
}
