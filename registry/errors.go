package registry

type ErrorCode string

const (
	// ErrRegistryUnavailable represents errors when the npm registry cannot be reached
	ErrRegistryUnavailable ErrorCode = "RegistryUnavailable"

	// ErrPackageNotFound represents errors when package metadata cannot be found
	ErrPackageNotFound ErrorCode = "PackageNotFound"
)

func (c ErrorCode) ErrorCode() string {
	return string(c)
}
