package ports

// FileSystem is the read-only view of the disk the resolver probes.
//
//go:generate mockgen -source=filesystem.go -destination=mocks/mock_filesystem.go -package=mocks
type FileSystem interface {
	// IsFile reports whether path exists and is a regular file.
	IsFile(path string) (bool, error)

	// ReadFile returns the contents of path.
	ReadFile(path string) ([]byte, error)
}
