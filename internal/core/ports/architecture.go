package ports

// ArchTable resolves dpkg architecture variables such as DEB_HOST_ARCH or
// DEB_TARGET_ARCH_OS. Implementations cache values for the process lifetime.
//
//go:generate mockgen -source=architecture.go -destination=mocks/mock_architecture.go -package=mocks
type ArchTable interface {
	// Value returns the value of the named architecture variable.
	// The name must carry a DEB_BUILD_, DEB_HOST_ or DEB_TARGET_ prefix.
	Value(name string) (string, error)
}
