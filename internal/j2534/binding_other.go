//go:build !windows

package j2534

// OpenBinding is unavailable off Windows: vendor pass-through DLLs only
// exist as Win32 shared libraries. Use Mock for development and tests.
func OpenBinding(libraryPath string) (Binding, error) {
	return nil, ErrUnsupportedPlatform
}

// DiscoverAdapters returns an empty list off Windows; there is no
// registry to scan.
func DiscoverAdapters() ([]AdapterInfo, error) {
	return nil, nil
}
