//go:build !linux

package engine

// availableMemory is unknown on this platform.
func availableMemory() uint64 {
	return 0
}
