package engine

import "golang.org/x/sys/unix"

// availableMemory returns the free and buffer memory in bytes, zero when it
// cannot be determined.
func availableMemory() uint64 {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0
	}
	return (uint64(info.Freeram) + uint64(info.Bufferram)) * uint64(info.Unit)
}
