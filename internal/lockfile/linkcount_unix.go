//go:build unix

package lockfile

import (
	"os"
	"syscall"
)

// linkCount returns the hard-link count for a file, the authoritative
// signal the whole locking scheme rests on (spec.md §4.A step 4).
func linkCount(info os.FileInfo) uint64 {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0
	}
	return uint64(st.Nlink)
}
