//go:build linux || darwin

package arena

import "golang.org/x/sys/unix"

// mmapAnon acquires size bytes of private anonymous memory, matching the
// spec's arena-acquire primitive. Modeled on hive/dirty/flush_unix.go's use
// of golang.org/x/sys/unix for memory-mapped I/O, minus the file descriptor:
// there's nothing to map from, so this is MAP_PRIVATE|MAP_ANON over /dev/zero
// semantics rather than a file-backed mapping.
func mmapAnon(size int) ([]byte, error) {
	return unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
}

// munmapAnon releases a mapping obtained from mmapAnon, the spec's
// arena-release primitive.
func munmapAnon(data []byte) error {
	return unix.Munmap(data)
}
