//go:build windows

package arena

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// mmapAnon acquires size bytes of anonymous memory via VirtualAlloc, the
// Windows analogue of the unix mmapAnon path. Modeled on hive/loader_other.go's
// build-tagged split between the unix mmap path and the Windows fallback.
func mmapAnon(size int) ([]byte, error) {
	addr, err := windows.VirtualAlloc(0, uintptr(size), windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if err != nil {
		return nil, err
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), size), nil
}

// munmapAnon releases a mapping obtained from mmapAnon.
func munmapAnon(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	addr := uintptr(unsafe.Pointer(&data[0]))
	return windows.VirtualFree(addr, 0, windows.MEM_RELEASE)
}
