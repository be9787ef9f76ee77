//go:build !darwin && !freebsd && !linux && !windows

package detour

import (
	"fmt"
	"runtime"
)

func openLibrary(string) (uintptr, error) {
	return 0, fmt.Errorf("dynamic loading not supported on %s", runtime.GOOS)
}

func closeLibrary(uintptr) error { return nil }
