//go:build linux || darwin

package audio

import (
	"os"

	"golang.org/x/sys/unix"
)

// suppressNativeWarnings redirects the process's stderr file
// descriptor to /dev/null for the duration of a native device-open
// call, since some backends (notably ALSA) print benign
// configuration warnings directly to fd 2 that slog cannot capture
// or filter. Returns a function that restores the original fd.
func suppressNativeWarnings() func() {
	devNull, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	if err != nil {
		return func() {}
	}

	savedFd, err := unix.Dup(int(os.Stderr.Fd()))
	if err != nil {
		devNull.Close()
		return func() {}
	}

	if err := unix.Dup2(int(devNull.Fd()), int(os.Stderr.Fd())); err != nil {
		unix.Close(savedFd)
		devNull.Close()
		return func() {}
	}

	return func() {
		unix.Dup2(savedFd, int(os.Stderr.Fd()))
		unix.Close(savedFd)
		devNull.Close()
	}
}
