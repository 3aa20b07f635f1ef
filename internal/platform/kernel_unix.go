//go:build unix

package platform

import (
	"bytes"

	"golang.org/x/sys/unix"
)

// KernelVersion returns the kernel release (uname -r equivalent).
func KernelVersion() string {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return Unknown
	}
	return utsString(uts.Release[:])
}

// utsString trims a NUL-terminated utsname field. The field width
// differs across platforms, so take a slice.
func utsString(field []byte) string {
	if i := bytes.IndexByte(field, 0); i >= 0 {
		return string(field[:i])
	}
	return string(field)
}

// UserID returns the real user id.
func UserID() (int, bool) {
	return unix.Getuid(), true
}

// EffectiveUserID returns the effective user id.
func EffectiveUserID() (int, bool) {
	return unix.Geteuid(), true
}

// IsAdmin reports whether the process runs with root privileges.
func IsAdmin() bool {
	return unix.Geteuid() == 0
}
