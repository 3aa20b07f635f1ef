//go:build !unix

package platform

// KernelVersion is undeterminable off unix.
func KernelVersion() string { return Unknown }

// UserID is undeterminable off unix.
func UserID() (int, bool) { return 0, false }

// EffectiveUserID is undeterminable off unix.
func EffectiveUserID() (int, bool) { return 0, false }

// IsAdmin is undeterminable off unix; report false rather than guess.
func IsAdmin() bool { return false }
