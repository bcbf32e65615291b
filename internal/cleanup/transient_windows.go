//go:build windows

package cleanup

import "syscall"

// ERROR_SHARING_VIOLATION and ERROR_LOCK_VIOLATION
const (
	errSharingViolation syscall.Errno = 32
	errLockViolation    syscall.Errno = 33
)

// transientErrors are removal failures caused by another process briefly
// holding the file. Antivirus scanners and indexers surface as access denied.
var transientErrors = []error{
	errSharingViolation,
	errLockViolation,
	syscall.ERROR_ACCESS_DENIED,
}
