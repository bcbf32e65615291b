//go:build !windows

package cleanup

import "syscall"

// transientErrors are removal failures caused by another process briefly
// holding the file
var transientErrors = []error{
	syscall.EBUSY,
	syscall.ETXTBSY,
	syscall.EAGAIN,
	syscall.EINTR,
}
