//go:build unix

package terminal

import (
	"golang.org/x/sys/unix"
)

// newFdPoller returns a poll-with-timeout reader over a raw descriptor.
// A timeout of zero is a non-blocking availability check. Timeouts never
// abort in-flight I/O; they only bound how long the poll waits before
// reporting nothing available.
func newFdPoller(fd int) func(timeoutMs int) ([]byte, error) {
	buf := make([]byte, 256)
	return func(timeoutMs int) ([]byte, error) {
		for {
			fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
			n, err := unix.Poll(fds, timeoutMs)
			if err != nil {
				if err == unix.EINTR {
					continue
				}
				return nil, err
			}
			if n == 0 {
				return nil, nil // timeout
			}

			rn, err := unix.Read(fd, buf)
			if err != nil {
				if err == unix.EINTR || err == unix.EAGAIN {
					continue
				}
				return nil, err
			}
			if rn == 0 {
				return nil, nil
			}
			out := make([]byte, rn)
			copy(out, buf[:rn])
			return out, nil
		}
	}
}
