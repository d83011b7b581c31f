// Package socket wraps a single blocking IPv4/TCP socket handle.
//
// Every method performs one syscall and records its outcome in a set of
// sticky stream flags instead of returning an error, the same way a
// buffered stream reports failures. Callers check Ok/Good/Eof after each call.
package socket

import (
	"io"
	"log/slog"
	"runtime"

	"golang.org/x/sys/unix"
)

const (
	// Handle value of a closed or never opened socket
	INVALID_HANDLE = -1
)

type Socket struct {
	// OS socket descriptor
	sd int
	// Last recorded OS error (0 = none)
	errno unix.Errno
	// Stream flags
	state StreamState
	// Bytes moved by the last Read/Write
	count int
	// Syscall that last failed
	lastOp string
}

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Install the logger used to trace failed syscalls
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	logger = l
}

// ================= Construction ====================

// New requests a fresh IPv4 stream socket from the OS and enables
// address reuse on it. On failure the socket is returned closed
// with OP_ERROR set.
func New() *Socket {
	sd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return newSocket(INVALID_HANDLE, "socket", err)
	}
	return newSocket(sd, "", nil)
}

// FromHandle wraps an already open descriptor, taking ownership of it.
func FromHandle(sd int) *Socket {
	return newSocket(sd, "", nil)
}

// Shared constructor. openErr is the failure that produced sd, if any.
func newSocket(sd int, op string, openErr error) *Socket {
	s := &Socket{sd: sd}
	if openErr != nil || sd < 0 {
		// Nothing to release, keep the error that got us here
		s.sd = INVALID_HANDLE
		if openErr == nil {
			op, openErr = "setsockopt", unix.EBADF
		}
		s.fail(OP_ERROR, op, openErr)
		return s
	}
	if err := unix.SetsockoptInt(s.sd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		s.fail(OP_ERROR, "setsockopt", err)
		s.release()
		return s
	}
	runtime.SetFinalizer(s, (*Socket).finalize)
	return s
}

// Take moves ownership of the handle, state and error code into a new
// Socket. The receiver is left closed and GOOD.
func (s *Socket) Take() *Socket {
	t := &Socket{
		sd:     s.sd,
		errno:  s.errno,
		state:  s.state,
		count:  s.count,
		lastOp: s.lastOp,
	}
	if t.sd != INVALID_HANDLE {
		runtime.SetFinalizer(t, (*Socket).finalize)
	}
	s.sd = INVALID_HANDLE
	s.errno = 0
	s.state = GOOD
	s.count = 0
	s.lastOp = ""
	runtime.SetFinalizer(s, nil)
	return t
}

// ================= Teardown ====================

// Close releases the handle. Success resets the stream to GOOD,
// failure sets OP_ERROR. The handle is invalid afterwards either way.
// Closing twice hands -1 to the OS and records EBADF.
func (s *Socket) Close() {
	if err := unix.Close(s.sd); err != nil {
		s.fail(OP_ERROR, "close", err)
	} else {
		s.state = GOOD
	}
	s.sd = INVALID_HANDLE
	runtime.SetFinalizer(s, nil)
}

// Release the handle after a failed construction without touching the flags
func (s *Socket) release() {
	if err := unix.Close(s.sd); err != nil {
		logger.Debug("release failed", "fd", s.sd, "errno", int(errnoOf(err)))
	}
	s.sd = INVALID_HANDLE
}

func (s *Socket) finalize() {
	if s.IsOpen() {
		logger.Debug("closing leaked socket", "fd", s.sd)
		unix.Close(s.sd)
		s.sd = INVALID_HANDLE
	}
}

// Check if socket is opened
func (s *Socket) IsOpen() bool {
	return s.sd != INVALID_HANDLE
}

// Underlying OS descriptor (INVALID_HANDLE once closed)
func (s *Socket) Handle() int {
	return s.sd
}

// ============= Helper ==============

// Record a failed syscall: set flags, cache errno and trace it
func (s *Socket) fail(flags StreamState, op string, err error) {
	s.setstate(flags)
	s.errno = errnoOf(err)
	s.lastOp = op
	logger.Debug(op+" failed", "fd", s.sd, "errno", int(s.errno), "state", s.state.String())
}

func errnoOf(err error) unix.Errno {
	if errno, ok := err.(unix.Errno); ok {
		return errno
	}
	return unix.EINVAL
}

// Re-issue a syscall interrupted by a signal
func ignoringEINTR(fn func() error) error {
	for {
		err := fn()
		if err != unix.EINTR {
			return err
		}
	}
}
