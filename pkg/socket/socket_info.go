package socket

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Errcode returns the cached OS error code. With nothing cached it reads
// the handle's pending error (SO_ERROR) and caches that instead.
func (s *Socket) Errcode() int {
	if s.errno != 0 {
		return int(s.errno)
	}
	v, err := unix.GetsockoptInt(s.sd, unix.SOL_SOCKET, unix.SO_ERROR)
	if err != nil {
		s.fail(OP_ERROR, "getsockopt", err)
		return int(s.errno)
	}
	s.errno = unix.Errno(v)
	return v
}

// Human readable message for Errcode
func (s *Socket) Strerror() string {
	code := s.Errcode()
	if code == 0 {
		return "success"
	}
	return unix.Errno(code).Error()
}

// Err describes the last failure as an error, or nil while the stream is Ok.
// errors.Cause returns the unix.Errno.
func (s *Socket) Err() error {
	if s.Ok() {
		return nil
	}
	errno := s.errno
	if errno == 0 {
		errno = unix.EIO
	}
	if s.lastOp == "" {
		return errors.Wrapf(errno, "state %s", s.state)
	}
	return errors.Wrapf(errno, "%s (state %s)", s.lastOp, s.state)
}

// Info returns the local endpoint the socket is bound to
func (s *Socket) Info() Endpoint {
	ep, err := LocalEndpoint(s.sd)
	if err != nil {
		s.fail(OP_ERROR, "getsockname", err)
	}
	return ep
}

// PeerInfo returns the remote endpoint of a connected socket
func (s *Socket) PeerInfo() Endpoint {
	ep, err := PeerEndpoint(s.sd)
	if err != nil {
		s.fail(OP_ERROR, "getpeername", err)
	}
	return ep
}

// LocalInfo finds the local address used to reach the loopback network.
// A failure sets OP_ERROR on s, which is otherwise unused.
func (s *Socket) LocalInfo() Endpoint {
	ep, err := LoopbackLocal()
	if err != nil {
		s.fail(OP_ERROR, "getsockname", err)
	}
	return ep
}

// LocalEndpoint reads the address descriptor sd is bound to.
// Unlike Info it leaves no trace on any Socket.
func LocalEndpoint(sd int) (Endpoint, error) {
	sa, err := unix.Getsockname(sd)
	if err != nil {
		return Endpoint{}, err
	}
	return fromSockaddr(sa), nil
}

// PeerEndpoint reads the remote address of the connected descriptor sd
func PeerEndpoint(sd int) (Endpoint, error) {
	sa, err := unix.Getpeername(sd)
	if err != nil {
		return Endpoint{}, err
	}
	return fromSockaddr(sa), nil
}

// LoopbackLocal has no direct syscall behind it: a throwaway socket is
// connected to INADDR_LOOPBACK and the address the OS picked for it is
// read back. The connect outcome itself is not checked.
func LoopbackLocal() (Endpoint, error) {
	local := New()
	defer local.Close()

	local.Connect(0, INADDR_LOOPBACK)
	return LocalEndpoint(local.sd)
}
