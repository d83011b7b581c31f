package socket

import (
	"strings"

	"golang.org/x/sys/unix"
)

// ================= Listening ====================

// Listen binds the socket to (addr, port) and marks it passive with room
// for backlog pending connections. Each step runs only while the stream
// is GOOD, so a failed bind skips the listen call.
//
// port is in host byte order; the conversion to network order happens
// when the sockaddr is built. Do not pass an htons'd value.
func (s *Socket) Listen(port uint16, addr uint32, backlog int) {
	if s.Good() {
		if err := unix.Bind(s.sd, toSockaddr(port, addr)); err != nil {
			s.fail(OP_ERROR, "bind", err)
		}
	}
	if s.Good() {
		if err := unix.Listen(s.sd, backlog); err != nil {
			s.fail(OP_ERROR, "listen", err)
		}
	}
}

// ListenAddr is Listen with a dotted-decimal address. A conversion failure
// sets OP_ERROR; Listen is still invoked and then does nothing.
func (s *Socket) ListenAddr(port uint16, addrstr string, backlog int) {
	addr, err := StrToAddr(addrstr)
	if err != nil {
		s.fail(OP_ERROR, "inet_pton", unix.EINVAL)
	}
	s.Listen(port, addr, backlog)
}

// Accept waits for a peer to connect
// BLOCK until a connection is established
// Returns the socket representing the connection. If the stream is not
// GOOD or accept fails, the returned socket is closed and carries OP_ERROR.
func (s *Socket) Accept() *Socket {
	if !s.Good() {
		errno := s.errno
		if errno == 0 {
			errno = unix.EBADF
		}
		return newSocket(INVALID_HANDLE, "accept", errno)
	}
	var peersd int
	err := ignoringEINTR(func() error {
		var err error
		peersd, _, err = unix.Accept(s.sd)
		return err
	})
	if err != nil {
		// The listener keeps its flags, only the code is cached
		s.errno = errnoOf(err)
		logger.Debug("accept failed", "fd", s.sd, "errno", int(s.errno))
		return newSocket(INVALID_HANDLE, "accept", err)
	}
	return newSocket(peersd, "", nil)
}

// ================= Connecting ====================

// Connect opens a connection to (addr, port)
// BLOCK until the connection completes or fails
// port and addr are host order, as for Listen.
func (s *Socket) Connect(port uint16, addr uint32) {
	if s.Good() {
		if err := unix.Connect(s.sd, toSockaddr(port, addr)); err != nil {
			s.fail(OP_ERROR, "connect", err)
		}
	}
}

// ConnectAddr is Connect with a dotted-decimal address
func (s *Socket) ConnectAddr(port uint16, addrstr string) {
	addr, err := StrToAddr(addrstr)
	if err != nil {
		s.fail(OP_ERROR, "inet_pton", unix.EINVAL)
	}
	s.Connect(port, addr)
}

// ================= I/O ====================

// Read performs one read of up to len(buf) bytes. Count reports how many
// arrived. Zero bytes for a non-empty buf means the peer closed
// (END_OF_STREAM); a syscall error sets READ_ERROR.
func (s *Socket) Read(buf []byte) *Socket {
	s.read(buf)
	return s
}

// One read syscall. The returned error belongs to this call only,
// unlike the sticky flags it also records.
func (s *Socket) read(buf []byte) error {
	var n int
	err := ignoringEINTR(func() error {
		var err error
		n, err = unix.Read(s.sd, buf)
		return err
	})
	if err != nil {
		s.count = 0
		s.fail(READ_ERROR, "read", err)
		return err
	}
	s.count = n
	if n == 0 && len(buf) > 0 {
		s.setstate(END_OF_STREAM)
	}
	return nil
}

// Write performs one write of buf. A short write is not retried;
// compare Count with len(buf) and call again with the rest.
// Nothing written for a non-empty buf, or a syscall error, sets READ_ERROR.
func (s *Socket) Write(buf []byte) *Socket {
	s.write(buf)
	return s
}

func (s *Socket) write(buf []byte) error {
	var n int
	err := ignoringEINTR(func() error {
		var err error
		n, err = unix.Write(s.sd, buf)
		return err
	})
	if err != nil {
		s.count = 0
		s.fail(READ_ERROR, "write", err)
		return err
	}
	s.count = n
	if n == 0 && len(buf) > 0 {
		s.fail(READ_ERROR, "write", unix.EIO)
		return unix.EIO
	}
	return nil
}

func (s *Socket) WriteString(str string) *Socket {
	return s.Write([]byte(str))
}

// Bytes moved by the last Read or Write
func (s *Socket) Count() int {
	return s.count
}

// Getline reads a '\n' terminated line into line
func (s *Socket) Getline(line *string) *Socket {
	return s.GetlineDelim(line, '\n')
}

// GetlineDelim reads one byte at a time until delim, end of stream or an
// error. The delimiter is consumed but not stored.
// A NUL byte throws away everything gathered so far and the scan starts
// over into the same line.
func (s *Socket) GetlineDelim(line *string, delim byte) *Socket {
	var b strings.Builder
	c := make([]byte, 1)
	for s.Read(c).Ok() && s.count == 1 {
		if c[0] == 0 {
			b.Reset()
			continue
		}
		if c[0] == delim {
			break
		}
		b.WriteByte(c[0])
	}
	*line = b.String()
	return s
}
