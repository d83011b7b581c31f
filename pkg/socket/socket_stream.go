package socket

import (
	"io"

	"github.com/pkg/errors"
)

// Stream adapts a Socket to io.Reader, io.Writer and io.Closer.
// It shares the socket's handle and flags. Errors returned by Read and
// Write describe that call only; flags left by earlier calls are ignored.
type Stream struct {
	s *Socket
}

func (s *Socket) Stream() *Stream {
	return &Stream{s: s}
}

func (st *Stream) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if err := st.s.read(p); err != nil {
		return 0, errors.Wrap(err, "read")
	}
	if st.s.Count() == 0 {
		return 0, io.EOF
	}
	return st.s.Count(), nil
}

// Write keeps calling the socket's single-shot write with the remainder
// until p is sent or a write fails.
func (st *Stream) Write(p []byte) (int, error) {
	written := 0
	for written < len(p) {
		if err := st.s.write(p[written:]); err != nil {
			return written, errors.Wrap(err, "write")
		}
		written += st.s.Count()
	}
	return written, nil
}

func (st *Stream) Close() error {
	st.s.Close()
	return st.s.Err()
}
