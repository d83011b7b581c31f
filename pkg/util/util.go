package util

import (
	"strconv"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

const (
	// Port used by the example server and client
	DEFAULT_PORT = 1212
	// Pending connection queue for the example server
	DEFAULT_BACKLOG = unix.SOMAXCONN
	// What the example server sends to its one peer
	GREETING = "hello world!\n"
	// Environment variable holding the log level of the binaries
	LOG_LEVEL_ENV = "LIBSOCKET_LOG"
)

// Parse a decimal TCP port
func ParsePort(s string) (uint16, error) {
	p, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid port %q", s)
	}
	return uint16(p), nil
}
