package socket

import (
	"encoding/binary"
	"fmt"
	"net"
	"net/netip"
	"strings"

	"github.com/pkg/errors"
	"github.com/praserx/ipconv"
	"golang.org/x/sys/unix"
)

const (
	INADDR_ANY      uint32 = 0x00000000
	INADDR_LOOPBACK uint32 = 0x7f000001
)

var ErrInvalidAddr = errors.New("invalid IPv4 address")

// Endpoint is an IPv4 address and port as reported by the OS
type Endpoint struct {
	Addr uint32
	Port uint16
}

func (e Endpoint) String() string {
	return fmt.Sprintf("%s:%d", AddrToStr(e.Addr), e.Port)
}

func (e Endpoint) AddrPort() netip.AddrPort {
	var a [4]byte
	binary.BigEndian.PutUint32(a[:], e.Addr)
	return netip.AddrPortFrom(netip.AddrFrom4(a), e.Port)
}

// StrToAddr converts a dotted-decimal IPv4 string to its binary form.
// Anything that is not exactly four decimal octets is rejected.
func StrToAddr(addrstr string) (uint32, error) {
	if strings.ContainsRune(addrstr, ':') {
		return 0, errors.Wrapf(ErrInvalidAddr, "%q", addrstr)
	}
	ip := net.ParseIP(addrstr)
	if ip == nil {
		return 0, errors.Wrapf(ErrInvalidAddr, "%q", addrstr)
	}
	addr, err := ipconv.IPv4ToInt(ip)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidAddr, "%q: %v", addrstr, err)
	}
	return addr, nil
}

// AddrToStr converts a binary IPv4 address to dotted-decimal text
func AddrToStr(addr uint32) string {
	return ipconv.IntToIPv4(addr).String()
}

func toSockaddr(port uint16, addr uint32) *unix.SockaddrInet4 {
	sa := &unix.SockaddrInet4{Port: int(port)}
	binary.BigEndian.PutUint32(sa.Addr[:], addr)
	return sa
}

func fromSockaddr(sa unix.Sockaddr) Endpoint {
	sa4, ok := sa.(*unix.SockaddrInet4)
	if !ok {
		return Endpoint{}
	}
	return Endpoint{
		Addr: binary.BigEndian.Uint32(sa4.Addr[:]),
		Port: uint16(sa4.Port),
	}
}
