package socket

import (
	"strings"
)

type StreamState uint8

const (
	// Defines the flags a Socket stream can carry.
	// GOOD is the empty set; the others combine.
	GOOD          StreamState = 0
	END_OF_STREAM StreamState = 1 << (iota - 1)
	READ_ERROR
	OP_ERROR
)

// ============= Queries ==============

// Current state flags of the socket
func (s *Socket) Rdstate() StreamState {
	return s.state
}

// True when no flag is set
func (s *Socket) Good() bool {
	return s.state == GOOD
}

// True when the peer performed an orderly close during a read
func (s *Socket) Eof() bool {
	return s.state&END_OF_STREAM != 0
}

// True when a read or write syscall failed
func (s *Socket) Bad() bool {
	return s.state&READ_ERROR != 0
}

// True when either error flag is set. END_OF_STREAM alone is not a failure.
func (s *Socket) Fail() bool {
	return s.state&(READ_ERROR|OP_ERROR) != 0
}

// Boolean conversion of the stream, so callers can write
//
//	for s.Read(buf).Ok() { ... }
func (s *Socket) Ok() bool {
	return !s.Fail()
}

// Reset every flag. This is the only way to clear flags
// besides a successful Close.
func (s *Socket) Clear() {
	s.state = GOOD
}

func (s *Socket) setstate(flags StreamState) {
	s.state |= flags
}

// ============= Helper ==============

// Given a StreamState, return the string representation of it
func ToStreamStateStr(state StreamState) string {
	if state == GOOD {
		return "GOOD"
	}
	var names []string
	if state&END_OF_STREAM != 0 {
		names = append(names, "END_OF_STREAM")
	}
	if state&READ_ERROR != 0 {
		names = append(names, "READ_ERROR")
	}
	if state&OP_ERROR != 0 {
		names = append(names, "OP_ERROR")
	}
	return strings.Join(names, "|")
}

func (state StreamState) String() string {
	return ToStreamStateStr(state)
}
