package socket

import (
	"testing"
)

func TestStreamStateStr(t *testing.T) {
	cases := map[StreamState]string{
		GOOD:                       "GOOD",
		END_OF_STREAM:              "END_OF_STREAM",
		READ_ERROR | OP_ERROR:      "READ_ERROR|OP_ERROR",
		END_OF_STREAM | READ_ERROR: "END_OF_STREAM|READ_ERROR",
	}
	for state, want := range cases {
		if got := ToStreamStateStr(state); got != want {
			t.Fatalf("ToStreamStateStr error, want %s, received %s", want, got)
		}
	}
}

func TestStateQueries(t *testing.T) {
	s := &Socket{sd: INVALID_HANDLE}
	if !s.Good() || !s.Ok() {
		t.Fatalf("State error, want GOOD, received %s", s.Rdstate())
	}
	s.setstate(END_OF_STREAM)
	if s.Good() || !s.Eof() || !s.Ok() {
		t.Fatalf("State error, want END_OF_STREAM and Ok, received %s", s.Rdstate())
	}
	s.setstate(OP_ERROR)
	if !s.Fail() || s.Bad() || s.Ok() {
		t.Fatalf("State error, want OP_ERROR, received %s", s.Rdstate())
	}
	// Sticky until cleared
	s.setstate(GOOD)
	if s.Rdstate() != END_OF_STREAM|OP_ERROR {
		t.Fatalf("State error, want flags kept, received %s", s.Rdstate())
	}
	s.Clear()
	if !s.Good() {
		t.Fatalf("Clear error, want GOOD, received %s", s.Rdstate())
	}
}
