package socket

import (
	"bufio"
	"io"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

func TestWriteReadRoundTrip(t *testing.T) {
	li, client, peer := connectPair(t)
	defer li.Close()
	defer client.Close()
	defer peer.Close()

	msg := []byte("hello world!\n")
	if !peer.Write(msg).Ok() || peer.Count() != len(msg) {
		t.Fatalf("Write error, want %d bytes, received %d (%s)", len(msg), peer.Count(), peer.Rdstate())
	}
	buf := make([]byte, len(msg))
	if !client.Read(buf).Ok() {
		t.Fatalf("Read error, want ok, received %s", client.Rdstate())
	}
	if string(buf[:client.Count()]) != string(msg) {
		t.Fatalf("Read error, want %q, received %q", msg, buf[:client.Count()])
	}
}

func TestReadEndOfStream(t *testing.T) {
	li, client, peer := connectPair(t)
	defer li.Close()
	defer client.Close()

	peer.Close()
	buf := make([]byte, 16)
	client.Read(buf)
	if !client.Eof() || client.Count() != 0 {
		t.Fatalf("Read error, want END_OF_STREAM and 0 bytes, received %s and %d", client.Rdstate(), client.Count())
	}
	// End of stream alone is not a failure
	if !client.Ok() {
		t.Fatalf("Read error, want Ok, received %s", client.Rdstate())
	}
}

func TestReadZeroLength(t *testing.T) {
	li, client, peer := connectPair(t)
	defer li.Close()
	defer client.Close()
	defer peer.Close()

	client.Read(nil)
	if !client.Good() {
		t.Fatalf("Read error, want GOOD for empty buffer, received %s", client.Rdstate())
	}
}

func TestReadClosedHandle(t *testing.T) {
	s := New()
	s.Close()
	s.Read(make([]byte, 4))
	if !s.Bad() {
		t.Fatalf("Read error, want READ_ERROR, received %s", s.Rdstate())
	}
	s.Clear()
	s.Write([]byte("x"))
	if s.Rdstate() != READ_ERROR {
		t.Fatalf("Write error, want READ_ERROR, received %s", s.Rdstate())
	}
}

func TestGetline(t *testing.T) {
	li, client, peer := connectPair(t)
	defer li.Close()
	defer client.Close()
	defer peer.Close()

	peer.WriteString("abc\ndef\n")
	var line string
	if !client.Getline(&line).Ok() || line != "abc" {
		t.Fatalf("Getline error, want %q, received %q", "abc", line)
	}
	if !client.Getline(&line).Ok() || line != "def" {
		t.Fatalf("Getline error, want %q, received %q", "def", line)
	}
}

func TestGetlineDiscardsBeforeNUL(t *testing.T) {
	li, client, peer := connectPair(t)
	defer li.Close()
	defer client.Close()
	defer peer.Close()

	peer.Write([]byte("ab\x00cd\nxy\x00\x00z;rest"))
	var line string
	client.Getline(&line)
	if line != "cd" {
		t.Fatalf("Getline error, want %q, received %q", "cd", line)
	}
	client.GetlineDelim(&line, ';')
	if line != "z" {
		t.Fatalf("GetlineDelim error, want %q, received %q", "z", line)
	}
}

func TestGetlineEndOfStream(t *testing.T) {
	li, client, peer := connectPair(t)
	defer li.Close()
	defer client.Close()

	peer.WriteString("partial")
	peer.Close()
	line := "stale"
	client.Getline(&line)
	if line != "partial" || !client.Eof() {
		t.Fatalf("Getline error, want %q with END_OF_STREAM, received %q with %s", "partial", line, client.Rdstate())
	}
	client.Getline(&line)
	if line != "" {
		t.Fatalf("Getline error, want empty line, received %q", line)
	}
}

func TestStream(t *testing.T) {
	li, client, peer := connectPair(t)
	defer li.Close()
	defer client.Close()

	w := peer.Stream()
	if _, err := io.WriteString(w, "one\ntwo\n"); err != nil {
		t.Fatalf("Stream error, want nil, received %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Stream error, want nil on close, received %v", err)
	}

	sc := bufio.NewScanner(client.Stream())
	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if sc.Err() != nil {
		t.Fatalf("Stream error, want nil, received %v", sc.Err())
	}
	if len(lines) != 2 || lines[0] != "one" || lines[1] != "two" {
		t.Fatalf("Stream error, want [one two], received %v", lines)
	}
}

func TestStreamWriteFailure(t *testing.T) {
	s := New()
	s.Close()
	n, err := s.Stream().Write([]byte("data"))
	if err == nil || n != 0 {
		t.Fatalf("Stream error, want failure, received %d %v", n, err)
	}
}

func TestStreamReadAfterEarlierFailure(t *testing.T) {
	li, client, peer := connectPair(t)
	defer li.Close()
	defer client.Close()
	defer peer.Close()

	// Left over from an unrelated failed call
	client.setstate(READ_ERROR)
	if !peer.WriteString("data").Ok() {
		t.Fatalf("Write error, received %s", peer.Rdstate())
	}
	buf := make([]byte, 16)
	n, err := client.Stream().Read(buf)
	if err != nil || string(buf[:n]) != "data" {
		t.Fatalf("Stream error, want data/nil, received %q/%v", buf[:n], err)
	}
	if client.Rdstate() != READ_ERROR {
		t.Fatalf("Stream error, want flags kept, received %s", client.Rdstate())
	}
}

func TestStreamWriteAfterEarlierFailure(t *testing.T) {
	li, client, peer := connectPair(t)
	defer li.Close()
	defer client.Close()
	defer peer.Close()

	client.setstate(READ_ERROR)
	n, err := client.Stream().Write([]byte("data"))
	if err != nil || n != 4 {
		t.Fatalf("Stream error, want 4/nil, received %d/%v", n, err)
	}
	buf := make([]byte, 4)
	if !peer.Read(buf).Ok() || string(buf[:peer.Count()]) != "data" {
		t.Fatalf("Read error, want data, received %q", buf[:peer.Count()])
	}
}

func TestStreamReadError(t *testing.T) {
	s := New()
	s.Close()
	n, err := s.Stream().Read(make([]byte, 4))
	if n != 0 || err == nil || err == io.EOF {
		t.Fatalf("Stream error, want read failure, received %d %v", n, err)
	}
	if errors.Cause(err) != unix.EBADF {
		t.Fatalf("Stream error, want EBADF, received %v", errors.Cause(err))
	}
	if !strings.HasPrefix(err.Error(), "read: ") {
		t.Fatalf("Stream error, want read prefix, received %q", err.Error())
	}
}
