package repl

import (
	"sort"
	"sync"

	"libsocket/pkg/socket"
)

type SocketEntry struct {
	S *socket.Socket
	// Passive sockets have no peer to report
	Listening bool
}

type SocketTable struct {
	// Next Available Socket ID
	NextSID int
	// Socket Id to the socket it names
	Table map[int]*SocketEntry
	StMtx sync.Mutex
}

// Function that initializes an empty socket table
func CreateSocketTable() *SocketTable {
	return &SocketTable{
		NextSID: 0,
		Table:   make(map[int]*SocketEntry),
	}
}

// =================== Helper ===================

// Allocate a socket id and add the socket to the table
func (st *SocketTable) Add(s *socket.Socket, listening bool) int {
	st.StMtx.Lock()
	defer st.StMtx.Unlock()
	sid := st.NextSID
	st.NextSID++
	st.Table[sid] = &SocketEntry{S: s, Listening: listening}
	return sid
}

func (st *SocketTable) Lookup(sid int) (*SocketEntry, bool) {
	st.StMtx.Lock()
	defer st.StMtx.Unlock()
	e, ok := st.Table[sid]
	return e, ok
}

func (st *SocketTable) Remove(sid int) {
	st.StMtx.Lock()
	defer st.StMtx.Unlock()
	delete(st.Table, sid)
}

// Socket ids in ascending order
func (st *SocketTable) SIDs() []int {
	st.StMtx.Lock()
	defer st.StMtx.Unlock()
	sids := make([]int, 0, len(st.Table))
	for sid := range st.Table {
		sids = append(sids, sid)
	}
	sort.Ints(sids)
	return sids
}

// Close every socket and empty the table
func (st *SocketTable) CloseAll() {
	st.StMtx.Lock()
	defer st.StMtx.Unlock()
	for sid, e := range st.Table {
		if e.S.IsOpen() {
			e.S.Close()
		}
		delete(st.Table, sid)
	}
}
