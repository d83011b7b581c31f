package repl

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"libsocket/pkg/socket"
	"libsocket/pkg/util"
)

const (
	PROMPT = "> "
	// Largest read the recv command will issue
	MAX_RECV = 65535
)

type ReplHandler = func(args []string) string

type Repl struct {
	// Map from Command to Command Handler
	CommandHandlerMap map[string]ReplHandler
	// Sockets opened from the shell
	Sockets *SocketTable
	// Writer
	Writer *bufio.Writer
	// Scanner
	Scanner *bufio.Scanner
	// Logger
	Logger *slog.Logger
}

// Initialize our REPL
func CreateREPL(in io.Reader, out io.Writer, l *slog.Logger) *Repl {
	if l == nil {
		l = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	r := &Repl{
		CommandHandlerMap: make(map[string]ReplHandler),
		Sockets:           CreateSocketTable(),
		Writer:            bufio.NewWriter(out),
		Scanner:           bufio.NewScanner(in),
		Logger:            l,
	}
	r.registerCommands()
	return r
}

// Register a single command to the map
func (r *Repl) RegisterCommandHandler(command string, handler ReplHandler) {
	r.CommandHandlerMap[command] = handler
}

// Helper function to write a result
func (r *Repl) WriteOutput(output string, prompt bool) {
	r.Writer.WriteString(output)
	if prompt {
		r.Writer.WriteString(PROMPT)
	}
	r.Writer.Flush()
}

func (r *Repl) registerCommands() {
	r.RegisterCommandHandler("listen", r.handleListen)
	r.RegisterCommandHandler("connect", r.handleConnect)
	r.RegisterCommandHandler("accept", r.handleAccept)
	r.RegisterCommandHandler("send", r.handleSend)
	r.RegisterCommandHandler("recv", r.handleRecv)
	r.RegisterCommandHandler("getline", r.handleGetline)
	r.RegisterCommandHandler("close", r.handleClose)
	r.RegisterCommandHandler("ls", r.handleList)
	r.RegisterCommandHandler("errno", r.handleErrno)
	r.RegisterCommandHandler("localinfo", r.handleLocalInfo)
	r.RegisterCommandHandler("echo", r.handleEcho)
	r.RegisterCommandHandler("help", r.handleHelp)
}

// Run the command loop until "exit" or end of input.
// Every socket still open is closed on the way out.
func (r *Repl) StartREPL() {
	defer r.Sockets.CloseAll()

	r.WriteOutput("", true)
	for r.Scanner.Scan() {
		// Split
		tokens := strings.Fields(r.Scanner.Text())
		if len(tokens) == 0 {
			r.WriteOutput("", true)
			continue
		}
		if tokens[0] == "exit" {
			break
		}
		// Get handler
		handler, ok := r.CommandHandlerMap[tokens[0]]
		if !ok {
			// No handler
			r.WriteOutput("Command not supported. Type help to see the supported commands\n", true)
			continue
		}
		// Handle
		r.WriteOutput(handler(tokens), true)
	}
	if e := r.Scanner.Err(); e != nil {
		r.Logger.Error("reading commands", "err", e)
		r.WriteOutput("Shell terminating...\n", false)
	}
}

// ---------- Handler Functions ----------

// Handle "listen" command
func (r *Repl) handleListen(args []string) string {
	if len(args) != 3 && len(args) != 4 {
		return "Usage:  listen <addr> <port> [backlog]\n"
	}
	port, err := util.ParsePort(args[2])
	if err != nil {
		return err.Error() + "\n"
	}
	backlog := 1
	if len(args) == 4 {
		if backlog, err = strconv.Atoi(args[3]); err != nil {
			return fmt.Sprintf("invalid backlog %q\n", args[3])
		}
	}
	s := socket.New()
	s.ListenAddr(port, args[1], backlog)
	if !s.Good() {
		msg := describeFailure("listen", s)
		s.Close()
		return msg
	}
	sid := r.Sockets.Add(s, true)
	r.Logger.Debug("listening", "sid", sid, "local", s.Info().String())
	return fmt.Sprintf("Created listening socket SID=%d on %s\n", sid, s.Info())
}

// Handle "connect" command
func (r *Repl) handleConnect(args []string) string {
	if len(args) != 3 {
		return "Usage:  connect <addr> <port>\n"
	}
	port, err := util.ParsePort(args[2])
	if err != nil {
		return err.Error() + "\n"
	}
	s := socket.New()
	s.ConnectAddr(port, args[1])
	if !s.Good() {
		msg := describeFailure("connect", s)
		s.Close()
		return msg
	}
	sid := r.Sockets.Add(s, false)
	return fmt.Sprintf("Created socket SID=%d %s -> %s\n", sid, s.Info(), s.PeerInfo())
}

// Handle "accept" command
func (r *Repl) handleAccept(args []string) string {
	if len(args) != 2 {
		return "Usage:  accept <sid>\n"
	}
	li, msg := r.lookup(args[1])
	if li == nil {
		return msg
	}
	peer := li.Accept()
	if !peer.Good() {
		return describeFailure("accept", peer)
	}
	sid := r.Sockets.Add(peer, false)
	return fmt.Sprintf("New connection on SID=%s => Created new socket with SID=%d from %s\n", args[1], sid, peer.PeerInfo())
}

// Handle "send" command
func (r *Repl) handleSend(args []string) string {
	if len(args) < 3 {
		return "Usage:  send <sid> <text>\n"
	}
	s, msg := r.lookup(args[1])
	if s == nil {
		return msg
	}
	payload := strings.Join(args[2:], " ") + "\n"
	if !s.WriteString(payload).Ok() {
		return describeFailure("send", s)
	}
	return fmt.Sprintf("Sent %d bytes!\n", s.Count())
}

// Handle "recv" command
func (r *Repl) handleRecv(args []string) string {
	if len(args) != 3 {
		return "Usage:  recv <sid> <n>\n"
	}
	s, msg := r.lookup(args[1])
	if s == nil {
		return msg
	}
	n, err := strconv.Atoi(args[2])
	if err != nil || n <= 0 || n > MAX_RECV {
		return fmt.Sprintf("invalid byte count %q\n", args[2])
	}
	buf := make([]byte, n)
	if !s.Read(buf).Ok() {
		return describeFailure("recv", s)
	}
	if s.Eof() && s.Count() == 0 {
		return "Peer closed the connection\n"
	}
	return fmt.Sprintf("Read %d bytes: %q\n", s.Count(), buf[:s.Count()])
}

// Handle "getline" command
func (r *Repl) handleGetline(args []string) string {
	if len(args) != 2 {
		return "Usage:  getline <sid>\n"
	}
	s, msg := r.lookup(args[1])
	if s == nil {
		return msg
	}
	var line string
	if !s.Getline(&line).Ok() {
		return describeFailure("getline", s)
	}
	if s.Eof() && line == "" {
		return "Peer closed the connection\n"
	}
	return line + "\n"
}

// Handle "close" command
func (r *Repl) handleClose(args []string) string {
	if len(args) != 2 {
		return "Usage:  close <sid>\n"
	}
	s, msg := r.lookup(args[1])
	if s == nil {
		return msg
	}
	s.Close()
	sid, _ := strconv.Atoi(args[1])
	r.Sockets.Remove(sid)
	if !s.Good() {
		return describeFailure("close", s)
	}
	return fmt.Sprintf("Closed SID=%d\n", sid)
}

// Handle "ls" command
func (r *Repl) handleList(args []string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%-4s %-4s %-14s %-21s %s\n", "SID", "FD", "State", "Local", "Peer"))
	for _, sid := range r.Sockets.SIDs() {
		e, _ := r.Sockets.Lookup(sid)
		s := e.S
		// Listing must not disturb the flags of the sockets it shows
		local, peer := "-", "-"
		if ep, err := socket.LocalEndpoint(s.Handle()); err == nil {
			local = ep.String()
		}
		if !e.Listening {
			if ep, err := socket.PeerEndpoint(s.Handle()); err == nil {
				peer = ep.String()
			}
		}
		b.WriteString(fmt.Sprintf("%-4d %-4d %-14s %-21s %s\n", sid, s.Handle(), s.Rdstate(), local, peer))
	}
	return b.String()
}

// Handle "errno" command
func (r *Repl) handleErrno(args []string) string {
	if len(args) != 2 {
		return "Usage:  errno <sid>\n"
	}
	s, msg := r.lookup(args[1])
	if s == nil {
		return msg
	}
	return fmt.Sprintf("%d %s\n", s.Errcode(), s.Strerror())
}

// Handle "localinfo" command
func (r *Repl) handleLocalInfo(args []string) string {
	ep, err := socket.LoopbackLocal()
	if err != nil {
		return fmt.Sprintf("localinfo failed: %v\n", err)
	}
	return ep.String() + "\n"
}

// Handle "echo" command
func (r *Repl) handleEcho(args []string) string {
	return strings.Join(args[1:], " ") + "\n"
}

// Handle "help" command
func (r *Repl) handleHelp(args []string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%-10s %s\n", "-------", "-----------"))
	b.WriteString(fmt.Sprintf("%-10s %s\n", "Command", "Description"))
	b.WriteString(fmt.Sprintf("%-10s %s\n", "-------", "-----------"))
	b.WriteString(fmt.Sprintf("%-10s %s\n", "listen", "Open a listening socket: listen <addr> <port> [backlog]"))
	b.WriteString(fmt.Sprintf("%-10s %s\n", "connect", "Connect to a server: connect <addr> <port>"))
	b.WriteString(fmt.Sprintf("%-10s %s\n", "accept", "Wait for a peer: accept <sid>"))
	b.WriteString(fmt.Sprintf("%-10s %s\n", "send", "Write one line: send <sid> <text>"))
	b.WriteString(fmt.Sprintf("%-10s %s\n", "recv", "Read up to n bytes: recv <sid> <n>"))
	b.WriteString(fmt.Sprintf("%-10s %s\n", "getline", "Read one line: getline <sid>"))
	b.WriteString(fmt.Sprintf("%-10s %s\n", "close", "Close a socket: close <sid>"))
	b.WriteString(fmt.Sprintf("%-10s %s\n", "ls", "List sockets"))
	b.WriteString(fmt.Sprintf("%-10s %s\n", "errno", "Last error of a socket: errno <sid>"))
	b.WriteString(fmt.Sprintf("%-10s %s\n", "localinfo", "Local address facing loopback"))
	b.WriteString(fmt.Sprintf("%-10s %s\n", "echo", "Command Test"))
	b.WriteString(fmt.Sprintf("%-10s %s\n", "exit", "Terminate this program"))
	return b.String()
}

// ============= Helper ==============

// Resolve a SID argument; on failure the socket is nil and msg explains why
func (r *Repl) lookup(arg string) (*socket.Socket, string) {
	sid, err := strconv.Atoi(arg)
	if err != nil {
		return nil, fmt.Sprintf("invalid SID %q\n", arg)
	}
	e, ok := r.Sockets.Lookup(sid)
	if !ok {
		return nil, fmt.Sprintf("SID=%d not found\n", sid)
	}
	return e.S, ""
}

func describeFailure(op string, s *socket.Socket) string {
	return fmt.Sprintf("%s failed: %s (errno %d: %s)\n", op, s.Rdstate(), s.Errcode(), s.Strerror())
}
