package main

import (
	"log"
	"log/slog"
	"os"

	"libsocket/pkg/socket"
	"libsocket/pkg/util"
)

func main() {
	if len(os.Args) > 2 {
		log.Fatalf("Usage:  %s [port]\n", os.Args[0])
	}
	port := uint16(util.DEFAULT_PORT)
	if len(os.Args) == 2 {
		p, err := util.ParsePort(os.Args[1])
		if err != nil {
			log.Fatalln(err)
		}
		port = p
	}
	logger := util.NewLogger(os.Stderr, util.LevelFromEnv())
	socket.SetLogger(logger)

	server := socket.New()
	server.Listen(port, socket.INADDR_ANY, util.DEFAULT_BACKLOG)
	if !server.Good() {
		log.Fatalln(server.Err())
	}
	logger.Info("listening", "local", server.Info().String())
	err := greetOne(server, logger)
	server.Close()
	if err != nil {
		log.Fatalln(err)
	}
}

// Accept exactly one peer, send it the greeting and hang up
func greetOne(server *socket.Socket, logger *slog.Logger) error {
	client := server.Accept()
	defer client.Close()
	if !client.Good() {
		return client.Err()
	}
	logger.Info("accepted", "peer", client.PeerInfo().String())
	if !client.WriteString(util.GREETING).Ok() {
		return client.Err()
	}
	return nil
}
