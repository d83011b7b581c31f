package main

import (
	"log"
	"os"

	"libsocket/pkg/repl"
	"libsocket/pkg/socket"
	"libsocket/pkg/util"
)

func main() {
	if len(os.Args) != 1 {
		log.Fatalf("Usage:  %s\n", os.Args[0])
	}
	logger := util.NewLogger(os.Stderr, util.LevelFromEnv())
	socket.SetLogger(logger)

	// Start the REPL
	r := repl.CreateREPL(os.Stdin, os.Stdout, logger)
	r.StartREPL()
}
