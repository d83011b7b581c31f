package main

import (
	"fmt"
	"log"
	"os"

	"libsocket/pkg/socket"
	"libsocket/pkg/util"
)

func main() {
	if len(os.Args) > 3 {
		log.Fatalf("Usage:  %s [addr] [port]\n", os.Args[0])
	}
	addr := "127.0.0.1"
	port := uint16(util.DEFAULT_PORT)
	if len(os.Args) >= 2 {
		addr = os.Args[1]
	}
	if len(os.Args) == 3 {
		p, err := util.ParsePort(os.Args[2])
		if err != nil {
			log.Fatalln(err)
		}
		port = p
	}
	socket.SetLogger(util.NewLogger(os.Stderr, util.LevelFromEnv()))

	line, err := fetchLine(addr, port)
	if err != nil {
		log.Fatalln(err)
	}
	fmt.Println(line)
}

// Connect to addr:port and read one line
func fetchLine(addr string, port uint16) (string, error) {
	client := socket.New()
	defer client.Close()
	client.ConnectAddr(port, addr)
	if !client.Good() {
		return "", client.Err()
	}
	var line string
	if !client.Getline(&line).Ok() {
		return "", client.Err()
	}
	return line, nil
}
