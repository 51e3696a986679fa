package main

import "mawared/internal/app/server"

func main() {
	server.Run()
}
