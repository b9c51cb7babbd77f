package main

import "okrtrack/internal/app/server"

func main() {
	server.Run()
}
