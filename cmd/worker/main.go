package main

import (
	"log"

	"peerform/internal/worker"
)

func main() {
	if err := worker.Run(); err != nil {
		log.Fatalf("Worker failed: %v", err)
	}
}
