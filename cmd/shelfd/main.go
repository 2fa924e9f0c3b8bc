package main

import (
	"log"

	"github.com/shelfd/shelf/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ shelfd failed to start: %v", err)
	}
}
