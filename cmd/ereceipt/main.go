package main

import (
	"log"

	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/internal/ereceipt/app"
)

func main() {
	cfg := app.LoadConfig()

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("application error: %v", err)
	}
}
