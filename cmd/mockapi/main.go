// cmd/mockapi/main.go
package main

import (
	"log"
	"net/http"
	"time"

	"github.com/vasujain275/shelfwise-sub000/internal/config"
	"github.com/vasujain275/shelfwise-sub000/internal/mockapi"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	store := mockapi.NewStore(time.Now)
	if err := store.Seed(); err != nil {
		log.Fatalf("failed to seed fixtures: %v", err)
	}

	server := mockapi.NewServer(store, cfg.MockAPI.JWTSecret, cfg.MockAPI.TokenTTL)
	if cfg.MockAPI.FaultLatency > 0 || cfg.MockAPI.FaultErrorRate > 0 {
		server = server.WithFaults(mockapi.NewFaults(
			cfg.MockAPI.FaultLatency, cfg.MockAPI.FaultJitter, cfg.MockAPI.FaultErrorRate,
			time.Now().UnixNano()))
		log.Printf("fault injection enabled: latency=%s error_rate=%.2f",
			cfg.MockAPI.FaultLatency, cfg.MockAPI.FaultErrorRate)
	}

	log.Printf("mock ShelfWise API listening on port %s", cfg.MockAPI.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.MockAPI.Port, server.Handler()))
}
