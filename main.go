package main

import (
	"flag"
	"log"
	"net/http"
	"os"

	"github.com/jalad-shrimali/bureaux-filter/bureau"
	"github.com/jalad-shrimali/bureaux-filter/handlers"
	"github.com/jalad-shrimali/bureaux-filter/store"
)

func main() {
	configPath := flag.String("config", os.Getenv("BUREAUX_CONFIG"), "Path to a YAML config file")
	flag.Parse()

	cfg, err := loadConfig(*configPath, os.Getenv)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	opts := handlers.Options{
		MaxUploadBytes: int64(cfg.MaxUploadMB) << 20,
		DefaultMode:    bureau.MatchMode(cfg.DefaultMode),
	}
	if cfg.SnapshotDB != "" {
		snaps, err := store.Open(cfg.SnapshotDB)
		if err != nil {
			log.Fatalf("snapshots: %v", err)
		}
		defer snaps.Close()
		opts.Snapshots = snaps
		log.Printf("Snapshots stored in %s", cfg.SnapshotDB)
	} else {
		log.Println("Snapshots disabled")
	}

	srv := handlers.NewServer(opts)

	log.Printf("Server started on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, srv); err != nil {
		log.Fatal(err)
	}
}
