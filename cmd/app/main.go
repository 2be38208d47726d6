package main

import (
	"flag"
	"log"
	"os"

	"github.com/Dahilon/Atlas/internal/di"
	"github.com/Dahilon/Atlas/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	if err := run(*configPath); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.LoadWithEnv(configPath)
	if err != nil {
		return err
	}
	log.Printf("starting: env=%s backend=%s", cfg.Environment, cfg.Backend.Type)

	app, err := di.InitializeApp(cfg)
	if err != nil {
		return err
	}
	log.Printf("clickhouse ready: table=%s", cfg.EventsTableFQN())
	log.Printf("kafka ready: brokers=%v articles=%s scored=%s",
		cfg.Kafka.Brokers, cfg.Kafka.ArticlesTopic, cfg.Kafka.ScoredTopic)

	// Blocks until SIGINT/SIGTERM.
	return app.Run()
}
