package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/staffsight/ligature/internal/config"
	"github.com/staffsight/ligature/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using defaults")
	}

	zlog, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()
	sugar := zlog.Sugar()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		sugar.Warnw("config file not loaded, using defaults", "path", cfgPath, "error", err)
		cfg = config.Default()
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Server.Port
	}

	srv, err := server.NewServer(cfg, sugar)
	if err != nil {
		sugar.Fatalw("failed to initialize server", "error", err)
	}
	r := srv.SetupRouter()

	sugar.Infow("starting server", "port", port)
	if err := r.Run(":" + port); err != nil {
		sugar.Fatalw("server exited", "error", err)
	}
}
