package main

import (
	"context"
	"flag"
	"os"

	"github.com/cliniktrak/ambulance-dispatch/config"
	"github.com/cliniktrak/ambulance-dispatch/internal/app"
	"github.com/cliniktrak/ambulance-dispatch/pkg/logger"

	_ "github.com/cliniktrak/ambulance-dispatch/docs"
)

var (
	helpFlag   = flag.Bool("help", false, "Show help message")
	configPath = flag.String("config-path", "config.yaml", "Path to the config yaml file")
)

func main() {
	flag.Parse()
	if *helpFlag {
		config.PrintHelp()
		return
	}

	ctx := context.Background()
	log := logger.InitLogger("dispatch", logger.LevelDebug)

	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		log.Error(ctx, "failed to configure application", err)
		config.PrintHelp()
		return
	}

	if cfg.Log.Level != "" {
		log = logger.InitLogger("dispatch", cfg.Log.Level)
	}

	// Creating application
	application, err := app.NewApplication(ctx, *cfg, log)
	if err != nil {
		log.Error(ctx, "failed to init application", err)
		os.Exit(1)
	}

	// Running the application
	if err = application.Start(ctx); err != nil {
		log.Error(ctx, "failed to run application", err)
		os.Exit(1)
	}
}
