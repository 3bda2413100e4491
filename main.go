package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/hbomb79/Marquee/internal"
	"github.com/hbomb79/Marquee/pkg/logger"
	"github.com/mitchellh/go-homedir"
)

var log = logger.Get("Bootstrap")

type flags struct {
	configPath string
	logLevel   string
}

func parseFlags() flags {
	defaultConfigPath := ""
	if home, err := homedir.Dir(); err == nil {
		defaultConfigPath = filepath.Join(home, ".config", "marquee", "config.yaml")
	}

	f := flags{}
	flag.StringVar(&f.configPath, "config", defaultConfigPath, "Path to the YAML config file; environment variables are used when the file does not exist")
	flag.StringVar(&f.logLevel, "log-level", "", "Minimum log level to emit (VERBOSE, DEBUG, INFO, WARNING, ERROR); overrides the config")
	flag.Parse()

	return f
}

func loadConfig(path string) (internal.MarqueeConfig, error) {
	config := internal.DefaultConfig()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return config, config.LoadFromFile(path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return config, err
		}

		log.Emit(logger.WARNING, "Config file %s not found, falling back to environment\n", path)
	}

	return config, config.LoadFromEnv()
}

func main() {
	f := parseFlags()

	config, err := loadConfig(f.configPath)
	if err != nil {
		log.Emit(logger.FATAL, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	levelName := config.LogLevel
	if f.logLevel != "" {
		levelName = f.logLevel
	}
	if level, err := logger.ParseLevel(levelName); err == nil {
		logger.SetMinLoggingLevel(level.Level())
	} else {
		log.Emit(logger.WARNING, "%v, defaulting to INFO\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := internal.New(config).Run(ctx); err != nil {
		log.Emit(logger.FATAL, "Marquee stopped unexpectedly: %v\n", err)
		stop()
		os.Exit(1)
	}

	log.Emit(logger.STOP, "Marquee shutdown complete\n")
}
