package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/chrissnell/suntracker/internal/app"
	"github.com/chrissnell/suntracker/internal/log"
	"github.com/chrissnell/suntracker/pkg/config"
)

const version = "1.0-" + runtime.GOOS + "/" + runtime.GOARCH

func main() {
	cfgFile := flag.String("config", "suntracker.yaml", "Path to configuration source:\n\t\t\t  YAML: suntracker.yaml\n\t\t\t  SQLite: suntracker.db (see config-convert)")
	cfgBackend := flag.String("config-backend", "yaml", "Configuration backend type: 'yaml' for YAML files, 'sqlite' for SQLite databases")
	cfgName := flag.String("config-name", "default", "Name of the configuration to load from a SQLite database")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	serve := flag.Bool("serve", false, "Keep serving results over REST after the experiment finishes")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("suntracker %s\n", version)
		os.Exit(0)
	}

	// Set up logging
	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	provider, err := newProvider(*cfgFile, *cfgBackend, *cfgName)
	if err != nil {
		log.Errorf("Failed to load configuration: %v", err)
		os.Exit(1)
	}
	defer provider.Close()

	// Create and run the application
	application := app.New(provider, log.GetSugaredLogger(), app.Options{Serve: *serve})
	if err := application.Run(context.Background()); err != nil {
		log.Errorf("Application error: %v", err)
		log.Sync()
		os.Exit(1)
	}
}

func newProvider(cfgFile, cfgBackend, cfgName string) (config.ConfigProvider, error) {
	filename, _ := filepath.Abs(cfgFile)

	switch cfgBackend {
	case "yaml":
		provider := config.NewYAMLProvider(filename)
		if _, err := provider.LoadConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file. Did you pass the -config flag? Run with -h for help: %w", err)
		}
		return provider, nil
	case "sqlite":
		provider, err := config.NewSQLiteProvider(filename, cfgName)
		if err != nil {
			return nil, fmt.Errorf("error creating SQLite provider: %w", err)
		}
		if _, err := provider.LoadConfig(); err != nil {
			provider.Close()
			return nil, err
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("unsupported configuration backend: %s. Use 'yaml' or 'sqlite'", cfgBackend)
	}
}
