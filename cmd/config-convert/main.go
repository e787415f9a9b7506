package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chrissnell/suntracker/pkg/config"
)

func main() {
	var (
		yamlFile   = flag.String("yaml", "", "Path to YAML configuration file")
		sqliteFile = flag.String("sqlite", "", "Path to SQLite database file (required)")
		name       = flag.String("name", "default", "Name to store the configuration under")
		list       = flag.Bool("list", false, "List the configurations stored in the database and exit")
		remove     = flag.Bool("delete", false, "Delete the named configuration and exit")
		dryRun     = flag.Bool("dry-run", false, "Show what would be done without executing")
	)
	flag.Parse()

	if *sqliteFile == "" || (*yamlFile == "" && !*list && !*remove) {
		fmt.Fprintf(os.Stderr, "Usage: %s -yaml <suntracker.yaml> -sqlite <suntracker.db> [-name <name>]\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	if *list || *remove {
		provider, err := config.NewSQLiteProvider(*sqliteFile, *name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening SQLite database: %v\n", err)
			os.Exit(1)
		}
		defer provider.Close()

		if *remove {
			if err := provider.DeleteConfig(*name); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("Deleted configuration %q\n", *name)
			return
		}

		names, err := provider.ListConfigs()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return
	}

	// Check if YAML file exists
	if _, err := os.Stat(*yamlFile); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error: YAML file does not exist: %s\n", *yamlFile)
		os.Exit(1)
	}

	fmt.Printf("Converting YAML configuration to SQLite...\n")
	fmt.Printf("  Source: %s\n", *yamlFile)
	fmt.Printf("  Target: %s (%s)\n", *sqliteFile, *name)

	if *dryRun {
		fmt.Println("DRY RUN - No changes will be made")
	}

	// Load YAML configuration
	fmt.Printf("Loading YAML configuration...\n")
	configData, err := config.NewYAMLProvider(*yamlFile).LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading YAML configuration: %v\n", err)
		os.Exit(1)
	}

	if *dryRun {
		printConfigSummary(configData)
		fmt.Println("DRY RUN complete - no database created")
		return
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(*sqliteFile), 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating directory: %v\n", err)
		os.Exit(1)
	}

	provider, err := config.NewSQLiteProvider(*sqliteFile, *name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating SQLite provider: %v\n", err)
		os.Exit(1)
	}
	defer provider.Close()

	if err := provider.SaveConfig(configData); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving configuration: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Conversion completed successfully!\n")
	fmt.Printf("You can now use the SQLite backend with: -config-backend sqlite -config %s -config-name %s\n", *sqliteFile, *name)
}

func printConfigSummary(configData *config.ConfigData) {
	e := configData.Experiment
	fmt.Println("\nConfiguration Summary:")
	fmt.Printf("Experiment %s:\n", e.Name)
	fmt.Printf("  Agents:    %v\n", e.Agents)
	fmt.Printf("  Instances: %d x %d episodes x %d steps of %v minutes\n",
		e.Instances, e.Episodes, e.StepsPerEpisode(), e.TimestepMinutes)
	fmt.Printf("  Dual axis: %v (compare axes: %v)\n", e.DualAxis, e.CompareAxes)

	if site, err := configData.Location.Resolve(); err == nil {
		fmt.Printf("\nSite %s at %.4f, %.4f starting %s\n",
			site.Name, site.Location.Latitude, site.Location.Longitude, site.Start.Format("2006-01-02 15:04 MST"))
	}

	fmt.Printf("\nStorage Backends:\n")
	if configData.Storage.SQLite != nil {
		fmt.Printf("  - SQLite: %s\n", configData.Storage.SQLite.Path)
	}
	if configData.Storage.TimescaleDB != nil {
		fmt.Printf("  - TimescaleDB: %s\n", configData.Storage.TimescaleDB.ConnectionString)
	}
	if configData.Storage.CSV != nil {
		fmt.Printf("  - CSV: %s\n", configData.Storage.CSV.Path)
	}
	if configData.REST != nil {
		fmt.Printf("\nREST server on port %d\n", configData.REST.Port)
	}
}
