// Package main provides the wizardrunner CLI: it executes a stored
// wizard structure against live pages with user-supplied data and
// prints the execution result as JSON, suitable for scripting and
// CI pipelines.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/entrhq/wizardrunner/pkg/browser"
	"github.com/entrhq/wizardrunner/pkg/config"
	"github.com/entrhq/wizardrunner/pkg/runner"
	"github.com/entrhq/wizardrunner/pkg/wizard"
)

const version = "0.1.0"

// CLIConfig holds command-line configuration.
type CLIConfig struct {
	WizardsDir  string
	WizardID    string
	DataFile    string
	ConfigFile  string
	Mode        string
	Headless    bool
	List        bool
	ListPattern string
	ShowVersion bool
}

func main() {
	cli := parseFlags()

	if cli.ShowVersion {
		fmt.Printf("wizardrunner v%s\n", version)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nShutting down...")
		cancel()
	}()

	if err := run(ctx, cli); err != nil {
		cancel()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cancel()
}

// parseFlags parses command line flags.
func parseFlags() *CLIConfig {
	cli := &CLIConfig{}

	flag.StringVar(&cli.WizardsDir, "wizards", ".", "Directory holding wizard-structures/ and data-schemas/")
	flag.StringVar(&cli.WizardID, "wizard", "", "ID of the wizard to execute")
	flag.StringVar(&cli.DataFile, "data", "", "Path to a JSON file with the user data")
	flag.StringVar(&cli.ConfigFile, "config", "", "Path to a configuration file (YAML)")
	flag.StringVar(&cli.Mode, "mode", "", "Screenshot mode override: debug or production")
	flag.BoolVar(&cli.Headless, "headless", true, "Run the browser headless")
	flag.BoolVar(&cli.List, "list", false, "List stored wizards and exit")
	flag.StringVar(&cli.ListPattern, "pattern", "", "Glob pattern for -list (e.g. \"federal-*\")")
	flag.BoolVar(&cli.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "wizardrunner - declarative web wizard execution\n\n")
		fmt.Fprintf(os.Stderr, "Usage: wizardrunner [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # List stored wizards\n")
		fmt.Fprintf(os.Stderr, "  wizardrunner -wizards ./wizards -list\n\n")
		fmt.Fprintf(os.Stderr, "  # Execute a wizard with user data\n")
		fmt.Fprintf(os.Stderr, "  wizardrunner -wizards ./wizards -wizard aid-estimator -data applicant.json\n\n")
		fmt.Fprintf(os.Stderr, "  # Debug run with a visible browser and full screenshot trail\n")
		fmt.Fprintf(os.Stderr, "  wizardrunner -wizard aid-estimator -data applicant.json -mode debug -headless=false\n\n")
	}

	flag.Parse()
	return cli
}

func run(ctx context.Context, cli *CLIConfig) error {
	store := wizard.NewStore(cli.WizardsDir)

	if cli.List {
		return listWizards(store, cli.ListPattern)
	}

	if cli.WizardID == "" {
		return fmt.Errorf("-wizard is required (or use -list)")
	}
	if cli.DataFile == "" {
		return fmt.Errorf("-data is required")
	}

	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}

	structure, err := store.Get(cli.WizardID)
	if err != nil {
		return err
	}
	sch, err := store.SchemaFor(cli.WizardID)
	if err != nil {
		return err
	}
	userData, err := loadUserData(cli.DataFile)
	if err != nil {
		return err
	}

	manager := browser.NewManager()
	if err := manager.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize browser runtime: %w", err)
	}
	defer manager.Shutdown()

	result := runner.NewFromManager(cfg, manager).Execute(ctx, structure, sch, userData)

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	fmt.Println(string(out))

	if !result.Success {
		os.Exit(1)
	}
	return nil
}

// loadConfig resolves the execution config from defaults, an optional
// file, and CLI overrides, in that order.
func loadConfig(cli *CLIConfig) (config.Config, error) {
	cfg := config.Default()
	if cli.ConfigFile != "" {
		loaded, err := config.Load(cli.ConfigFile)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	if cli.Mode != "" {
		cfg.Mode = config.Mode(cli.Mode)
	}
	cfg.Browser.Headless = cli.Headless

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// loadUserData reads the user's answers from a JSON file.
func loadUserData(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("data file %s is not a JSON object: %w", path, err)
	}
	return data, nil
}

// listWizards prints a one-line summary per stored wizard.
func listWizards(store *wizard.Store, pattern string) error {
	infos, err := store.List(pattern)
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Println("No wizards found.")
		return nil
	}
	for _, info := range infos {
		fmt.Printf("%-24s %-32s pages=%-3d %s\n", info.WizardID, info.Name, info.Pages, info.URL)
	}
	return nil
}
