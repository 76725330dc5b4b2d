package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

var version = "0.1.0"

func configDir() string {
	if d := os.Getenv("XDG_CONFIG_HOME"); d != "" {
		return filepath.Join(d, "teamjoy")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "teamjoy")
}

// checkAccess fails early with a hint when the device nodes are not usable
// by this user.
func checkAccess(byPathDir string) error {
	if err := unix.Access(byPathDir, unix.R_OK|unix.X_OK); err != nil {
		return fmt.Errorf("cannot read %s: %w", byPathDir, err)
	}
	if err := unix.Access(uinputPath, unix.W_OK); err != nil {
		return fmt.Errorf("cannot write %s: %w\nMake sure you are in the 'input' group and uinput is loaded:\n  sudo usermod -aG input $USER\n  sudo modprobe uinput", uinputPath, err)
	}
	return nil
}

// setup loads the config and word lists shared by every subcommand.
func setup(dir string) (*AppConfig, *Wordhash, error) {
	cfg, err := LoadAppConfig(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("load app config: %w", err)
	}
	if cfg.ConfigVersion < latestConfigVersion {
		fmt.Fprintf(os.Stderr, "teamjoy: WARNING: config is version %d, run 'teamjoy migrate'\n", cfg.ConfigVersion)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	setupLogging(cfg.LogLevel)

	words, err := LoadWords(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("load word lists: %w", err)
	}
	wh, err := NewWordhash(words, cfg.PathHashSalt, cfg.TeamHashSalt)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.CheckNameLength(wh); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, wh, nil
}

func printIdentities(ids []Identity) {
	for _, id := range ids {
		fmt.Printf("  %-15s -> %-20s %s\n", id.Name, id.PortPath, id.EventPath)
	}
}

// reportRosterError prints every offending name or count of a roster
// consistency failure.
func reportRosterError(err error) {
	var missing *MissingPlayersError
	var size *SizeMismatchError
	var count *CountMismatchError
	switch {
	case errors.As(err, &missing):
		fmt.Println("Missing players:")
		for _, p := range missing.Names {
			fmt.Printf("\t%s\n", p)
		}
	case errors.As(err, &size):
		fmt.Printf("Incorrect number of joysticks connected. Expected %d, found %d\n", size.Expected, size.Actual)
	case errors.As(err, &count):
		fmt.Printf("Incorrect number of joysticks connected. Expected %d, found %d\n", count.Expected, count.Actual)
	}
}

func names() error {
	cfg, wh, err := setup(configDir())
	if err != nil {
		return err
	}
	ids, err := NewResolver(cfg, wh).Resolve()
	if err != nil {
		return fmt.Errorf("resolve controllers: %w", err)
	}
	fmt.Printf("teamjoy: %d controller(s)\n", len(ids))
	printIdentities(ids)
	return nil
}

func run() error {
	dir := configDir()

	cfg, wh, err := setup(dir)
	if err != nil {
		return err
	}
	if err := checkAccess(cfg.ByPathDir); err != nil {
		return err
	}

	resolver := NewResolver(cfg, wh)
	ids, err := resolver.Resolve()
	if err != nil {
		return fmt.Errorf("resolve controllers: %w", err)
	}
	fmt.Printf("teamjoy: found %d controller(s), expecting %d\n", len(ids), cfg.TotalPlayers())
	printIdentities(ids)

	roster, created, err := EnsureRoster(cfg.RosterFile, ids, cfg.TeamAllocation, wh)
	if err != nil {
		reportRosterError(err)
		return fmt.Errorf("roster: %w", err)
	}
	if created {
		fmt.Printf("teamjoy: wrote new roster to %s\n", cfg.RosterFile)
	}
	for _, t := range roster.Teams {
		fmt.Printf("  [%d] %s: %v\n", t.OutIndex, t.Name, t.Players)
	}

	sinks, err := openSinks(roster, cfg.SinkName)
	if err != nil {
		return err
	}
	defer closeSinks(sinks)

	agg, err := NewAggregator(roster, sinks, cfg.StickOnlyPlayers)
	if err != nil {
		return err
	}

	devices := NewDeviceSet()
	defer devices.Close()

	reconciler := NewReconciler(resolver, ids)
	reconciler.OnChange = devices.Sync
	devices.Sync(reconciler.ByEventPath())

	watcher, err := WatchDevices(cfg.ByPathDir)
	if err != nil {
		return err
	}
	defer watcher.Close()

	publishers := []FeedbackPublisher{logPublisher{}}
	if cfg.MQTT.Enabled {
		p, err := newMQTTPublisher(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("mqtt feedback: %w", err)
		}
		publishers = append(publishers, p)
	}

	session := NewSession(roster, reconciler, devices, agg, NewJitter(time.Now(), nil), publishers, cfg.RenderInterval)
	defer session.Close()

	// Clean shutdown on SIGINT/SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	fmt.Printf("teamjoy: merging %d controller(s) into %d virtual controller(s)\n", len(ids), len(roster.Teams))
	if err := session.Run(sigCh, watcher, devices, cfg.PollInterval); err != nil {
		return err
	}
	fmt.Println("\nteamjoy: shutting down")
	return nil
}

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "init":
			dir := configDir()
			fmt.Printf("teamjoy: initializing config in %s\n", dir)
			if err := initConfig(dir); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}
			fmt.Println("teamjoy: config initialized")
			return
		case "names":
			if err := names(); err != nil {
				fmt.Fprintf(os.Stderr, "teamjoy: %v\n", err)
				os.Exit(1)
			}
			return
		case "migrate":
			if err := migrateConfig(configDir()); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}
			return
		case "version":
			fmt.Printf("teamjoy %s\n", version)
			return
		default:
			fmt.Fprintf(os.Stderr, "usage: teamjoy [init|names|migrate|version]\n")
			os.Exit(1)
		}
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "teamjoy: %v\n", err)
		os.Exit(1)
	}
}
