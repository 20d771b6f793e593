// Command steading runs the settlement simulation: an interactive
// console game, a headless runner, and an HTTP server over one world.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/talgya/steading/internal/api"
	"github.com/talgya/steading/internal/config"
	"github.com/talgya/steading/internal/engine"
	"github.com/talgya/steading/internal/persistence"
)

var (
	configFile string
	savePath   string
	seed       int64
	difficulty string
	port       int
	days       int
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	rootCmd := &cobra.Command{
		Use:   "steading",
		Short: "A settlement simulation of scarcity, trade, and legacy",
		Long: `Steading runs one settlement from its founding to its legacy:
mine, build, craft, research, and keep the land alive while you do.`,
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to JSON config file")
	rootCmd.PersistentFlags().StringVar(&savePath, "save", "", "Path to the save database")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 0, "World seed")
	rootCmd.PersistentFlags().StringVar(&difficulty, "difficulty", "", "Starting profile: easy, normal, or hard")

	playCmd := &cobra.Command{
		Use:   "play",
		Short: "Play the settlement at the console",
		Run:   runPlay,
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Advance the world headless for a number of days",
		Run:   runHeadless,
	}
	runCmd.Flags().IntVarP(&days, "days", "n", 30, "Days to simulate")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the world over the HTTP API",
		Run:   runServe,
	}
	serveCmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP port")

	rootCmd.AddCommand(playCmd, runCmd, serveCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig layers the JSON file and explicit flags over the defaults.
func loadConfig(cmd *cobra.Command) config.Config {
	cfg := config.Default()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			color.Red("Error loading config: %v", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("save") {
		cfg.SavePath = savePath
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("difficulty") {
		cfg.Difficulty = config.Difficulty(difficulty)
	}
	if flags.Changed("port") {
		cfg.Port = port
	}
	if err := cfg.Validate(); err != nil {
		color.Red("Invalid config: %v", err)
		os.Exit(1)
	}
	return cfg
}

// openWorld opens the save store and either restores the latest snapshot
// or founds a fresh settlement from the config.
func openWorld(cfg config.Config) (*engine.Engine, *persistence.DB, error) {
	if dir := filepath.Dir(cfg.SavePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, nil, fmt.Errorf("create save directory: %w", err)
		}
	}
	db, err := persistence.Open(cfg.SavePath)
	if err != nil {
		return nil, nil, err
	}

	worldID, created, err := db.EnsureWorld(cfg.Seed, string(cfg.Difficulty))
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	has, err := db.HasSnapshot()
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	if !has {
		if created {
			slog.Info("settlement founded", "world_id", worldID, "seed", cfg.Seed, "difficulty", cfg.Difficulty)
		}
		return engine.New(cfg), db, nil
	}

	// A save that fails its checksum or carries ids this build does not
	// know is unplayable; log it, clear the store and found a fresh world
	// in its place.
	st, err := db.LoadLatest()
	if err != nil {
		slog.Warn("saved world unreadable, starting fresh", "error", err)
		return refoundWorld(cfg, db), db, nil
	}
	eng, err := engine.Restore(cfg, st)
	if err != nil {
		slog.Warn("saved world rejected, starting fresh", "day", st.Day, "error", err)
		return refoundWorld(cfg, db), db, nil
	}

	// The chronicle is stored alongside the snapshot; reload the recent
	// entries so the console picks up where it left off.
	logged, err := db.RecentEvents(200)
	if err == nil {
		for i := len(logged) - 1; i >= 0; i-- {
			eng.Events = append(eng.Events, logged[i])
		}
	}

	slog.Info("world restored", "world_id", worldID, "day", eng.Day, "population", eng.Population)
	return eng, db, nil
}

// refoundWorld clears a store whose save could not be restored and starts
// a new settlement in it, so the dead rows can never be served again.
func refoundWorld(cfg config.Config, db *persistence.DB) *engine.Engine {
	if err := db.Reset(); err != nil {
		slog.Warn("could not clear save store", "error", err)
	} else if _, _, err := db.EnsureWorld(cfg.Seed, string(cfg.Difficulty)); err != nil {
		slog.Warn("could not record new world", "error", err)
	}
	return engine.New(cfg)
}

// saveWorld persists the snapshot and the chronicle together.
func saveWorld(eng *engine.Engine, db *persistence.DB) error {
	if err := db.SaveSnapshot(eng.Serialize()); err != nil {
		return err
	}
	return db.SaveEvents(eng.Events)
}

func runHeadless(cmd *cobra.Command, args []string) {
	cfg := loadConfig(cmd)
	eng, db, err := openWorld(cfg)
	if err != nil {
		color.Red("Error opening world: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	start := eng.Day
	for i := 0; i < days; i++ {
		if ev, ok := eng.OpenDay(); ok {
			slog.Info("random event", "day", eng.Day, "event", ev.Name)
		}
		rep := eng.CloseDay()
		if rep.Famine {
			slog.Warn("famine", "day", rep.Day, "happiness", fmt.Sprintf("%.1f", rep.Happiness))
		}
		if rep.Victory {
			slog.Info("victory", "day", rep.Day, "category", rep.Category)
		}
		if rep.AutosaveDue {
			if err := saveWorld(eng, db); err != nil {
				slog.Error("autosave failed", "day", rep.Day, "error", err)
			}
		}
	}
	if err := saveWorld(eng, db); err != nil {
		slog.Error("final save failed", "error", err)
	}

	snap := eng.Snapshot()
	legacy := eng.FinalLegacy()
	fmt.Printf("\nRan days %d to %d.\n", start+1, snap.Day)
	fmt.Printf("Population %d, happiness %.1f, research %.1f, land %s.\n",
		snap.Population, snap.Happiness, snap.ResearchProgress, snap.EcoStatus)
	fmt.Printf("Standing legacy: %s (%s, score %.1f)\n", legacy.Title, legacy.Category, legacy.Score)
}

func runServe(cmd *cobra.Command, args []string) {
	cfg := loadConfig(cmd)
	eng, db, err := openWorld(cfg)
	if err != nil {
		color.Red("Error opening world: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	adminKey := cfg.AdminKey
	if env := os.Getenv("STEADING_ADMIN_KEY"); env != "" {
		adminKey = env
	}
	if adminKey == "" {
		slog.Warn("no admin key configured, POST endpoints disabled")
	}

	server := &api.Server{
		Eng:      eng,
		DB:       db,
		Port:     cfg.Port,
		AdminKey: adminKey,
	}
	server.Start()

	fmt.Printf("Steading day %d: %d villagers under your care.\n", eng.Day, eng.Population)
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.Port)
	fmt.Println("Serving... (Ctrl+C to stop)")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("received signal, shutting down", "signal", sig)

	if err := saveWorld(eng, db); err != nil {
		slog.Error("final save failed", "error", err)
	}
	fmt.Println("World saved.")
}
