package main

import (
	"context"
	"database/sql"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Git0Shuai/bevy"
	"github.com/Git0Shuai/bevy/internal/logging"
	filestore "github.com/Git0Shuai/bevy/pkg/adapters/file"
	httpadapter "github.com/Git0Shuai/bevy/pkg/adapters/http"
	redisstore "github.com/Git0Shuai/bevy/pkg/adapters/redis"
	"github.com/Git0Shuai/bevy/pkg/adapters/sqlite"
	"github.com/Git0Shuai/bevy/pkg/observability"
	"github.com/Git0Shuai/bevy/pkg/persistence/middleware"
	"github.com/Git0Shuai/bevy/pkg/ports"
	"github.com/Git0Shuai/bevy/pkg/runner"
	"github.com/spf13/cobra"

	_ "modernc.org/sqlite"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Starts the engine in server mode: the state graph ticks on a fixed interval
and a JSON API accepts state requests and serves inspection data.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runServe(cmd); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().Duration("tick", time.Second, "Interval between passes")
	serveCmd.Flags().String("journal", "", "SQLite file for the transition journal (empty disables)")
	serveCmd.Flags().String("redis", "", "Redis address for snapshot storage (empty disables)")
	serveCmd.Flags().String("snapshots", "", "Directory for file-based snapshot storage (ignored when --redis is set)")
}

func runServe(cmd *cobra.Command) error {
	manifestPath, _ := cmd.Flags().GetString("manifest")
	port, _ := cmd.Flags().GetString("port")
	tickEvery, _ := cmd.Flags().GetDuration("tick")
	journalPath, _ := cmd.Flags().GetString("journal")
	redisAddr, _ := cmd.Flags().GetString("redis")
	snapshotsDir, _ := cmd.Flags().GetString("snapshots")
	debug, _ := cmd.Flags().GetBool("debug")

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := logging.New(level)

	opts := []bevy.Option{
		bevy.WithLogger(logger),
		bevy.WithObserver(observability.NewCompositeObserver(
			observability.NewLoggingObserver(logger),
			observability.NewPrometheusObserver(nil),
		)),
	}

	var serverOpts []httpadapter.Option
	if journalPath != "" {
		db, err := sql.Open("sqlite", journalPath)
		if err != nil {
			return fmt.Errorf("open journal db: %w", err)
		}
		defer db.Close()
		journal, err := sqlite.NewJournal(db)
		if err != nil {
			return fmt.Errorf("init journal: %w", err)
		}
		opts = append(opts, bevy.WithJournal(journal))
		serverOpts = append(serverOpts, httpadapter.WithJournal(journal))
	}
	var snapshots ports.SnapshotStore
	if redisAddr != "" {
		store := redisstore.New(redisAddr, "", 0)
		defer store.Close()
		snapshots = store
	} else if snapshotsDir != "" {
		snapshots = filestore.New(snapshotsDir)
	}
	if snapshots != nil {
		// BEVY_SNAPSHOT_KEY (base64, 32 bytes decoded) turns on snapshot
		// encryption at rest. The key stays out of argv on purpose.
		if encoded := os.Getenv("BEVY_SNAPSHOT_KEY"); encoded != "" {
			key, err := base64.StdEncoding.DecodeString(encoded)
			if err != nil {
				return fmt.Errorf("decode BEVY_SNAPSHOT_KEY: %w", err)
			}
			if len(key) != 32 {
				return fmt.Errorf("BEVY_SNAPSHOT_KEY must decode to 32 bytes, got %d", len(key))
			}
			snapshots = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})(snapshots)
			logger.Info("snapshot encryption enabled")
		}
		opts = append(opts, bevy.WithSnapshotStore(snapshots))
	}

	app, err := buildApp(manifestPath, opts...)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: httpadapter.NewHandler(app, serverOpts...),
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)

	go func() {
		logger.Info("starting bevy server", "addr", srv.Addr, "tick", tickEvery)
		serverErrors <- srv.ListenAndServe()
	}()

	// The tick loop is the heartbeat: queued requests only apply when a pass
	// runs, so without it the API would accept requests that never land.
	runnerOpts := []runner.Option{
		runner.WithInterval(tickEvery),
		runner.WithLogger(logger),
	}
	if snapshots != nil {
		// Checkpoint every 60 passes, plus once more on shutdown.
		runnerOpts = append(runnerOpts, runner.WithAutosave("autosave", 60))
	}
	loop := runner.New(app, runnerOpts...)

	tickCtx, stopTicking := context.WithCancel(context.Background())
	defer stopTicking()
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		if err := loop.Run(tickCtx); err != nil {
			logger.Error("tick loop stopped", "error", err)
		}
	}()

	// Channel to listen for interrupt or terminate signals.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Blocking main and waiting for shutdown.
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info("starting shutdown", "signal", sig.String())
		stopTicking()
		// Let the loop finish its shutdown save before the process exits.
		<-loopDone

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		// Asking listener to shut down and shed load.
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown did not complete", "error", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("could not stop server: %w", err)
			}
		}
		logger.Info("bevy server stopped gracefully")
	}
	return nil
}
