package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/quillnote/quill-sync/internal/adapter"
	"github.com/quillnote/quill-sync/internal/config"
	"github.com/quillnote/quill-sync/internal/logger"
	"github.com/quillnote/quill-sync/internal/queue"
	"github.com/quillnote/quill-sync/internal/store"
	"github.com/quillnote/quill-sync/internal/syncer"
	"github.com/quillnote/quill-sync/internal/workers"
	"github.com/quillnote/quill-sync/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("quillsyncd")
	cfg, err := config.GetConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	kv, err := store.NewSQLiteStore(cfg.Storage.Path, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create local storage")
	}
	defer kv.Close()

	remote, err := adapter.NewHTTPRemoteClient(cfg.Remote.Address, cfg.Remote.RequestTimeout, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create remote adapter")
	}

	manager := syncer.NewSyncManager(
		remote,
		kv,
		queue.New(kv, log),
		store.NewRecordStore(kv),
		syncer.Config{
			MaxRetries:  cfg.Sync.MaxRetries,
			BackoffBase: cfg.Sync.BackoffBase,
			BackoffCap:  cfg.Sync.BackoffCap,
			AutoRules: map[models.ConflictType]models.AutoRule{
				// Tag and metadata divergence merges cleanly without user
				// input; everything else waits for a manual decision.
				models.ConflictMetadataMismatch: models.Auto(models.MergeChanges),
			},
		},
		log,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher := workers.NewConnectivityWatcher(ctx, remote, manager, cfg.Workers.ProbeInterval, log)
	syncJob := workers.NewSyncJob(ctx, manager, cfg.Workers.SyncInterval, log)
	workers.NewWorkers(watcher, syncJob).Run()

	log.Info().
		Str("remote", cfg.Remote.Address).
		Str("storage", cfg.Storage.Path).
		Dur("sync_interval", cfg.Workers.SyncInterval).
		Msg("sync daemon started")

	<-ctx.Done()

	syncJob.Stop()
	watcher.Stop()
	log.Info().Msg("sync daemon stopped")
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
