package app

import (
	"context"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"permission-engine/internal/config"
	"permission-engine/internal/engine"
	"permission-engine/internal/messaging/notifier"
	"permission-engine/internal/repository"
)

func Run(cfg *config.Config, logger *zap.SugaredLogger) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	wg := &sync.WaitGroup{}

	// The repository and notifier outlive the main ctx so in-flight
	// write-throughs finish before their connections close.
	delayedCtx, delayedCancel := context.WithCancel(context.Background())
	delayedWg := &sync.WaitGroup{}

	repo, err := repository.NewMongoRepository(delayedCtx, logger, delayedWg, cfg.MongoDB)
	if err != nil {
		logger.Fatalw("failed to create repository", "error", err)
	}

	notif := notifier.NewKafkaNotifier(delayedCtx, delayedWg, logger, cfg.Kafka)

	eng := engine.New(logger, repo, notif, engine.Options{
		CacheTTL:           cfg.CacheTTL,
		DefaultGroupWeight: cfg.DefaultGroupWeight,
	})
	if err := eng.Initialize(ctx); err != nil {
		logger.Fatalw("failed to initialize engine", "error", err)
	}

	runCleanupTask(ctx, logger, wg, eng, cfg.CleanupInterval)

	wg.Wait()
	logger.Info("shutting down")
	eng.Shutdown()

	logger.Info("shutting down delayed services")
	delayedCancel()
	delayedWg.Wait()
}

// runCleanupTask periodically removes expired temporary grants from
// storage. Expired entries are also filtered lazily at read time, so a
// skipped or delayed pass costs nothing but storage space.
func runCleanupTask(ctx context.Context, logger *zap.SugaredLogger, wg *sync.WaitGroup,
	eng *engine.Engine, interval time.Duration) {

	wg.Add(1)
	go func() {
		defer wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := eng.UserService().CleanupAllExpired(ctx); removed > 0 {
					logger.Infow("removed expired temporary grants", "count", removed)
				}
			}
		}
	}()
}
