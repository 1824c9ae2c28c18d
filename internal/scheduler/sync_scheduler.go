package scheduler

import (
	"context"
	"time"

	"github.com/rknair/cloudpuff-backend/internal/app/service"
	"github.com/rknair/cloudpuff-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// SyncScheduler runs the periodic POS catalog pull. An empty cron
// expression disables it entirely; manual sync endpoints stay available.
type SyncScheduler struct {
	cron        *cron.Cron
	syncService service.SyncService
	spec        string
}

func NewSyncScheduler(syncService service.SyncService, spec string) *SyncScheduler {
	return &SyncScheduler{
		cron:        cron.New(),
		syncService: syncService,
		spec:        spec,
	}
}

func (s *SyncScheduler) Start() error {
	if s.spec == "" {
		logger.Info("Catalog sync scheduler disabled (no cron expression configured)", nil)
		return nil
	}

	_, err := s.cron.AddFunc(s.spec, func() {
		logger.Info("Starting scheduled catalog sync", nil)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		result, err := s.syncService.SyncAll(ctx)
		if err != nil {
			logger.Error("Scheduled catalog sync failed", err)
			return
		}

		logger.Info("Scheduled catalog sync finished", map[string]interface{}{
			"created": result.Created,
			"updated": result.Updated,
			"failed":  result.Failed,
			"total":   result.Total,
		})
	})

	if err != nil {
		logger.Error("Failed to register catalog sync cron job", err, map[string]interface{}{
			"spec": s.spec,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Catalog sync scheduler started", map[string]interface{}{
		"spec": s.spec,
	})

	return nil
}

func (s *SyncScheduler) Stop() {
	s.cron.Stop()
	logger.Info("Catalog sync scheduler stopped", nil)
}
