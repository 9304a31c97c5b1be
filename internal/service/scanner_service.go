package service

import (
	"context"
	"time"

	"live-assist-be/internal/pkg/logger"
)

// IScannerService periodically rescans the transcripts directory so
// files dropped in out-of-band still get ingested.
type IScannerService interface {
	Run(ctx context.Context)
}

type scannerService struct {
	transcripts ITranscriptService
	interval    time.Duration
	logger      logger.ILogger
}

func NewScannerService(transcripts ITranscriptService, interval time.Duration, log logger.ILogger) IScannerService {
	return &scannerService{
		transcripts: transcripts,
		interval:    interval,
		logger:      log,
	}
}

func (ss *scannerService) Run(ctx context.Context) {
	if ss.interval <= 0 {
		return
	}

	ticker := time.NewTicker(ss.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			result, err := ss.transcripts.Rescan(ctx)
			if err != nil {
				ss.logger.Error("Scanner", "Rescan failed", map[string]interface{}{
					"error": err.Error(),
				})
				continue
			}
			if result.Queued > 0 {
				ss.logger.Info("Scanner", "Queued files for ingestion", map[string]interface{}{
					"queued": result.Queued,
				})
			}
		}
	}
}
