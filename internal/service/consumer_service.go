package service

import (
	"context"
	"encoding/json"

	"live-assist-be/internal/dto"
	"live-assist-be/internal/pkg/logger"
	"live-assist-be/pkg/ingest"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the ingest topic and drives the ingestion
// pipeline. Files already in the registry are skipped by the pipeline,
// so replays and duplicate publishes are harmless.
type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	pipeline  *ingest.Pipeline
	logger    logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	pipeline *ingest.Pipeline,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		pipeline:  pipeline,
		logger:    log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.IngestFileMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("Consumer", "Failed to unmarshal ingest message", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	added, err := cs.pipeline.IngestFile(ctx, payload.Path, payload.SessionId)
	if err != nil {
		cs.logger.Error("Consumer", "Failed to ingest file", map[string]interface{}{
			"path":  payload.Path,
			"error": err.Error(),
		})
		// The file stays out of the registry, so the next scan retries it.
		msg.Ack()
		return
	}

	if added > 0 {
		cs.logger.Info("Consumer", "File ingested", map[string]interface{}{
			"path":   payload.Path,
			"source": payload.Source,
			"chunks": added,
		})
	}
	msg.Ack()
}
