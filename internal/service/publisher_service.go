package service

import (
	"encoding/json"

	"live-assist-be/internal/dto"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// IPublisherService publishes ingest jobs on the event bus. Both the
// transcript flush and the background scanner go through here so the
// consumer is the single writer for the index + registry pair.
type IPublisherService interface {
	PublishIngestFile(msg dto.IngestFileMessage) error
}

type publisherService struct {
	topicName string
	pubSub    *gochannel.GoChannel
}

func NewPublisherService(topicName string, pubSub *gochannel.GoChannel) IPublisherService {
	return &publisherService{
		topicName: topicName,
		pubSub:    pubSub,
	}
}

func (ps *publisherService) PublishIngestFile(msg dto.IngestFileMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return ps.pubSub.Publish(ps.topicName, message.NewMessage(watermill.NewUUID(), payload))
}
