package websocket

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"time"

	"live-assist-be/internal/pkg/logger"
	"live-assist-be/internal/service"
	"live-assist-be/pkg/autodetect"
	"live-assist-be/pkg/llm"
)

// Gateway owns the session protocol: it turns inbound envelopes into
// transcript buffering, auto-detection and answer generation, and emits
// the response events back through the hub.
type Gateway struct {
	hub         *Hub
	transcripts service.ITranscriptService
	answers     service.IAnswerService
	detector    *autodetect.Detector

	autoDetectDefault bool
	contextLines      int

	logger logger.ILogger
}

func NewGateway(
	hub *Hub,
	transcripts service.ITranscriptService,
	answers service.IAnswerService,
	detector *autodetect.Detector,
	autoDetectDefault bool,
	contextLines int,
	log logger.ILogger,
) *Gateway {
	return &Gateway{
		hub:               hub,
		transcripts:       transcripts,
		answers:           answers,
		detector:          detector,
		autoDetectDefault: autoDetectDefault,
		contextLines:      contextLines,
		logger:            log,
	}
}

func (g *Gateway) dispatch(c *Client, envelope Envelope) {
	switch envelope.Event {
	case EventStartSession:
		g.sendStatus(c, "ready")

	case EventStopSession:
		g.flush(c)
		g.sendStatus(c, "stopped")

	case EventQuestion:
		var payload QuestionPayload
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			g.logger.Warn("Gateway", "Malformed question payload", map[string]interface{}{
				"session_id": c.SessionId,
			})
			return
		}
		go g.handleQuestion(c, &payload, false)

	case EventRecognizedItem:
		g.handleTranscriptLine(c, envelope.Data, true)

	case EventRecognizingItem:
		g.handleTranscriptLine(c, envelope.Data, false)

	case EventToggleAutoDetect:
		var payload ToggleAutoDetectPayload
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return
		}
		c.Session.SetAutoDetect(payload.Enabled, payload.AssistantId)
		g.logger.Info("Gateway", "Auto-detect toggled", map[string]interface{}{
			"session_id": c.SessionId,
			"enabled":    payload.Enabled,
		})

	default:
		g.logger.Debug("Gateway", "Unknown event, ignoring", map[string]interface{}{
			"session_id": c.SessionId,
			"event":      envelope.Event,
		})
	}
}

// handleTranscriptLine buffers final lines, echoes every line back and
// runs the auto-detect policy on final ones.
func (g *Gateway) handleTranscriptLine(c *Client, raw json.RawMessage, isFinal bool) {
	text, ok := ExtractTranscriptText(raw)
	if !ok {
		return
	}

	if isFinal {
		g.transcripts.Append(c.SessionId, text)
	}

	g.hub.Send(c.SessionId, EventTranscript, map[string]interface{}{
		"sessionId": c.SessionId,
		"text":      text,
		"isFinal":   isFinal,
	})

	if isFinal {
		g.autoDetect(c, text)
	}
}

func (g *Gateway) autoDetect(c *Client, text string) {
	enabled, assistantId, lastTriggered := c.Session.AutoDetect()
	if !enabled {
		return
	}

	now := time.Now()
	kind, triggered := g.detector.Evaluate(text, lastTriggered, now)
	if !triggered {
		return
	}
	c.Session.MarkTriggered(now)

	switch kind {
	case autodetect.KindCodingTask:
		// A coding task is answered from a screenshot of the problem,
		// so the client is asked to capture one and come back with a
		// question event carrying the image.
		g.hub.Send(c.SessionId, EventCaptureScreenshot, map[string]interface{}{
			"reason":           "coding_task",
			"detectedQuestion": text,
		})

	case autodetect.KindQuestion:
		go func() {
			g.hub.Send(c.SessionId, EventAutoAnswerStart, map[string]interface{}{
				"detectedQuestion": text,
			})
			g.handleQuestion(c, &QuestionPayload{
				Content:     text,
				AssistantId: assistantId,
			}, true)
			g.hub.Send(c.SessionId, EventAutoAnswerEnd, map[string]interface{}{})
		}()
	}
}

// handleQuestion runs one generation cycle. The allocated request id
// supersedes any in-flight request on the session; tokens from a
// superseded request are dropped before they reach the wire.
func (g *Gateway) handleQuestion(c *Client, payload *QuestionPayload, inferred bool) {
	question := payload.Text()
	images := decodeAttachments(payload.Attachments)

	requestId, ctx := c.Session.BeginRequest(context.Background())

	g.hub.Send(c.SessionId, EventResponseStart, map[string]interface{}{
		"requestId": requestId,
	})

	if question == "" && len(images) == 0 {
		g.hub.Send(c.SessionId, EventResponseEnd, map[string]interface{}{
			"requestId": requestId,
		})
		return
	}

	tail := g.transcripts.Tail(c.SessionId, g.contextLines)

	_, err := g.answers.Answer(ctx, service.AnswerRequest{
		Question:       question,
		AssistantId:    payload.AssistantId,
		TranscriptTail: tail,
		Inferred:       inferred,
		Images:         images,
	}, func(token string) {
		if c.Session.IsStale(requestId) {
			return
		}
		g.hub.Send(c.SessionId, EventAnswer, map[string]interface{}{
			"requestId": requestId,
			"content":   token,
		})
	})
	if err != nil && ctx.Err() == nil {
		g.logger.Error("Gateway", "Generation failed", map[string]interface{}{
			"session_id": c.SessionId,
			"request_id": requestId,
			"error":      err.Error(),
		})
	}

	if !c.Session.IsStale(requestId) {
		g.hub.Send(c.SessionId, EventResponseEnd, map[string]interface{}{
			"requestId": requestId,
		})
	}
}

// flush persists the buffered transcript and queues it for ingestion.
func (g *Gateway) flush(c *Client) {
	if _, err := g.transcripts.Flush(context.Background(), c.SessionId); err != nil {
		g.logger.Error("Gateway", "Transcript flush failed", map[string]interface{}{
			"session_id": c.SessionId,
			"error":      err.Error(),
		})
	}
}

func (g *Gateway) onDisconnect(c *Client) {
	c.Session.Close()
	g.flush(c)
	g.logger.Info("Gateway", "Session disconnected", map[string]interface{}{
		"session_id": c.SessionId,
	})
}

func (g *Gateway) sendStatus(c *Client, status string) {
	g.hub.Send(c.SessionId, EventSessionUpdate, map[string]interface{}{
		"sessionId": c.SessionId,
		"status":    status,
	})
}

func decodeAttachments(attachments []Attachment) []llm.Image {
	images := make([]llm.Image, 0, len(attachments))
	for _, a := range attachments {
		data, err := base64.StdEncoding.DecodeString(a.Data)
		if err != nil || len(data) == 0 {
			continue
		}
		mimeType := a.MimeType
		if mimeType == "" {
			mimeType = "image/png"
		}
		images = append(images, llm.Image{MimeType: mimeType, Data: data})
	}
	return images
}
