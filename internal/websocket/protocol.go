package websocket

import (
	"encoding/json"
	"strings"
)

// Client -> server events.
const (
	EventStartSession     = "start_session"
	EventStopSession      = "stop_session"
	EventQuestion         = "question"
	EventRecognizedItem   = "recognized_item"
	EventRecognizingItem  = "recognizing_item"
	EventToggleAutoDetect = "toggle-auto-detect"
)

// Server -> client events.
const (
	EventSessionUpdate     = "session-update"
	EventTranscript        = "transcript"
	EventResponseStart     = "response_start"
	EventAnswer            = "answer"
	EventResponseEnd       = "response_end"
	EventAutoAnswerStart   = "auto-answer-start"
	EventAutoAnswerEnd     = "auto-answer-end"
	EventCaptureScreenshot = "auto-capture-screenshot"
)

// Envelope is the wire frame for both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type QuestionPayload struct {
	SessionId   string       `json:"sessionId,omitempty"`
	Content     string       `json:"content,omitempty"`
	Question    string       `json:"question,omitempty"`
	AssistantId string       `json:"assistantId,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Text returns whichever of the two accepted question fields is set.
func (p *QuestionPayload) Text() string {
	if p.Content != "" {
		return p.Content
	}
	return p.Question
}

// Attachment is an inline image, base64-encoded.
type Attachment struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type ToggleAutoDetectPayload struct {
	Enabled     bool   `json:"enabled"`
	AssistantId string `json:"assistantId,omitempty"`
}

// ExtractTranscriptText pulls the spoken text out of a recognition
// payload. Speech SDKs disagree on shape, so several are accepted:
// a plain JSON string, an object with one of a few well-known text
// fields, or the first entry of an alternatives/nBest list.
func ExtractTranscriptText(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}

	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return trimmedOk(plain)
	}

	var obj struct {
		Text         string `json:"text"`
		DisplayText  string `json:"displayText"`
		Transcript   string `json:"transcript"`
		Content      string `json:"content"`
		Alternatives []struct {
			Transcript string `json:"transcript"`
		} `json:"alternatives"`
		NBest []struct {
			Display string `json:"display"`
			Lexical string `json:"lexical"`
		} `json:"nBest"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", false
	}

	for _, candidate := range []string{obj.Text, obj.DisplayText, obj.Transcript, obj.Content} {
		if text, ok := trimmedOk(candidate); ok {
			return text, ok
		}
	}
	if len(obj.Alternatives) > 0 {
		if text, ok := trimmedOk(obj.Alternatives[0].Transcript); ok {
			return text, ok
		}
	}
	if len(obj.NBest) > 0 {
		if text, ok := trimmedOk(obj.NBest[0].Display); ok {
			return text, ok
		}
		if text, ok := trimmedOk(obj.NBest[0].Lexical); ok {
			return text, ok
		}
	}
	return "", false
}

func trimmedOk(s string) (string, bool) {
	trimmed := strings.TrimSpace(s)
	return trimmed, trimmed != ""
}

// MarshalEvent frames an outbound event. Marshal failures can only come
// from programmer-constructed payloads, so they surface as an error
// envelope rather than a dropped frame.
func MarshalEvent(event string, data interface{}) []byte {
	payload, err := json.Marshal(data)
	if err != nil {
		payload = []byte(`{"error":"payload marshal failed"}`)
	}
	frame, _ := json.Marshal(Envelope{Event: event, Data: payload})
	return frame
}
