package service

import (
	"context"
	"time"

	"live-assist-be/internal/pkg/logger"
	"live-assist-be/pkg/assistant"
	"live-assist-be/pkg/llm"
	"live-assist-be/pkg/prompt"
)

// AnswerRequest carries everything needed to generate one streamed
// answer: the question, which assistant persona to speak as, the recent
// conversation tail and any screenshots attached by the client.
type AnswerRequest struct {
	Question       string
	AssistantId    string
	TranscriptTail []string
	Inferred       bool
	Images         []llm.Image
}

// IAnswerService runs the retrieval-augmented generation cycle and
// streams tokens through the supplied callback.
type IAnswerService interface {
	Answer(ctx context.Context, request AnswerRequest, onToken llm.TokenFunc) (string, error)
}

type answerService struct {
	assistants *assistant.Store
	knowledge  IKnowledgeService
	provider   llm.Provider
	timeout    time.Duration
	logger     logger.ILogger
}

func NewAnswerService(
	assistants *assistant.Store,
	knowledge IKnowledgeService,
	provider llm.Provider,
	timeout time.Duration,
	log logger.ILogger,
) IAnswerService {
	return &answerService{
		assistants: assistants,
		knowledge:  knowledge,
		provider:   provider,
		timeout:    timeout,
		logger:     log,
	}
}

func (as *answerService) Answer(ctx context.Context, request AnswerRequest, onToken llm.TokenFunc) (string, error) {
	if as.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, as.timeout)
		defer cancel()
	}

	var persona *assistant.Assistant
	if request.AssistantId != "" {
		found, err := as.assistants.Get(request.AssistantId)
		if err != nil {
			as.logger.Warn("Answer", "Assistant not found, answering without persona", map[string]interface{}{
				"assistant_id": request.AssistantId,
			})
		} else {
			persona = found
		}
	}

	contexts, err := as.knowledge.Search(ctx, request.Question, 0)
	if err != nil {
		// Retrieval failure degrades to an uncontextualized answer.
		as.logger.Error("Answer", "Context retrieval failed", map[string]interface{}{
			"error": err.Error(),
		})
		contexts = nil
	}

	builder := prompt.NewBuilder(persona, contexts, request.TranscriptTail, request.Question, request.Inferred)
	fullPrompt := builder.Build()

	started := time.Now()
	answer, err := as.provider.StreamGenerate(ctx, fullPrompt, request.Images, onToken)

	as.logger.Info("Answer", "Generation finished", map[string]interface{}{
		"inferred":    request.Inferred,
		"contexts":    len(contexts),
		"elapsed_ms":  time.Since(started).Milliseconds(),
		"answer_size": len(answer),
	})
	return answer, err
}
