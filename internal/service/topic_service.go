package service

import (
	"live-assist-be/internal/dto"
	"live-assist-be/internal/pkg/serverutils"
	"live-assist-be/pkg/assistant"
)

// ITopicService exposes assistant persona management to the admin
// surface.
type ITopicService interface {
	List() ([]dto.TopicResponse, error)
	Get(id string) (*dto.TopicResponse, error)
	Create(request *dto.CreateTopicRequest) (*dto.TopicResponse, error)
	Update(request *dto.UpdateTopicRequest) (*dto.TopicResponse, error)
	Delete(id string) error
}

type topicService struct {
	store *assistant.Store
}

func NewTopicService(store *assistant.Store) ITopicService {
	return &topicService{store: store}
}

func (ts *topicService) List() ([]dto.TopicResponse, error) {
	assistants, err := ts.store.List()
	if err != nil {
		return nil, err
	}

	out := make([]dto.TopicResponse, 0, len(assistants))
	for _, a := range assistants {
		out = append(out, toTopicResponse(&a))
	}
	return out, nil
}

func (ts *topicService) Get(id string) (*dto.TopicResponse, error) {
	a, err := ts.store.Get(id)
	if err != nil {
		if err == assistant.ErrNotFound {
			return nil, serverutils.NewNotFoundError("topic not found")
		}
		return nil, err
	}
	resp := toTopicResponse(a)
	return &resp, nil
}

func (ts *topicService) Create(request *dto.CreateTopicRequest) (*dto.TopicResponse, error) {
	created, err := ts.store.Create(assistant.Assistant{
		Name:          request.Name,
		SystemPrompt:  request.SystemPrompt,
		ResumeContent: request.ResumeContent,
		Technologies:  request.Technologies,
	})
	if err != nil {
		return nil, err
	}
	resp := toTopicResponse(created)
	return &resp, nil
}

func (ts *topicService) Update(request *dto.UpdateTopicRequest) (*dto.TopicResponse, error) {
	updated, err := ts.store.Update(assistant.Assistant{
		Id:            request.Id,
		Name:          request.Name,
		SystemPrompt:  request.SystemPrompt,
		ResumeContent: request.ResumeContent,
		Technologies:  request.Technologies,
	})
	if err != nil {
		if err == assistant.ErrNotFound {
			return nil, serverutils.NewNotFoundError("topic not found")
		}
		return nil, err
	}
	resp := toTopicResponse(updated)
	return &resp, nil
}

func (ts *topicService) Delete(id string) error {
	if err := ts.store.Delete(id); err != nil {
		if err == assistant.ErrNotFound {
			return serverutils.NewNotFoundError("topic not found")
		}
		return err
	}
	return nil
}

func toTopicResponse(a *assistant.Assistant) dto.TopicResponse {
	return dto.TopicResponse{
		Id:            a.Id,
		Name:          a.Name,
		SystemPrompt:  a.SystemPrompt,
		ResumeContent: a.ResumeContent,
		Technologies:  a.Technologies,
	}
}
