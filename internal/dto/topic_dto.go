package dto

type CreateTopicRequest struct {
	Name          string   `json:"name" validate:"required"`
	SystemPrompt  string   `json:"systemPrompt" validate:"required"`
	ResumeContent string   `json:"resumeContent"`
	Technologies  []string `json:"technologies"`
}

type UpdateTopicRequest struct {
	Id            string   `json:"-"`
	Name          string   `json:"name" validate:"required"`
	SystemPrompt  string   `json:"systemPrompt" validate:"required"`
	ResumeContent string   `json:"resumeContent"`
	Technologies  []string `json:"technologies"`
}

type TopicResponse struct {
	Id            string   `json:"id"`
	Name          string   `json:"name"`
	SystemPrompt  string   `json:"systemPrompt"`
	ResumeContent string   `json:"resumeContent,omitempty"`
	Technologies  []string `json:"technologies,omitempty"`
}
