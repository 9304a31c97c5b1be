package dto

type IngestDocument struct {
	Text     string                 `json:"text" validate:"required"`
	Metadata map[string]interface{} `json:"metadata"`
}

type IngestRequest struct {
	Documents []IngestDocument `json:"documents" validate:"required,min=1,dive"`
}

type IngestResponse struct {
	Added int `json:"added"`
}

type SearchRequest struct {
	Query string `json:"query" validate:"required"`
	TopK  int    `json:"topK"`
}

type SearchResult struct {
	Id           string                 `json:"id"`
	Text         string                 `json:"text"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	Score        float64                `json:"score"`
	VectorScore  float64                `json:"vectorScore"`
	OverlapScore float64                `json:"overlapScore,omitempty"`
}

type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

type VectorRecordResponse struct {
	Id       string                 `json:"id"`
	Text     string                 `json:"text"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

type ListVectorsResponse struct {
	Total   int64                  `json:"total"`
	Records []VectorRecordResponse `json:"records"`
}
