package dto

import "time"

type IssueUploadURLRequest struct {
	Filename string `json:"filename" validate:"required"`
}

type IssueUploadURLResponse struct {
	UploadId string `json:"uploadId"`
	URL      string `json:"url"`
}

type UploadResponse struct {
	Id         string    `json:"id"`
	Filename   string    `json:"filename"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
	Ingested   bool      `json:"ingested"`
	Chunks     int       `json:"chunks,omitempty"`
}
