package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"live-assist-be/internal/dto"
	"live-assist-be/internal/pkg/logger"
	"live-assist-be/internal/pkg/serverutils"
	"live-assist-be/pkg/ingest"

	"github.com/google/uuid"
)

// IUploadService handles reference document uploads: the client asks
// for an upload URL, PUTs the raw file body to it, and the content is
// chunked into the vector index.
type IUploadService interface {
	IssueUploadURL(request *dto.IssueUploadURLRequest) (*dto.IssueUploadURLResponse, error)
	SaveUpload(ctx context.Context, uploadId string, body []byte) (*dto.UploadResponse, error)
	List() ([]dto.UploadResponse, error)
	Delete(uploadId string) error
}

type uploadRecord struct {
	Id         string    `json:"id"`
	Filename   string    `json:"filename"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
	Ingested   bool      `json:"ingested"`
	Chunks     int       `json:"chunks"`
}

type uploadService struct {
	mu       sync.Mutex
	dir      string
	metaPath string
	pipeline *ingest.Pipeline
	logger   logger.ILogger
}

func NewUploadService(dataDir string, pipeline *ingest.Pipeline, log logger.ILogger) IUploadService {
	return &uploadService{
		dir:      filepath.Join(dataDir, "uploads"),
		metaPath: filepath.Join(dataDir, "uploads.json"),
		pipeline: pipeline,
		logger:   log,
	}
}

func (us *uploadService) IssueUploadURL(request *dto.IssueUploadURLRequest) (*dto.IssueUploadURLResponse, error) {
	us.mu.Lock()
	defer us.mu.Unlock()

	records, err := us.loadLocked()
	if err != nil {
		return nil, err
	}

	id := uuid.New().String()
	records[id] = uploadRecord{
		Id:       id,
		Filename: filepath.Base(request.Filename),
	}
	if err := us.persistLocked(records); err != nil {
		return nil, err
	}

	return &dto.IssueUploadURLResponse{
		UploadId: id,
		URL:      "/api/uploads/" + id,
	}, nil
}

// SaveUpload stores the raw body under the previously issued upload id
// and ingests the content synchronously.
func (us *uploadService) SaveUpload(ctx context.Context, uploadId string, body []byte) (*dto.UploadResponse, error) {
	us.mu.Lock()
	records, err := us.loadLocked()
	if err != nil {
		us.mu.Unlock()
		return nil, err
	}
	record, ok := records[uploadId]
	us.mu.Unlock()

	if !ok {
		return nil, serverutils.NewNotFoundError("upload not found, request an upload URL first")
	}
	if len(body) == 0 {
		return nil, serverutils.NewValidationError("upload body is empty")
	}

	if err := os.MkdirAll(us.dir, 0755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	path := filepath.Join(us.dir, uploadId+filepath.Ext(record.Filename))
	if err := os.WriteFile(path, body, 0644); err != nil {
		return nil, fmt.Errorf("write upload: %w", err)
	}

	added, err := us.pipeline.IngestText(ctx, string(body), map[string]interface{}{
		"source":   "upload",
		"filename": record.Filename,
	}, "upload-"+uploadId[:8])
	if err != nil {
		us.logger.Error("Upload", "Failed to ingest upload", map[string]interface{}{
			"upload_id": uploadId,
			"error":     err.Error(),
		})
	}

	record.Size = int64(len(body))
	record.UploadedAt = time.Now()
	record.Ingested = err == nil && added > 0
	record.Chunks = added

	us.mu.Lock()
	records, loadErr := us.loadLocked()
	if loadErr == nil {
		records[uploadId] = record
		loadErr = us.persistLocked(records)
	}
	us.mu.Unlock()
	if loadErr != nil {
		return nil, loadErr
	}

	return toUploadResponse(record), nil
}

func (us *uploadService) List() ([]dto.UploadResponse, error) {
	us.mu.Lock()
	defer us.mu.Unlock()

	records, err := us.loadLocked()
	if err != nil {
		return nil, err
	}

	out := make([]dto.UploadResponse, 0, len(records))
	for _, record := range records {
		out = append(out, *toUploadResponse(record))
	}
	return out, nil
}

func (us *uploadService) Delete(uploadId string) error {
	us.mu.Lock()
	defer us.mu.Unlock()

	records, err := us.loadLocked()
	if err != nil {
		return err
	}
	record, ok := records[uploadId]
	if !ok {
		return serverutils.NewNotFoundError("upload not found")
	}

	path := filepath.Join(us.dir, uploadId+filepath.Ext(record.Filename))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}

	delete(records, uploadId)
	return us.persistLocked(records)
}

func (us *uploadService) loadLocked() (map[string]uploadRecord, error) {
	data, err := os.ReadFile(us.metaPath)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]uploadRecord), nil
		}
		return nil, err
	}

	records := make(map[string]uploadRecord)
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse uploads file: %w", err)
	}
	return records, nil
}

func (us *uploadService) persistLocked(records map[string]uploadRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(us.metaPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(us.metaPath, data, 0644)
}

func toUploadResponse(record uploadRecord) *dto.UploadResponse {
	return &dto.UploadResponse{
		Id:         record.Id,
		Filename:   record.Filename,
		Size:       record.Size,
		UploadedAt: record.UploadedAt,
		Ingested:   record.Ingested,
		Chunks:     record.Chunks,
	}
}
