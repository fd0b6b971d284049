package service

import (
	"context"
	"path"
	"strings"
	"time"

	"ieum/internal/model"
	"ieum/internal/repo"

	"github.com/google/uuid"
)

const presignTTL = time.Hour

// Presigner issues upload and download URLs for object keys.
type Presigner interface {
	PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error)
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type PresignRequest struct {
	Filename    string `json:"filename" validate:"required,max=255"`
	ContentType string `json:"contentType" validate:"required,max=100"`
}

type PresignResponse struct {
	FileID    uuid.UUID `json:"fileId"`
	UploadURL string    `json:"uploadUrl"`
	FileURL   string    `json:"fileUrl"`
	ExpiresIn int       `json:"expiresIn"`
}

type FileResponse struct {
	FileID      uuid.UUID `json:"fileId"`
	URL         string    `json:"url"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"contentType"`
}

type FileService struct {
	Deps
	Files     repo.FileRepository
	Presigner Presigner
	// BaseURL is the public prefix of GET /api/files/{fileId}.
	BaseURL string
}

func NewFileService(d Deps, files repo.FileRepository, presigner Presigner, baseURL string) *FileService {
	return &FileService{Deps: d, Files: files, Presigner: presigner, BaseURL: strings.TrimRight(baseURL, "/")}
}

// Presign records the upload and returns a one-hour PUT URL. Objects are keyed by owner.
func (s *FileService) Presign(ctx context.Context, userID uuid.UUID, req PresignRequest) (*PresignResponse, error) {
	if _, err := s.user(ctx, userID); err != nil {
		return nil, err
	}

	id := uuid.New()
	key := userID.String() + "/" + id.String() + strings.ToLower(path.Ext(req.Filename))
	uploadURL, err := s.Presigner.PresignPut(ctx, key, req.ContentType, presignTTL)
	if err != nil {
		return nil, err
	}

	f := &model.FileObject{ID: id, OwnerID: userID, Filename: req.Filename, ContentType: req.ContentType, StorageKey: key}
	if err := s.Files.CreateFile(ctx, f); err != nil {
		return nil, err
	}

	return &PresignResponse{
		FileID:    id,
		UploadURL: uploadURL,
		FileURL:   s.BaseURL + "/" + id.String(),
		ExpiresIn: int(presignTTL.Seconds()),
	}, nil
}

func (s *FileService) Get(ctx context.Context, fileID uuid.UUID) (*FileResponse, error) {
	f, err := s.Files.GetFile(ctx, fileID)
	if err != nil {
		return nil, notFound(err, "File not found")
	}
	url, err := s.Presigner.PresignGet(ctx, f.StorageKey, presignTTL)
	if err != nil {
		return nil, err
	}
	return &FileResponse{FileID: f.ID, URL: url, Filename: f.Filename, ContentType: f.ContentType}, nil
}
