package core

import (
	"context"
	"errors"
	"io"
	"time"
)

var ErrFileNotFound = errors.New("file not found")

type (
	File struct {
		ID          string    `json:"id"`
		Name        string    `json:"name"`
		ContentType string    `json:"content_type"`
		Size        int64     `json:"size"`
		URL         string    `json:"url,omitempty"`
		CreatedAt   time.Time `json:"created_at"`
	}

	// FileStorage stores uploaded documents (certificates, PDFs...).
	FileStorage interface {
		Save(ctx context.Context, f File, r io.Reader) (File, error)
		Open(ctx context.Context, id string) (File, io.ReadCloser, error)
		Delete(ctx context.Context, id string) error
	}
)

// AllowedUploadTypes lists the accepted upload content types.
var AllowedUploadTypes = map[string]string{
	"application/pdf": ".pdf",
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
}
