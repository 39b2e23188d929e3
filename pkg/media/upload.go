package media

import (
	"context"
	"io"
	"log/slog"
	"path"
	"strings"
)

// Upload is a received file, detached from the transport.
type Upload struct {
	Filename    string
	ContentType string
	Content     io.Reader
}

// Ext returns the lower-cased extension of the original filename.
func (u *Upload) Ext() string {
	return strings.ToLower(path.Ext(u.Filename))
}

// SaveImage normalises u to PNG and stores it as folder/name.
func SaveImage(ctx context.Context, s Store, folder, name string, u *Upload, maxDim int) (string, error) {
	key, err := Key(folder, name)
	if err != nil {
		return "", err
	}
	buf, err := NormalizeImage(u.Content, maxDim)
	if err != nil {
		return "", err
	}
	if err := s.Save(ctx, key, buf, "image/png"); err != nil {
		return "", err
	}
	return key, nil
}

// Cleanup deletes keys and only logs failures. Empty and nil keys are skipped.
func Cleanup(ctx context.Context, s Store, logger *slog.Logger, keys ...*string) {
	for _, k := range keys {
		if k == nil || *k == "" {
			continue
		}
		if err := s.Delete(ctx, *k); err != nil {
			logger.WarnContext(ctx, "failed to delete media", "key", *k, "error", err)
		}
	}
}
