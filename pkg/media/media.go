// Package media stores uploaded files and resolves their public URLs.
// Keys are "<folder>/<name>" and are what the database records.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/iequus/iequus_backend/config"
)

var ErrInvalidKey = errors.New("invalid media key")

// Store is a flat object store addressed by key.
type Store interface {
	Save(ctx context.Context, key string, r io.Reader, contentType string) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// Key joins folder and name, rejecting anything that would escape folder.
func Key(folder, name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, name)
	}
	return path.Join(folder, name), nil
}

// URLOrNil resolves an optional stored key.
func URLOrNil(s Store, key *string) *string {
	if key == nil || *key == "" {
		return nil
	}
	u := s.URL(*key)
	return &u
}

// New selects the backend configured in media.backend.
func New(cfg *config.Config) (Store, error) {
	switch cfg.Media.Backend {
	case "s3":
		return NewS3(cfg.S3)
	default:
		return NewLocal(cfg.Media.Root, cfg.Server.PublicURL+cfg.Media.StaticPrefix)
	}
}
