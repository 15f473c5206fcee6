package storage

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrEmptyKey  = errors.New("key cannot be empty")
	ErrEmptyData = errors.New("data cannot be empty")
)

// Store writes objects under caller-chosen keys. Existing objects are
// overwritten.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// ContentTypeFor infers an object's content type from its filename.
func ContentTypeFor(filename string) string {
	if strings.HasSuffix(strings.ToLower(filename), ".png") {
		return "image/png"
	}
	return "image/jpeg"
}

// Validate checks the arguments every Store implementation rejects.
func Validate(key string, data []byte) error {
	if key == "" {
		return ErrEmptyKey
	}
	if len(data) == 0 {
		return ErrEmptyData
	}
	return nil
}
