package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gregwiedeman/cat-validator-hate-guard/internal/config"
	"github.com/gregwiedeman/cat-validator-hate-guard/internal/ids"
	"github.com/gregwiedeman/cat-validator-hate-guard/internal/media/sniffer"
	"github.com/gregwiedeman/cat-validator-hate-guard/internal/pipeline"
	"github.com/gregwiedeman/cat-validator-hate-guard/internal/storage"
)

var (
	ErrSizeExceeded    = errors.New("file size exceeds limit")
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrEmptyFile       = errors.New("empty file")
	ErrInvalidPayload  = errors.New("invalid file payload")
)

const keyTimeLayout = "20060102_150405"

// Validator is the part of the pipeline the upload service depends on.
type Validator interface {
	Validate(ctx context.Context, img pipeline.Image) (pipeline.Decision, error)
}

type UploadInput struct {
	Filename string
	// Size is the size the client declared; it is checked before reading.
	Size int64
	File io.Reader
}

type UploadResult struct {
	ID       string
	Decision pipeline.Decision
	// Key is set only for accepted uploads.
	Key string
}

type UploadService struct {
	validator    Validator
	store        storage.Store
	maxSize      int64
	storeTimeout time.Duration
	now          func() time.Time
	log          zerolog.Logger
}

func NewUploadService(validator Validator, store storage.Store, cfg *config.AppConfig, log zerolog.Logger) *UploadService {
	storeTimeout := cfg.Pipeline.StoreTimeout
	if storeTimeout <= 0 {
		storeTimeout = 30 * time.Second
	}
	return &UploadService{
		validator:    validator,
		store:        store,
		maxSize:      cfg.Upload.MaxFileSize,
		storeTimeout: storeTimeout,
		now:          time.Now,
		log:          log.With().Str("component", "upload_service").Logger(),
	}
}

// WithClock replaces the clock used to timestamp object keys.
func (s *UploadService) WithClock(now func() time.Time) *UploadService {
	s.now = now
	return s
}

func (s *UploadService) MaxSize() int64 {
	return s.maxSize
}

func (s *UploadService) Upload(ctx context.Context, input UploadInput) (UploadResult, error) {
	if input.File == nil {
		return UploadResult{}, ErrInvalidPayload
	}
	if input.Size > s.maxSize {
		return UploadResult{}, fmt.Errorf("%w: %d > %d bytes", ErrSizeExceeded, input.Size, s.maxSize)
	}

	filename := baseName(input.Filename)
	declared, err := sniffer.FromFilename(filename)
	if err != nil {
		return UploadResult{}, fmt.Errorf("%w: %w", ErrUnsupportedType, err)
	}

	data, err := io.ReadAll(io.LimitReader(input.File, s.maxSize+1))
	if err != nil {
		return UploadResult{}, fmt.Errorf("read file: %w", err)
	}
	if int64(len(data)) > s.maxSize {
		return UploadResult{}, fmt.Errorf("%w: more than %d bytes", ErrSizeExceeded, s.maxSize)
	}
	if len(data) == 0 {
		return UploadResult{}, ErrEmptyFile
	}

	if _, err := sniffer.Verify(filename, data); err != nil {
		return UploadResult{}, fmt.Errorf("%w: %w", ErrUnsupportedType, err)
	}

	id := ids.New()
	log := s.log.With().Str("validation_id", id).Str("filename", filename).Logger()
	ctx = log.WithContext(ctx)

	log.Info().Int("bytes", len(data)).Str("mime", declared.MIME).Msg("validating upload")

	decision, err := s.validator.Validate(ctx, pipeline.Image{Data: data, MIME: declared.MIME})
	if err != nil {
		return UploadResult{ID: id}, err
	}
	if !decision.Accepted() {
		log.Info().Str("outcome", decision.Outcome.String()).Str("reason", decision.Reason).Msg("upload rejected")
		return UploadResult{ID: id, Decision: decision}, nil
	}

	key := s.objectKey(filename)
	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	if _, err := s.store.Put(storeCtx, key, data, storage.ContentTypeFor(filename)); err != nil {
		return UploadResult{ID: id}, fmt.Errorf("store image: %w", err)
	}

	log.Info().Str("key", key).Msg("cat stored")
	return UploadResult{ID: id, Decision: decision, Key: key}, nil
}

func (s *UploadService) objectKey(filename string) string {
	return fmt.Sprintf("cats/%s_%s", s.now().UTC().Format(keyTimeLayout), filename)
}

// baseName strips any directory part a client sent along with the filename.
func baseName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}
	return name
}
