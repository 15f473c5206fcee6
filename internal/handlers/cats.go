package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/gregwiedeman/cat-validator-hate-guard/internal/pipeline"
	"github.com/gregwiedeman/cat-validator-hate-guard/internal/service"
)

const (
	notACatMessage = "This image does not contain a cat. Please upload a cat image."
	// Room for multipart framing and other form fields on top of the file.
	formOverhead = 1 << 20
)

type acceptedResponse struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Key     string `json:"key"`
	Message string `json:"message"`
}

type rejectedResponse struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
}

func (h HandlerSet) UploadCat(c *gin.Context) {
	maxSize := h.uploadService.MaxSize()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize+formOverhead)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.tooLarge(c, maxSize)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "file_required"})
		return
	}
	defer file.Close()

	result, err := h.uploadService.Upload(c.Request.Context(), service.UploadInput{
		Filename: header.Filename,
		Size:     header.Size,
		File:     file,
	})
	if err != nil {
		h.uploadFailed(c, result.ID, maxSize, err)
		return
	}

	switch result.Decision.Outcome {
	case pipeline.Accepted:
		c.JSON(http.StatusCreated, acceptedResponse{
			ID:      result.ID,
			Status:  result.Decision.Outcome.String(),
			Key:     result.Key,
			Message: fmt.Sprintf("Cat validated and saved to S3: %s", result.Key),
		})
	case pipeline.RejectedContent:
		c.JSON(http.StatusUnprocessableEntity, rejectedResponse{
			ID:     result.ID,
			Status: result.Decision.Outcome.String(),
			Reason: result.Decision.Reason,
		})
	default:
		c.JSON(http.StatusUnprocessableEntity, rejectedResponse{
			ID:      result.ID,
			Status:  result.Decision.Outcome.String(),
			Message: notACatMessage,
		})
	}
}

func (h HandlerSet) tooLarge(c *gin.Context, maxSize int64) {
	c.JSON(http.StatusRequestEntityTooLarge, gin.H{
		"error":   "file_too_large",
		"message": fmt.Sprintf("File size exceeds %d byte limit!", maxSize),
	})
}

func (h HandlerSet) uploadFailed(c *gin.Context, id string, maxSize int64, err error) {
	switch {
	case errors.Is(err, service.ErrSizeExceeded):
		h.tooLarge(c, maxSize)
	case errors.Is(err, service.ErrUnsupportedType):
		c.JSON(http.StatusUnsupportedMediaType, gin.H{
			"error":   "unsupported_type",
			"message": "Only JPEG and PNG images are accepted.",
		})
	case errors.Is(err, service.ErrEmptyFile), errors.Is(err, service.ErrInvalidPayload):
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty_file"})
	case errors.Is(err, pipeline.ErrConfiguration):
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Str("validation_id", id).Msg("pipeline misconfigured")
		c.JSON(http.StatusInternalServerError, gin.H{"id": id, "error": "configuration_error"})
	default:
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Str("validation_id", id).Msg("upload failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"id":      id,
			"error":   "processing_error",
			"message": fmt.Sprintf("Error processing image: %v", err),
		})
	}
}
