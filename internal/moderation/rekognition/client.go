package rekognition

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/gregwiedeman/cat-validator-hate-guard/internal/moderation"
)

// Client detects moderation labels with Amazon Rekognition.
type Client struct {
	api *rekognition.Client
}

func NewClient(cfg aws.Config) *Client {
	return &Client{api: rekognition.NewFromConfig(cfg)}
}

func (c *Client) DetectModerationLabels(ctx context.Context, image []byte) ([]moderation.Label, error) {
	if len(image) == 0 {
		return nil, errors.New("image cannot be empty")
	}

	out, err := c.api.DetectModerationLabels(ctx, &rekognition.DetectModerationLabelsInput{
		Image:         &types.Image{Bytes: image},
		MinConfidence: aws.Float32(moderation.MinConfidence),
	})
	if err != nil {
		return nil, fmt.Errorf("detect moderation labels: %w", err)
	}

	labels := make([]moderation.Label, 0, len(out.ModerationLabels))
	for _, l := range out.ModerationLabels {
		labels = append(labels, moderation.Label{
			Name:       aws.ToString(l.Name),
			ParentName: aws.ToString(l.ParentName),
			Confidence: float64(aws.ToFloat32(l.Confidence)),
		})
	}
	return labels, nil
}
