package memory

import (
	"context"
	"sync"

	"github.com/gregwiedeman/cat-validator-hate-guard/internal/moderation"
)

// Client is a moderation client with a predetermined response.
type Client struct {
	mu     sync.Mutex
	labels []moderation.Label
	err    error
	calls  int
}

func NewClient(labels ...moderation.Label) *Client {
	return &Client{labels: labels}
}

// NewFailingClient returns a client whose every call fails with err.
func NewFailingClient(err error) *Client {
	return &Client{err: err}
}

func (c *Client) DetectModerationLabels(ctx context.Context, image []byte) ([]moderation.Label, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]moderation.Label, len(c.labels))
	copy(out, c.labels)
	return out, nil
}

func (c *Client) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}
