package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/gregwiedeman/cat-validator-hate-guard/internal/classifier"
)

type scripted struct {
	answer classifier.Answer
	err    error
}

// Client answers questions from a script and records every prompt.
type Client struct {
	mu      sync.Mutex
	script  map[string]scripted
	prompts []classifier.Prompt
}

func NewClient() *Client {
	return &Client{script: make(map[string]scripted)}
}

// On scripts the answer for a question.
func (c *Client) On(question string, answer classifier.Answer) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.script[question] = scripted{answer: answer}
	return c
}

// Fail scripts a transport failure for a question.
func (c *Client) Fail(question string, err error) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.script[question] = scripted{err: err}
	return c
}

func (c *Client) Ask(ctx context.Context, prompt classifier.Prompt) (classifier.Answer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.prompts = append(c.prompts, prompt)

	if err := ctx.Err(); err != nil {
		return classifier.Answer{}, err
	}
	s, ok := c.script[prompt.Question]
	if !ok {
		return classifier.Answer{}, fmt.Errorf("no answer scripted for %q", prompt.Question)
	}
	return s.answer, s.err
}

func (c *Client) Prompts() []classifier.Prompt {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]classifier.Prompt, len(c.prompts))
	copy(out, c.prompts)
	return out
}

// Asked counts how often a question was put to the client.
func (c *Client) Asked(question string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, p := range c.prompts {
		if p.Question == question {
			n++
		}
	}
	return n
}
