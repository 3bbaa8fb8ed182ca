package llm

import (
	"context"
	"time"

	"github.com/mikey/lovescan/internal/core"
)

// timeoutClient bounds every chat analysis call
type timeoutClient struct {
	core.LLMClient
	timeout time.Duration
}

// WithTimeout wraps client so each AnalyzeChat call is cut off after timeout.
// A non-positive timeout returns client unchanged.
func WithTimeout(client core.LLMClient, timeout time.Duration) core.LLMClient {
	if timeout <= 0 || client == nil {
		return client
	}
	return &timeoutClient{LLMClient: client, timeout: timeout}
}

func (c *timeoutClient) AnalyzeChat(ctx context.Context, text string) (*core.RiskFinding, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.LLMClient.AnalyzeChat(ctx, text)
}

// Close releases the wrapped client when it holds resources
func (c *timeoutClient) Close() error {
	if closer, ok := c.LLMClient.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
