package vision

import (
	"context"
	"fmt"

	"github.com/mikey/lovescan/internal/core"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	vision "google.golang.org/api/vision/v1"
)

// Client runs reverse image searches through the Cloud Vision API
type Client struct {
	service    *vision.Service
	maxResults int64
	logger     *zap.Logger
}

// NewClient creates a Vision API client authenticated with an API key
func NewClient(ctx context.Context, apiKey string, maxResults int, logger *zap.Logger) (*Client, error) {
	service, err := vision.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Vision client: %w", err)
	}

	return &Client{
		service:    service,
		maxResults: int64(maxResults),
		logger:     logger,
	}, nil
}

// SearchImage runs web and label detection for a publicly reachable image
func (c *Client) SearchImage(ctx context.Context, imageURI string) ([]core.ImageMatch, error) {
	req := &vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{
			{
				Image: &vision.Image{Source: &vision.ImageSource{ImageUri: imageURI}},
				Features: []*vision.Feature{
					{Type: "WEB_DETECTION", MaxResults: c.maxResults},
					{Type: "LABEL_DETECTION", MaxResults: c.maxResults},
				},
			},
		},
	}

	resp, err := c.service.Images.Annotate(req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to annotate image: %w", err)
	}

	matches, err := MatchesFromResponse(resp)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Reverse image search completed",
		zap.String("image_uri", imageURI),
		zap.Int("matches", len(matches)))

	return matches, nil
}
