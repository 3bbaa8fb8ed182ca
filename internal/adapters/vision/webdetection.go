package vision

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/mikey/lovescan/internal/core"
	vision "google.golang.org/api/vision/v1"
)

// MaxMatches caps how many matches one web detection yields
const MaxMatches = 10

// Scores assigned by result kind, decreasing with result rank
const (
	pageMatchScore    = 95.0
	pageMatchStep     = 2.0
	similarImageScore = 85.0
	similarImageStep  = 1.5
	fullMatchScore    = 98.0
	fullMatchStep     = 0.5
)

// ParseResponse decodes a raw images:annotate response body
func ParseResponse(data []byte) (*vision.BatchAnnotateImagesResponse, error) {
	var resp vision.BatchAnnotateImagesResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode vision response: %w", err)
	}
	return &resp, nil
}

// MatchesFromResponse converts the web detection of the first annotation into
// image matches. Pages come first, then visually similar images, then full
// matches, truncated to MaxMatches.
func MatchesFromResponse(resp *vision.BatchAnnotateImagesResponse) ([]core.ImageMatch, error) {
	if resp == nil || len(resp.Responses) == 0 || resp.Responses[0] == nil {
		return []core.ImageMatch{}, nil
	}

	annotation := resp.Responses[0]
	if annotation.Error != nil && annotation.Error.Message != "" {
		return nil, fmt.Errorf("vision annotation failed (code %d): %s", annotation.Error.Code, annotation.Error.Message)
	}

	web := annotation.WebDetection
	if web == nil {
		return []core.ImageMatch{}, nil
	}

	var labels []string
	for _, l := range annotation.LabelAnnotations {
		if l != nil && l.Description != "" {
			labels = append(labels, l.Description)
		}
	}

	matches := []core.ImageMatch{}
	for i, page := range web.PagesWithMatchingImages {
		if page == nil || page.Url == "" || page.PageTitle == "" {
			continue
		}
		matches = append(matches, core.ImageMatch{
			Domain:    Domain(page.Url),
			Score:     pageMatchScore - float64(i)*pageMatchStep,
			SourceURL: page.Url,
			Labels:    labels,
			Title:     page.PageTitle,
		})
	}
	matches = appendImages(matches, web.VisuallySimilarImages, similarImageScore, similarImageStep, labels)
	matches = appendImages(matches, web.FullMatchingImages, fullMatchScore, fullMatchStep, labels)

	if len(matches) > MaxMatches {
		matches = matches[:MaxMatches]
	}
	return matches, nil
}

func appendImages(matches []core.ImageMatch, images []*vision.WebImage, base, step float64, labels []string) []core.ImageMatch {
	for i, img := range images {
		if img == nil || img.Url == "" {
			continue
		}
		matches = append(matches, core.ImageMatch{
			Domain:    Domain(img.Url),
			Score:     base - float64(i)*step,
			SourceURL: img.Url,
			Labels:    labels,
		})
	}
	return matches
}

// Domain returns the lower-cased host of rawURL without a leading www.
func Domain(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Hostname() == "" {
		return "unknown-domain.com"
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
