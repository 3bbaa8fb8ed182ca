package httpapi

import (
	"encoding/json"
	"strings"

	"github.com/mikey/lovescan/internal/core"
)

// ScanRequest is the body of POST /api/v1/scans
type ScanRequest struct {
	ChatTexts      []string          `json:"chat_texts"`
	Screenshots    []ScreenshotInput `json:"screenshots"`
	ImageMatches   []core.ImageMatch `json:"image_matches"`
	VisionResponse json.RawMessage   `json:"vision_response"`
	ImageURL       string            `json:"image_url"`
	ProfileURLs    []ProfileURLInput `json:"profile_urls"`
}

// ScreenshotInput is OCR output for one screenshot
type ScreenshotInput struct {
	Text   string   `json:"text"`
	Role   string   `json:"role"`
	Labels []string `json:"labels"`
}

// ProfileURLInput is a submitted social profile link
type ProfileURLInput struct {
	URL      string `json:"url"`
	Platform string `json:"platform"`
}

// UnmarshalJSON accepts either a bare URL string or an object
func (p *ProfileURLInput) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		p.URL = raw
		return nil
	}

	type plain ProfileURLInput
	var obj plain
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*p = ProfileURLInput(obj)
	return nil
}

// Evidence converts the request into evidence items. Blank entries are dropped.
func (r ScanRequest) Evidence() []core.EvidenceItem {
	var items []core.EvidenceItem

	for _, text := range r.ChatTexts {
		if strings.TrimSpace(text) != "" {
			items = append(items, core.ChatText{Text: text})
		}
	}

	for _, s := range r.Screenshots {
		role := core.RoleProfile
		if strings.EqualFold(strings.TrimSpace(s.Role), string(core.RolePost)) {
			role = core.RolePost
		}
		items = append(items, core.ScreenshotOCRText{Text: s.Text, Role: role, Labels: s.Labels})
	}

	if r.ImageMatches != nil {
		items = append(items, core.ImageMatchSet{Matches: r.ImageMatches})
	}

	for _, p := range r.ProfileURLs {
		if strings.TrimSpace(p.URL) != "" {
			items = append(items, core.SocialProfileURL{URL: strings.TrimSpace(p.URL), Platform: p.Platform})
		}
	}

	return items
}
