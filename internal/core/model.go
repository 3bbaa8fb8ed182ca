package core

import (
	"time"
)

// Source identifies which kind of evidence a finding was derived from
type Source string

const (
	SourceChat   Source = "chat"
	SourceImage  Source = "image"
	SourceSocial Source = "social"
)

// AllSources lists the evidence sources in report order
var AllSources = []Source{SourceChat, SourceImage, SourceSocial}

// Level is a coarse risk tier
type Level string

const (
	LevelLow    Level = "LOW"
	LevelMedium Level = "MEDIUM"
	LevelHigh   Level = "HIGH"
)

// Confidence expresses how much a finding can be trusted
type Confidence string

const (
	ConfidenceLow    Confidence = "LOW"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceHigh   Confidence = "HIGH"
)

// Score thresholds shared by every component that maps a score to a level
const (
	HighThreshold   = 70
	MediumThreshold = 40
)

// MethodHeuristic marks findings produced by the deterministic analyzers
const MethodHeuristic = "heuristic"

// LevelForScore maps a 0..100 score to its risk level
func LevelForScore(score int) Level {
	switch {
	case score >= HighThreshold:
		return LevelHigh
	case score >= MediumThreshold:
		return LevelMedium
	default:
		return LevelLow
	}
}

func (l Level) rank() int {
	switch l {
	case LevelHigh:
		return 2
	case LevelMedium:
		return 1
	default:
		return 0
	}
}

// Valid reports whether l is one of the known levels
func (l Level) Valid() bool {
	return l == LevelLow || l == LevelMedium || l == LevelHigh
}

// Valid reports whether c is one of the known confidence values
func (c Confidence) Valid() bool {
	return c == ConfidenceLow || c == ConfidenceMedium || c == ConfidenceHigh
}

// ScreenshotRole tells whether a screenshot shows a profile page or a single post
type ScreenshotRole string

const (
	RoleProfile ScreenshotRole = "profile"
	RolePost    ScreenshotRole = "post"
)

// EvidenceItem is one piece of user-supplied evidence. The set of
// implementations is closed: ChatText, ScreenshotOCRText, ImageMatchSet and
// SocialProfileURL.
type EvidenceItem interface {
	EvidenceSource() Source
	evidence()
}

// ChatText is raw conversation text pasted or OCR'd from a chat screenshot
type ChatText struct {
	Text string `json:"text"`
}

// ScreenshotOCRText is OCR output of a social profile or post screenshot
type ScreenshotOCRText struct {
	Text   string         `json:"text"`
	Role   ScreenshotRole `json:"role"`
	Labels []string       `json:"labels,omitempty"`
}

// ImageMatch is one reverse-image-search hit
type ImageMatch struct {
	Domain    string   `json:"domain"`
	Score     float64  `json:"similarity_score"`
	SourceURL string   `json:"source_url"`
	Labels    []string `json:"content_labels,omitempty"`
	Title     string   `json:"title,omitempty"`
}

// ImageMatchSet holds every reverse-image-search hit for one profile photo
type ImageMatchSet struct {
	Matches []ImageMatch `json:"matches"`
}

// SocialProfileURL is a link to the suspect's social profile
type SocialProfileURL struct {
	URL      string `json:"url"`
	Platform string `json:"platform,omitempty"`
}

func (ChatText) EvidenceSource() Source          { return SourceChat }
func (ScreenshotOCRText) EvidenceSource() Source { return SourceSocial }
func (ImageMatchSet) EvidenceSource() Source     { return SourceImage }
func (SocialProfileURL) EvidenceSource() Source  { return SourceSocial }

func (ChatText) evidence()          {}
func (ScreenshotOCRText) evidence() {}
func (ImageMatchSet) evidence()     {}
func (SocialProfileURL) evidence()  {}

// ExtractedMetrics holds profile numbers read from screenshot text.
// A nil count means the number was not detected.
type ExtractedMetrics struct {
	FollowerCount  *int   `json:"follower_count"`
	FollowingCount *int   `json:"following_count"`
	PostCount      *int   `json:"post_count"`
	LikesCount     *int   `json:"likes_count"`
	CommentsCount  *int   `json:"comments_count"`
	IsVerified     bool   `json:"is_verified"`
	IsBusiness     bool   `json:"is_business"`
	Platform       string `json:"platform"`
}

// HasCounts reports whether any numeric metric was detected
func (m ExtractedMetrics) HasCounts() bool {
	return m.FollowerCount != nil || m.FollowingCount != nil || m.PostCount != nil ||
		m.LikesCount != nil || m.CommentsCount != nil
}

// RiskFinding is the verdict of one analyzer over one evidence source
type RiskFinding struct {
	Source     Source     `json:"source"`
	Score      int        `json:"score"`
	Level      Level      `json:"level"`
	Concerns   []string   `json:"concerns"`
	Confidence Confidence `json:"confidence"`
	Method     string     `json:"method"`
}

// AggregateRisk combines the findings of one scan
type AggregateRisk struct {
	OverallScore   int           `json:"overall_score"`
	OverallLevel   Level         `json:"overall_level"`
	NoEvidence     bool          `json:"no_evidence"`
	Findings       []RiskFinding `json:"findings"`
	MissingSources []Source      `json:"missing_sources"`
}

// SocialHandle is one handle found in the evidence
type SocialHandle struct {
	Platform string `json:"platform"`
	Handle   string `json:"handle"`
}

// ExtractedEntity holds identity fields mined from the evidence text
type ExtractedEntity struct {
	CandidateName *string           `json:"candidate_name"`
	SocialHandles map[string]string `json:"social_handles"`
	Handles       []SocialHandle    `json:"handles"`
}

// EvidenceRef points back at an evidence item included in a report
type EvidenceRef struct {
	Source Source `json:"source"`
	Kind   string `json:"kind"`
	Ref    string `json:"ref,omitempty"`
}

// ReportPayload is the record handed to the reporting collaborator
type ReportPayload struct {
	ID               string            `json:"id"`
	CreatedAt        time.Time         `json:"created_at"`
	ReportedName     *string           `json:"reported_name"`
	SocialHandles    map[string]string `json:"reported_social_media"`
	ScanTypes        []string          `json:"scan_types"`
	RiskScore        int               `json:"risk_score"`
	RiskLevel        Level             `json:"risk_level"`
	ScoreBand        string            `json:"score_band"`
	Verdict          string            `json:"verdict"`
	Recommendation   string            `json:"recommendation"`
	SuggestedReasons []string          `json:"suggested_reasons"`
	Aggregate        AggregateRisk     `json:"aggregate"`
	Entity           ExtractedEntity   `json:"entity"`
	EvidenceRefs     []EvidenceRef     `json:"evidence_refs"`
	CatalogVersion   string            `json:"catalog_version"`
}

// CacheEntry is a cached LLM verdict for one chat text
type CacheEntry struct {
	Key       string
	Finding   RiskFinding
	LastSeen  time.Time
	ExpiresAt time.Time
}
