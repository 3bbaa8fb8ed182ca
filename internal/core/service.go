package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
	"go.uber.org/zap"
)

// ServiceConfig holds the tunables of the scan service
type ServiceConfig struct {
	AnalyzerTimeout time.Duration
	CacheEnabled    bool
	CacheTTL        time.Duration
}

// ScanService runs the analyzers over one evidence set and assembles a report
type ScanService struct {
	llmClient LLMClient
	cache     CacheRepository
	publisher ReportPublisher
	observer  ScanObserver
	catalog   *PatternCatalog
	images    *ImageMatchAnalyzer
	logger    *zap.Logger
	cfg       ServiceConfig
	now       func() time.Time
	newID     func() string
}

// NewScanService creates a new scan service. llmClient, cache, publisher and
// observer are optional and may be nil.
func NewScanService(
	llmClient LLMClient,
	cache CacheRepository,
	publisher ReportPublisher,
	observer ScanObserver,
	images *ImageMatchAnalyzer,
	logger *zap.Logger,
	cfg ServiceConfig,
) *ScanService {
	if images == nil {
		images = DefaultImageMatchAnalyzer()
	}
	return &ScanService{
		llmClient: llmClient,
		cache:     cache,
		publisher: publisher,
		observer:  observer,
		catalog:   DefaultPatternCatalog(),
		images:    images,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// evidenceSet is the request split by source
type evidenceSet struct {
	chat        []string
	screenshots []ScreenshotOCRText
	imageSets   int
	matches     []ImageMatch
	profiles    []SocialProfileURL
	refs        []EvidenceRef
}

func partition(items []EvidenceItem) evidenceSet {
	var ev evidenceSet
	for _, item := range items {
		switch it := item.(type) {
		case ChatText:
			ev.chat = append(ev.chat, it.Text)
			ev.refs = append(ev.refs, EvidenceRef{Source: SourceChat, Kind: "chat_text", Ref: shortDigest(it.Text)})
		case ScreenshotOCRText:
			ev.screenshots = append(ev.screenshots, it)
			role := it.Role
			if role == "" {
				role = RoleProfile
			}
			ev.refs = append(ev.refs, EvidenceRef{Source: SourceSocial, Kind: "screenshot_" + string(role), Ref: shortDigest(it.Text)})
		case ImageMatchSet:
			ev.imageSets++
			ev.matches = append(ev.matches, it.Matches...)
			for _, m := range it.Matches {
				ev.refs = append(ev.refs, EvidenceRef{Source: SourceImage, Kind: "image_match", Ref: m.SourceURL})
			}
		case SocialProfileURL:
			ev.profiles = append(ev.profiles, it)
			ev.refs = append(ev.refs, EvidenceRef{Source: SourceSocial, Kind: "profile_url", Ref: it.URL})
		}
	}
	return ev
}

// entityTexts orders text evidence by source priority: social, chat, image
func (ev evidenceSet) entityTexts() []string {
	var texts []string
	for _, role := range []ScreenshotRole{RoleProfile, RolePost} {
		for _, s := range ev.screenshots {
			if s.Role == role || (role == RoleProfile && s.Role == "") {
				texts = append(texts, s.Text)
			}
		}
	}
	texts = append(texts, ev.chat...)
	for _, m := range ev.matches {
		if m.Title != "" {
			texts = append(texts, m.Title)
		}
	}
	return texts
}

// socialMetrics merges profile screenshots first so their counts win
func (ev evidenceSet) socialMetrics() *ExtractedMetrics {
	if len(ev.screenshots) == 0 {
		return nil
	}
	merged := ExtractedMetrics{Platform: PlatformUnknown}
	for _, role := range []ScreenshotRole{RoleProfile, RolePost} {
		for _, s := range ev.screenshots {
			if s.Role == role || (role == RoleProfile && s.Role == "") {
				merged = MergeMetrics(merged, ExtractMetricsWithLabels(s.Text, s.Labels))
			}
		}
	}
	return &merged
}

type sourceResult struct {
	source  Source
	finding *RiskFinding
}

// Scan analyzes the evidence and returns the assembled report. It only fails
// when ctx is already done before any work started; every other problem
// degrades to an absent or fallback finding.
func (s *ScanService) Scan(ctx context.Context, items []EvidenceItem) (*ReportPayload, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scan cancelled: %w", err)
	}

	start := s.now()
	ev := partition(items)

	findings := s.runAnalyzers(ctx, ev)
	agg := Aggregate(findings)
	entity := ExtractEntity(ev.entityTexts(), ev.profiles...)

	report := AssembleReport(agg, entity, ev.refs)
	report.ID = s.newID()
	report.CreatedAt = s.now().UTC()

	elapsed := s.now().Sub(start)
	if s.observer != nil {
		s.observer.ScanCompleted(agg, elapsed)
	}

	s.logger.Info("Scan completed",
		zap.String("scan_id", report.ID),
		zap.Int("evidence_items", len(items)),
		zap.Int("findings", len(agg.Findings)),
		zap.Int("overall_score", agg.OverallScore),
		zap.String("overall_level", string(agg.OverallLevel)),
		zap.Bool("no_evidence", agg.NoEvidence),
		zap.Duration("elapsed", elapsed))

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, &report); err != nil {
			s.logger.Error("Failed to publish report", zap.String("scan_id", report.ID), zap.Error(err))
		}
	}

	return &report, nil
}

// runAnalyzers fans the sources out and joins them before the deadline.
// A source that panics or misses the deadline falls back to its precomputed
// heuristic finding when it has one and is reported as absent otherwise.
func (s *ScanService) runAnalyzers(ctx context.Context, ev evidenceSet) []RiskFinding {
	if s.cfg.AnalyzerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.AnalyzerTimeout)
		defer cancel()
	}

	results := make(chan sourceResult, len(AllSources))
	var wg conc.WaitGroup
	launched := make(map[Source]bool)
	fallbacks := make(map[Source]*RiskFinding)

	launch := func(source Source, fallback *RiskFinding, analyze func(ctx context.Context) *RiskFinding) {
		launched[source] = true
		if fallback != nil {
			fallbacks[source] = fallback
		}
		wg.Go(func() {
			var finding *RiskFinding
			var pc panics.Catcher
			pc.Try(func() { finding = analyze(ctx) })
			if r := pc.Recovered(); r != nil {
				s.logger.Error("Analyzer panicked",
					zap.String("source", string(source)),
					zap.Bool("heuristic_fallback", fallback != nil),
					zap.String("panic", fmt.Sprint(r.Value)))
				finding = fallback
				if source == SourceChat && fallback != nil {
					s.fallback("llm_panic")
				}
			}
			results <- sourceResult{source: source, finding: finding}
		})
	}

	if len(ev.chat) > 0 {
		text := strings.Join(ev.chat, "\n")
		heuristic := s.catalog.Classify(text)
		launch(SourceChat, heuristic, func(ctx context.Context) *RiskFinding {
			return s.analyzeChat(ctx, text, heuristic)
		})
	}
	if ev.imageSets > 0 {
		launch(SourceImage, nil, func(context.Context) *RiskFinding {
			return s.images.Analyze(ev.matches)
		})
	}
	if len(ev.screenshots) > 0 {
		launch(SourceSocial, nil, func(context.Context) *RiskFinding {
			return ScoreSocialProfile(ev.socialMetrics(), true)
		})
	} else if len(ev.profiles) > 0 {
		launch(SourceSocial, nil, func(context.Context) *RiskFinding {
			return ScoreProfileURLs(ev.profiles)
		})
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	bySource := make(map[Source]*RiskFinding, len(launched))
	reported := make(map[Source]bool, len(launched))
collect:
	for len(reported) < len(launched) {
		select {
		case r, ok := <-results:
			if !ok {
				break collect
			}
			reported[r.source] = true
			if r.finding != nil {
				bySource[r.source] = r.finding
			}
		case <-ctx.Done():
			s.logger.Warn("Analyzer deadline reached",
				zap.Int("pending", len(launched)-len(reported)),
				zap.Error(ctx.Err()))
			for source := range launched {
				if reported[source] {
					continue
				}
				if f, ok := fallbacks[source]; ok {
					bySource[source] = f
					if source == SourceChat {
						s.fallback("deadline")
					}
				}
			}
			break collect
		}
	}

	findings := make([]RiskFinding, 0, len(bySource))
	for _, source := range AllSources {
		if f, ok := bySource[source]; ok {
			findings = append(findings, *f)
		}
	}
	return findings
}

// analyzeChat prefers an LLM verdict and falls back to the heuristic finding
func (s *ScanService) analyzeChat(ctx context.Context, text string, heuristic *RiskFinding) *RiskFinding {
	if heuristic == nil || s.llmClient == nil {
		return heuristic
	}

	key := Fingerprint(s.llmClient.ModelName(), text)
	useCache := s.cfg.CacheEnabled && s.cache != nil

	if useCache {
		entry, err := s.cache.Get(ctx, key)
		if s.observer != nil {
			s.observer.CacheLookup(err == nil)
		}
		if err == nil {
			s.logger.Debug("Cache hit for chat verdict", zap.String("key", key))
			finding := entry.Finding
			return &finding
		}
	}

	finding, err := s.llmClient.AnalyzeChat(ctx, text)
	if err != nil {
		s.logger.Warn("LLM chat analysis failed, using heuristic verdict",
			zap.String("model", s.llmClient.ModelName()),
			zap.Error(err))
		s.fallback("llm_error")
		return heuristic
	}

	verdict, ok := normalizeLLMFinding(finding, s.llmClient.ModelName())
	if !ok {
		s.logger.Warn("LLM returned an unusable verdict, using heuristic verdict",
			zap.String("model", s.llmClient.ModelName()))
		s.fallback("invalid_verdict")
		return heuristic
	}

	if useCache {
		now := s.now()
		entry := &CacheEntry{
			Key:       key,
			Finding:   *verdict,
			LastSeen:  now,
			ExpiresAt: now.Add(s.cfg.CacheTTL),
		}
		if err := s.cache.Set(ctx, entry); err != nil {
			s.logger.Error("Failed to update cache", zap.Error(err))
		}
	}

	return verdict
}

func (s *ScanService) fallback(reason string) {
	if s.observer != nil {
		s.observer.ChatFallback(reason)
	}
}

// normalizeLLMFinding keeps an LLM verdict consistent with the score thresholds
func normalizeLLMFinding(f *RiskFinding, model string) (*RiskFinding, bool) {
	if f == nil || f.Score < 0 || f.Score > 100 {
		return nil, false
	}
	out := *f
	out.Source = SourceChat
	out.Level = LevelForScore(out.Score)
	if !out.Confidence.Valid() {
		out.Confidence = ConfidenceMedium
	}
	if out.Method == "" {
		out.Method = model
	}
	if out.Concerns == nil {
		out.Concerns = []string{}
	}
	return &out, true
}

// Fingerprint keys cached chat verdicts by model, catalog version and text
func Fingerprint(model, text string) string {
	sum := sha256.Sum256([]byte(CatalogVersion + "\x00" + model + "\x00" + strings.TrimSpace(text)))
	return hex.EncodeToString(sum[:])
}

func shortDigest(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "sha256:" + hex.EncodeToString(sum[:6])
}
