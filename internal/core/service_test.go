package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockLLM struct {
	mock.Mock
}

func (m *mockLLM) AnalyzeChat(ctx context.Context, text string) (*RiskFinding, error) {
	args := m.Called(ctx, text)
	if f := args.Get(0); f != nil {
		return f.(*RiskFinding), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockLLM) ModelName() string {
	return "test-model"
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	args := m.Called(ctx, key)
	if e := args.Get(0); e != nil {
		return e.(*CacheEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCache) Set(ctx context.Context, entry *CacheEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *mockCache) Cleanup(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, report *ReportPayload) error {
	return m.Called(ctx, report).Error(0)
}

type recordingObserver struct {
	mu        sync.Mutex
	scans     int
	fallbacks []string
	hits      int
	misses    int
}

func (o *recordingObserver) ScanCompleted(AggregateRisk, time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.scans++
}

func (o *recordingObserver) ChatFallback(reason string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.fallbacks = append(o.fallbacks, reason)
}

func (o *recordingObserver) fallbackReasons() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.fallbacks...)
}

func (o *recordingObserver) CacheLookup(hit bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if hit {
		o.hits++
	} else {
		o.misses++
	}
}

const scamChat = "I need money urgently, my dad is in hospital"

func newTestService(llm LLMClient, cache CacheRepository, publisher ReportPublisher, observer ScanObserver, cfg ServiceConfig) *ScanService {
	s := NewScanService(llm, cache, publisher, observer, nil, zap.NewNop(), cfg)
	s.newID = func() string { return "scan-1" }
	return s
}

func TestScan_NoEvidence(t *testing.T) {
	s := newTestService(nil, nil, nil, nil, ServiceConfig{})

	report, err := s.Scan(context.Background(), nil)
	require.NoError(t, err)

	assert.True(t, report.Aggregate.NoEvidence)
	assert.Equal(t, 0, report.RiskScore)
	assert.Empty(t, report.Aggregate.Findings)
	assert.Equal(t, "No evidence provided", report.Verdict)
	assert.Equal(t, "scan-1", report.ID)
}

func TestScan_HeuristicChatOnly(t *testing.T) {
	s := newTestService(nil, nil, nil, nil, ServiceConfig{AnalyzerTimeout: time.Second})

	report, err := s.Scan(context.Background(), []EvidenceItem{ChatText{Text: scamChat}})
	require.NoError(t, err)

	require.Len(t, report.Aggregate.Findings, 1)
	chat := report.Aggregate.Findings[0]
	assert.Equal(t, SourceChat, chat.Source)
	assert.Equal(t, 75, chat.Score)
	assert.Equal(t, LevelHigh, report.RiskLevel)
	assert.Equal(t, []Source{SourceImage, SourceSocial}, report.Aggregate.MissingSources)
}

func TestScan_BlankChatIsAbsent(t *testing.T) {
	s := newTestService(nil, nil, nil, nil, ServiceConfig{})

	report, err := s.Scan(context.Background(), []EvidenceItem{ChatText{Text: "   "}})
	require.NoError(t, err)
	assert.True(t, report.Aggregate.NoEvidence)
}

func TestScan_AllSources(t *testing.T) {
	s := newTestService(nil, nil, nil, nil, ServiceConfig{AnalyzerTimeout: time.Second})

	report, err := s.Scan(context.Background(), []EvidenceItem{
		ChatText{Text: "Olivia: " + scamChat},
		ScreenshotOCRText{Text: "Instagram ✓ 14.5M followers 12 following", Role: RoleProfile},
		ImageMatchSet{Matches: []ImageMatch{{Domain: "romance-scam-alerts.org", Score: 95, SourceURL: "https://romance-scam-alerts.org/x"}}},
		SocialProfileURL{URL: "https://instagram.com/olivia.smith"},
	})
	require.NoError(t, err)

	require.Len(t, report.Aggregate.Findings, 3)
	assert.Equal(t, []Source{SourceChat, SourceImage, SourceSocial}, []Source{
		report.Aggregate.Findings[0].Source,
		report.Aggregate.Findings[1].Source,
		report.Aggregate.Findings[2].Source,
	})
	// (75 + 85 + 85) / 3
	assert.Equal(t, 82, report.RiskScore)
	assert.Equal(t, LevelHigh, report.RiskLevel)
	assert.Empty(t, report.Aggregate.MissingSources)
	assert.Equal(t, []string{"chat_analysis", "reverse_image", "social_media"}, report.ScanTypes)
	assert.Len(t, report.EvidenceRefs, 4)
	assert.Equal(t, "olivia.smith", report.SocialHandles["instagram"])
	if assert.NotNil(t, report.ReportedName) {
		assert.Equal(t, "Olivia", *report.ReportedName)
	}
}

func TestScan_UnreadableScreenshot(t *testing.T) {
	s := newTestService(nil, nil, nil, nil, ServiceConfig{})

	report, err := s.Scan(context.Background(), []EvidenceItem{
		ScreenshotOCRText{Text: "blurry nothing here", Role: RoleProfile},
	})
	require.NoError(t, err)

	require.Len(t, report.Aggregate.Findings, 1)
	f := report.Aggregate.Findings[0]
	assert.Equal(t, LevelMedium, f.Level)
	assert.Equal(t, ConfidenceLow, f.Confidence)
}

func TestScan_EmptyImageSetIsAbsent(t *testing.T) {
	s := newTestService(nil, nil, nil, nil, ServiceConfig{})

	report, err := s.Scan(context.Background(), []EvidenceItem{ImageMatchSet{}})
	require.NoError(t, err)
	assert.True(t, report.Aggregate.NoEvidence)
}

func TestScan_LLMVerdictWins(t *testing.T) {
	llm := new(mockLLM)
	cache := new(mockCache)
	observer := &recordingObserver{}
	llm.On("AnalyzeChat", mock.Anything, scamChat).Return(&RiskFinding{
		Score:      92,
		Level:      LevelMedium,
		Concerns:   []string{"asks for money for a medical emergency"},
		Confidence: ConfidenceHigh,
	}, nil).Once()
	cache.On("Get", mock.Anything, Fingerprint("test-model", scamChat)).Return(nil, errors.New("not found")).Once()
	cache.On("Set", mock.Anything, mock.MatchedBy(func(e *CacheEntry) bool {
		return e.Key == Fingerprint("test-model", scamChat) && e.Finding.Score == 92
	})).Return(nil).Once()

	s := newTestService(llm, cache, nil, observer, ServiceConfig{AnalyzerTimeout: time.Second, CacheEnabled: true, CacheTTL: time.Hour})

	report, err := s.Scan(context.Background(), []EvidenceItem{ChatText{Text: scamChat}})
	require.NoError(t, err)

	require.Len(t, report.Aggregate.Findings, 1)
	chat := report.Aggregate.Findings[0]
	assert.Equal(t, 92, chat.Score)
	assert.Equal(t, LevelHigh, chat.Level)
	assert.Equal(t, "test-model", chat.Method)
	assert.Equal(t, SourceChat, chat.Source)
	assert.Equal(t, 1, observer.misses)
	assert.Empty(t, observer.fallbacks)
	llm.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestScan_CacheHitSkipsLLM(t *testing.T) {
	llm := new(mockLLM)
	cache := new(mockCache)
	observer := &recordingObserver{}
	cached := RiskFinding{Source: SourceChat, Score: 55, Level: LevelMedium, Concerns: []string{}, Confidence: ConfidenceMedium, Method: "test-model"}
	cache.On("Get", mock.Anything, mock.Anything).Return(&CacheEntry{Finding: cached}, nil).Once()

	s := newTestService(llm, cache, nil, observer, ServiceConfig{CacheEnabled: true, CacheTTL: time.Hour})

	report, err := s.Scan(context.Background(), []EvidenceItem{ChatText{Text: scamChat}})
	require.NoError(t, err)

	assert.Equal(t, 55, report.RiskScore)
	assert.Equal(t, 1, observer.hits)
	llm.AssertNotCalled(t, "AnalyzeChat", mock.Anything, mock.Anything)
}

func TestScan_LLMFailureFallsBack(t *testing.T) {
	tests := []struct {
		name    string
		finding *RiskFinding
		err     error
		reason  string
	}{
		{"upstream error", nil, errors.New("rate limited"), "llm_error"},
		{"out of range score", &RiskFinding{Score: 150}, nil, "invalid_verdict"},
		{"nil verdict", nil, nil, "invalid_verdict"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := new(mockLLM)
			observer := &recordingObserver{}
			llm.On("AnalyzeChat", mock.Anything, scamChat).Return(tt.finding, tt.err)

			s := newTestService(llm, nil, nil, observer, ServiceConfig{})

			report, err := s.Scan(context.Background(), []EvidenceItem{ChatText{Text: scamChat}})
			require.NoError(t, err)

			require.Len(t, report.Aggregate.Findings, 1)
			assert.Equal(t, 75, report.Aggregate.Findings[0].Score)
			assert.Equal(t, MethodHeuristic, report.Aggregate.Findings[0].Method)
			assert.Equal(t, []string{tt.reason}, observer.fallbackReasons())
		})
	}
}

func TestScan_PanickingLLMFallsBackToHeuristic(t *testing.T) {
	llm := new(mockLLM)
	observer := &recordingObserver{}
	llm.On("AnalyzeChat", mock.Anything, scamChat).Run(func(mock.Arguments) {
		panic("boom")
	}).Return(nil, nil)

	s := newTestService(llm, nil, nil, observer, ServiceConfig{AnalyzerTimeout: time.Second})

	report, err := s.Scan(context.Background(), []EvidenceItem{
		ChatText{Text: scamChat},
		ImageMatchSet{Matches: []ImageMatch{{Domain: "blog.example", Score: 10}}},
	})
	require.NoError(t, err)

	require.Len(t, report.Aggregate.Findings, 2)
	chat := report.Aggregate.Findings[0]
	assert.Equal(t, SourceChat, chat.Source)
	assert.Equal(t, 75, chat.Score)
	assert.Equal(t, LevelHigh, chat.Level)
	assert.Equal(t, MethodHeuristic, chat.Method)
	assert.Equal(t, SourceImage, report.Aggregate.Findings[1].Source)
	assert.NotContains(t, report.Aggregate.MissingSources, SourceChat)
	assert.Equal(t, []string{"llm_panic"}, observer.fallbackReasons())
}

func TestScan_SlowLLMFallsBackToHeuristicAfterDeadline(t *testing.T) {
	llm := new(mockLLM)
	llm.On("AnalyzeChat", mock.Anything, scamChat).Run(func(args mock.Arguments) {
		<-args.Get(0).(context.Context).Done()
	}).Return(nil, context.DeadlineExceeded)

	s := newTestService(llm, nil, nil, nil, ServiceConfig{AnalyzerTimeout: 50 * time.Millisecond})

	report, err := s.Scan(context.Background(), []EvidenceItem{ChatText{Text: scamChat}})
	require.NoError(t, err)

	assert.False(t, report.Aggregate.NoEvidence)
	require.Len(t, report.Aggregate.Findings, 1)
	assert.Equal(t, SourceChat, report.Aggregate.Findings[0].Source)
	assert.Equal(t, MethodHeuristic, report.Aggregate.Findings[0].Method)
	assert.Equal(t, 75, report.RiskScore)
	assert.Equal(t, LevelHigh, report.RiskLevel)
}

func TestScan_SlowLLMKeepsOtherSources(t *testing.T) {
	llm := new(mockLLM)
	llm.On("AnalyzeChat", mock.Anything, scamChat).Run(func(mock.Arguments) {
		time.Sleep(300 * time.Millisecond)
	}).Return(&RiskFinding{Score: 10}, nil)

	s := newTestService(llm, nil, nil, nil, ServiceConfig{AnalyzerTimeout: 30 * time.Millisecond})

	report, err := s.Scan(context.Background(), []EvidenceItem{
		ChatText{Text: scamChat},
		ImageMatchSet{Matches: []ImageMatch{{Domain: "romance-scam-alerts.org", Score: 95}}},
	})
	require.NoError(t, err)

	require.Len(t, report.Aggregate.Findings, 2)
	assert.Equal(t, 75, report.Aggregate.Findings[0].Score)
	assert.Equal(t, SourceImage, report.Aggregate.Findings[1].Source)
	assert.Equal(t, 85, report.Aggregate.Findings[1].Score)
	assert.Equal(t, 80, report.RiskScore)
}

func TestScan_PublishesReport(t *testing.T) {
	publisher := new(mockPublisher)
	observer := &recordingObserver{}
	publisher.On("Publish", mock.Anything, mock.MatchedBy(func(r *ReportPayload) bool {
		return r.ID == "scan-1" && r.RiskLevel == LevelHigh
	})).Return(errors.New("broker down")).Once()

	s := newTestService(nil, nil, publisher, observer, ServiceConfig{})

	report, err := s.Scan(context.Background(), []EvidenceItem{ChatText{Text: scamChat}})
	require.NoError(t, err)
	assert.Equal(t, LevelHigh, report.RiskLevel)
	assert.Equal(t, 1, observer.scans)
	publisher.AssertExpectations(t)
}

func TestScan_CancelledContext(t *testing.T) {
	s := newTestService(nil, nil, nil, nil, ServiceConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Scan(ctx, []EvidenceItem{ChatText{Text: scamChat}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFingerprint(t *testing.T) {
	assert.Equal(t, Fingerprint("m", "hello"), Fingerprint("m", "  hello \n"))
	assert.NotEqual(t, Fingerprint("m", "hello"), Fingerprint("other", "hello"))
	assert.Len(t, Fingerprint("m", "hello"), 64)
}
