package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mikey/lovescan/internal/config"
	"github.com/mikey/lovescan/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockScanner struct {
	mock.Mock
}

func (m *mockScanner) Scan(ctx context.Context, items []core.EvidenceItem) (*core.ReportPayload, error) {
	args := m.Called(ctx, items)
	if r := args.Get(0); r != nil {
		return r.(*core.ReportPayload), args.Error(1)
	}
	return nil, args.Error(1)
}

type stubSearcher struct {
	matches []core.ImageMatch
	err     error
	calls   int
}

func (s *stubSearcher) SearchImage(ctx context.Context, imageURI string) ([]core.ImageMatch, error) {
	s.calls++
	return s.matches, s.err
}

func testConfig() config.HTTPConfig {
	return config.HTTPConfig{
		ListenAddress:  "127.0.0.1:0",
		RequestTimeout: 5 * time.Second,
		MaxBodyBytes:   4096,
		AllowedOrigins: []string{"*"},
	}
}

func newRealServer() *Server {
	svc := core.NewScanService(nil, nil, nil, nil, nil, zap.NewNop(), core.ServiceConfig{AnalyzerTimeout: time.Second})
	return NewServer(svc, nil, nil, testConfig(), zap.NewNop())
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scans", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	newRealServer().Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCreateScan_ChatEvidence(t *testing.T) {
	rec := post(t, newRealServer().Routes(), `{"chat_texts": ["I need money urgently, my dad is in hospital"]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var report core.ReportPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 75, report.RiskScore)
	assert.Equal(t, core.LevelHigh, report.RiskLevel)
	assert.Equal(t, []string{"chat_analysis"}, report.ScanTypes)
	assert.NotEmpty(t, report.ID)
}

func TestCreateScan_NoEvidence(t *testing.T) {
	rec := post(t, newRealServer().Routes(), `{}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var report core.ReportPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.True(t, report.Aggregate.NoEvidence)
	assert.Equal(t, "No evidence provided", report.Verdict)
}

func TestCreateScan_BadRequests(t *testing.T) {
	h := newRealServer().Routes()

	rec := post(t, h, `{"chat_texts": [`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(t, h, `{"chat_texts": ["`+strings.Repeat("a", 5000)+`"]}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestCreateScan_EvidenceMapping(t *testing.T) {
	scanner := new(mockScanner)
	scanner.On("Scan", mock.Anything, mock.MatchedBy(func(items []core.EvidenceItem) bool {
		if len(items) != 4 {
			return false
		}
		shot, ok := items[1].(core.ScreenshotOCRText)
		if !ok || shot.Role != core.RolePost {
			return false
		}
		set, ok := items[2].(core.ImageMatchSet)
		if !ok || len(set.Matches) != 0 {
			return false
		}
		profile, ok := items[3].(core.SocialProfileURL)
		return ok && profile.URL == "https://instagram.com/dan.carter"
	})).Return(&core.ReportPayload{ID: "scan-1"}, nil)

	s := NewServer(scanner, nil, nil, testConfig(), zap.NewNop())
	rec := post(t, s.Routes(), `{
		"chat_texts": ["hello", "   "],
		"screenshots": [{"text": "1.2K likes", "role": "POST"}],
		"image_matches": [],
		"profile_urls": ["https://instagram.com/dan.carter", ""]
	}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	scanner.AssertExpectations(t)
}

func TestCreateScan_VisionResponse(t *testing.T) {
	scanner := new(mockScanner)
	scanner.On("Scan", mock.Anything, mock.MatchedBy(func(items []core.EvidenceItem) bool {
		if len(items) != 1 {
			return false
		}
		set, ok := items[0].(core.ImageMatchSet)
		return ok && len(set.Matches) == 1 && set.Matches[0].Domain == "scamwatchers.org"
	})).Return(&core.ReportPayload{ID: "scan-1"}, nil)

	s := NewServer(scanner, nil, nil, testConfig(), zap.NewNop())
	rec := post(t, s.Routes(), `{"vision_response": {"responses": [{"webDetection": {"fullMatchingImages": [{"url": "https://www.scamwatchers.org/a.jpg"}]}}]}}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	scanner.AssertExpectations(t)
}

func TestCreateScan_ImageURL(t *testing.T) {
	searcher := &stubSearcher{matches: []core.ImageMatch{{Domain: "shutterstock.com", Score: 97}}}
	scanner := new(mockScanner)
	scanner.On("Scan", mock.Anything, mock.MatchedBy(func(items []core.EvidenceItem) bool {
		return len(items) == 1
	})).Return(&core.ReportPayload{ID: "scan-1"}, nil).Once()

	s := NewServer(scanner, searcher, nil, testConfig(), zap.NewNop())
	rec := post(t, s.Routes(), `{"image_url": "https://example.com/me.jpg"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, searcher.calls)

	// a failed search leaves the image source absent instead of failing the scan
	searcher.err = errors.New("quota exceeded")
	scanner.On("Scan", mock.Anything, mock.MatchedBy(func(items []core.EvidenceItem) bool {
		return len(items) == 0
	})).Return(&core.ReportPayload{ID: "scan-2"}, nil).Once()

	rec = post(t, s.Routes(), `{"image_url": "https://example.com/me.jpg"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	scanner.AssertExpectations(t)
}

func TestCreateScan_ScanError(t *testing.T) {
	scanner := new(mockScanner)
	scanner.On("Scan", mock.Anything, mock.Anything).Return(nil, context.Canceled)

	s := NewServer(scanner, nil, nil, testConfig(), zap.NewNop())
	rec := post(t, s.Routes(), `{"chat_texts": ["hi"]}`)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsRoute(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("lovescan_scans_total 1\n"))
	})
	s := NewServer(new(mockScanner), nil, metrics, testConfig(), zap.NewNop())

	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "lovescan_scans_total")
}

func TestStartStop(t *testing.T) {
	s := newRealServer()
	require.NoError(t, s.Start())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, s.Stop(ctx))
}
