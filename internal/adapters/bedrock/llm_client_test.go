package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/mikey/lovescan/internal/core"
	"github.com/mikey/lovescan/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockInvoker struct {
	mock.Mock
}

func (m *mockInvoker) InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*bedrockruntime.InvokeModelOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func newClient(invoker modelInvoker, modelID string) *BedrockClient {
	logger := zap.NewNop()
	return NewBedrockClient(invoker, modelID, 400, 0.1, 0.9, 4096, logger, utils.NewTextProcessor(logger))
}

func TestBuildPayload(t *testing.T) {
	tests := []struct {
		modelID string
		keys    []string
	}{
		{"anthropic.claude-3-haiku-20240307-v1:0", []string{"anthropic_version", "messages", "max_tokens", "system"}},
		{"amazon.titan-text-express-v1", []string{"inputText", "textGenerationConfig"}},
		{"meta.llama3-8b-instruct-v1:0", []string{"prompt", "max_tokens"}},
	}

	for _, tt := range tests {
		t.Run(tt.modelID, func(t *testing.T) {
			payload, err := newClient(nil, tt.modelID).buildPayload("hello")
			require.NoError(t, err)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(payload, &body))
			for _, k := range tt.keys {
				assert.Contains(t, body, k)
			}
		})
	}
}

func TestExtractText(t *testing.T) {
	claude := newClient(nil, "anthropic.claude-3-haiku-20240307-v1:0")
	text, err := claude.extractText([]byte(`{"content":[{"type":"text","text":"{\"riskScore\": 71}"}]}`))
	require.NoError(t, err)
	assert.Equal(t, `{"riskScore": 71}`, text)

	_, err = claude.extractText([]byte(`{"content":[]}`))
	assert.Error(t, err)

	titan := newClient(nil, "amazon.titan-text-express-v1")
	text, err = titan.extractText([]byte(`{"results":[{"outputText":"abc"}]}`))
	require.NoError(t, err)
	assert.Equal(t, "abc", text)

	_, err = titan.extractText([]byte(`{"results":[]}`))
	assert.Error(t, err)

	generic := newClient(nil, "meta.llama3-8b-instruct-v1:0")
	text, err = generic.extractText([]byte(`{"generation":"xyz"}`))
	require.NoError(t, err)
	assert.Equal(t, "xyz", text)
}

func TestAnalyzeChat(t *testing.T) {
	invoker := new(mockInvoker)
	invoker.On("InvokeModel", mock.Anything, mock.MatchedBy(func(in *bedrockruntime.InvokeModelInput) bool {
		return *in.ModelId == "anthropic.claude-3-haiku-20240307-v1:0"
	})).Return(&bedrockruntime.InvokeModelOutput{
		Body: []byte(`{"content":[{"type":"text","text":"Verdict: {\"riskScore\": 45, \"primaryConcerns\": [\"fast romance\"], \"confidence\": \"LOW\"}"}]}`),
	}, nil)

	f, err := newClient(invoker, "anthropic.claude-3-haiku-20240307-v1:0").AnalyzeChat(context.Background(), "i love you already")
	require.NoError(t, err)

	assert.Equal(t, 45, f.Score)
	assert.Equal(t, core.LevelMedium, f.Level)
	assert.Equal(t, core.ConfidenceLow, f.Confidence)
	assert.Equal(t, []string{"fast romance"}, f.Concerns)
	invoker.AssertExpectations(t)
}

func TestAnalyzeChat_InvokeError(t *testing.T) {
	invoker := new(mockInvoker)
	invoker.On("InvokeModel", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

	_, err := newClient(invoker, "amazon.titan-text-express-v1").AnalyzeChat(context.Background(), "hi")
	assert.ErrorContains(t, err, "failed to invoke Bedrock model")
}
