package transcribe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVerboseJSONResponse(t *testing.T) {
	tests := []struct {
		name     string
		rawJSON  string
		wantText string
		wantErr  bool
	}{
		{
			name: "segments joined in order",
			rawJSON: `{
				"text": "The stale smell of old beer lingers. It takes heat.",
				"segments": [
					{"id": 0, "start": 0.0, "end": 3.32, "text": " The stale smell of old beer lingers.", "no_speech_prob": 0.009},
					{"id": 1, "start": 3.32, "end": 6.19, "text": " It takes heat."}
				],
				"language": "english",
				"duration": 6.19
			}`,
			wantText: "The stale smell of old beer lingers. It takes heat.",
		},
		{
			name:     "empty segments are dropped",
			rawJSON:  `{"text": "Hello", "segments": [{"start": 0, "end": 0.4, "text": "  "}, {"start": 0.4, "end": 1, "text": "Hello"}]}`,
			wantText: "Hello",
		},
		{
			name:     "text without segments",
			rawJSON:  `{"text": "  Only text  ", "segments": null}`,
			wantText: "Only text",
		},
		{name: "empty response", rawJSON: "", wantErr: true},
		{name: "invalid JSON", rawJSON: `{"text": "incomplete`, wantErr: true},
		{name: "nothing spoken", rawJSON: `{"text": "", "segments": []}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segments, err := parseVerboseJSONResponse(tt.rawJSON)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantText, (&Result{Segments: segments}).Text())
		})
	}
}

func TestParseVerboseJSONResponseTextOnlyDuration(t *testing.T) {
	segments, err := parseVerboseJSONResponse(`{"text": "x", "duration": 1.25}`)
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Equal(t, 1250*time.Millisecond, segments[0].EndTime)

	segments, err = parseVerboseJSONResponse(`{"text": "no duration"}`)
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Zero(t, segments[0].EndTime)
}

func TestFactory(t *testing.T) {
	_, err := Factory(t.Context(), Provider("whisper"), "key", Options{})
	assert.Error(t, err, "unsupported provider")
	_, err = Factory(t.Context(), ProviderOpenAI, "", Options{})
	assert.Error(t, err, "missing API key")

	tr, err := Factory(t.Context(), ProviderOpenAI, "sk-test", Options{Prompt: "Speakers: Ana and Bo."})
	require.NoError(t, err)
	openaiTr := tr.(*OpenAITranscriber)
	assert.Equal(t, "whisper-1", openaiTr.model)
	assert.Equal(t, "Speakers: Ana and Bo.", openaiTr.options.Prompt)

	assert.Equal(t, "GEMINI_API_KEY", ProviderGemini.APIKeyEnv())
	assert.Equal(t, "OPENAI_API_KEY", ProviderOpenAI.APIKeyEnv())
}
