package gspeech

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	speech "google.golang.org/api/speech/v1"
)

func TestNewEngine_RequiresCredentials(t *testing.T) {
	_, err := NewEngine(context.Background(), Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key or access token")
}

func TestLanguageCode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "fr-FR"},
		{"fr", "fr-FR"},
		{"FR", "fr-FR"},
		{"en", "en-US"},
		{"de", "de-DE"},
		{"pt-BR", "pt-BR"},
		{"xx", "xx"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, languageCode(tt.in), "languageCode(%q)", tt.in)
	}
}

func TestParseOffset(t *testing.T) {
	assert.Equal(t, 12.34, parseOffset("12.340s", 0))
	assert.Equal(t, 0.0, parseOffset("0s", 5))
	assert.Equal(t, 7.5, parseOffset("", 7.5))
	assert.Equal(t, 7.5, parseOffset("garbage", 7.5))
}

func TestBuildTranscription(t *testing.T) {
	resp := &speech.LongRunningRecognizeResponse{
		Results: []*speech.SpeechRecognitionResult{
			{
				ResultEndTime: "4.000s",
				Alternatives: []*speech.SpeechRecognitionAlternative{
					{
						Transcript: " Bonjour à tous ",
						Confidence: 0.92,
						Words: []*speech.WordInfo{
							{Word: "Bonjour", StartTime: "0.500s", EndTime: "1.200s"},
							{Word: "à", StartTime: "1.200s", EndTime: "1.400s"},
							{Word: "tous", StartTime: "1.400s", EndTime: "2.100s"},
						},
					},
				},
			},
			{
				ResultEndTime: "8.000s",
				Alternatives: []*speech.SpeechRecognitionAlternative{
					{Transcript: "on commence", Confidence: 0.88},
				},
			},
			{
				// empty alternative is skipped
				Alternatives: []*speech.SpeechRecognitionAlternative{{Transcript: "  "}},
			},
		},
	}

	tr := buildTranscription(resp, "fr")
	assert.Equal(t, "Bonjour à tous on commence", tr.Text)
	assert.Equal(t, "fr", tr.Language)
	assert.Equal(t, "google", tr.Service)
	require.Len(t, tr.Segments, 2)

	assert.Equal(t, 0.5, tr.Segments[0].Start)
	assert.Equal(t, 2.1, tr.Segments[0].End)
	assert.Equal(t, "Bonjour à tous", tr.Segments[0].Text)
	assert.Equal(t, 0.92, tr.Segments[0].Confidence)

	// no word offsets: starts where the previous result ended
	assert.Equal(t, 2.1, tr.Segments[1].Start)
	assert.Equal(t, 8.0, tr.Segments[1].End)
}

func TestBuildTranscription_Empty(t *testing.T) {
	tr := buildTranscription(&speech.LongRunningRecognizeResponse{}, "fr")
	assert.Empty(t, tr.Text)
	assert.NotNil(t, tr.Segments)
	assert.Empty(t, tr.Segments)
}
