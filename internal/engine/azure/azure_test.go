package azure

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecognizerConfigIsValid(t *testing.T) {
	require.Error(t, RecognizerConfig{}.IsValid())
	require.Error(t, RecognizerConfig{SpeechKey: "k"}.IsValid())
	require.Error(t, RecognizerConfig{SpeechKey: "k", SpeechRegion: "r"}.IsValid())
	require.NoError(t, RecognizerConfig{SpeechKey: "k", SpeechRegion: "r", DataDir: "/tmp"}.IsValid())
}

func TestPhraseHintsEmptyPrompt(t *testing.T) {
	require.Nil(t, phraseHints(""))
}

func TestPhraseHintsSplitsWords(t *testing.T) {
	hints := phraseHints("hello there friend")
	require.Equal(t, []string{"hello", "there", "friend"}, hints)
}

func TestPhraseHintsTruncatesToMostRecent(t *testing.T) {
	words := make([]string, 0, maxPhraseHints+5)
	for i := 0; i < maxPhraseHints+5; i++ {
		words = append(words, "w")
	}
	prompt := strings.Join(words, " ")
	hints := phraseHints(prompt)
	require.Len(t, hints, maxPhraseHints)
}
