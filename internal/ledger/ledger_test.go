package ledger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.db")
	db, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRecordAndQueryRuns(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	started := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	id, err := db.RecordRun(ctx, Run{
		AudioRef:    "call.wav",
		Engine:      "whisper.cpp",
		Detector:    "silero",
		StartedAt:   started,
		FinishedAt:  started.Add(time.Minute),
		NumSegments: 3,
		Language:    "en",
	})
	require.NoError(t, err)
	require.NotZero(t, id)

	runs, err := db.RunsForAudio(ctx, "call.wav")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, "en", runs[0].Language)
	require.Equal(t, 3, runs[0].NumSegments)
	require.Equal(t, "", runs[0].Err)
}

func TestRunsForAudioOrdersMostRecentFirst(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := db.RecordRun(ctx, Run{AudioRef: "a.wav", StartedAt: base, FinishedAt: base, Language: "en"})
	require.NoError(t, err)
	_, err = db.RecordRun(ctx, Run{AudioRef: "a.wav", StartedAt: base.Add(time.Hour), FinishedAt: base, Language: "fr"})
	require.NoError(t, err)

	runs, err := db.RunsForAudio(ctx, "a.wav")
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.Equal(t, "fr", runs[0].Language)
	require.Equal(t, "en", runs[1].Language)
}

func TestRunsForAudioFiltersByRef(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	now := time.Now().UTC()
	_, err := db.RecordRun(ctx, Run{AudioRef: "a.wav", StartedAt: now, FinishedAt: now, Language: "en"})
	require.NoError(t, err)
	_, err = db.RecordRun(ctx, Run{AudioRef: "b.wav", StartedAt: now, FinishedAt: now, Language: "fr"})
	require.NoError(t, err)

	runs, err := db.RunsForAudio(ctx, "b.wav")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, "b.wav", runs[0].AudioRef)
}
