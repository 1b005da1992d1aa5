package audio

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeF32LERoundTrips(t *testing.T) {
	values := []float32{0, 1, -1, 0.5, -0.25}
	buf := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}

	got := decodeF32LE(buf)
	require.Equal(t, values, got)
}

func TestDecodeF32LEEmptyInput(t *testing.T) {
	require.Empty(t, decodeF32LE(nil))
}

func TestDecodeF32LEIgnoresTrailingPartialSample(t *testing.T) {
	buf := make([]byte, 4+3)
	binary.LittleEndian.PutUint32(buf, math.Float32bits(1.5))

	got := decodeF32LE(buf)
	require.Len(t, got, 1)
	require.Equal(t, float32(1.5), got[0])
}

func TestIsNativeOggOpus(t *testing.T) {
	require.True(t, isNativeOggOpus("call.ogg"))
	require.True(t, isNativeOggOpus("call.OPUS"))
	require.False(t, isNativeOggOpus("call.wav"))
	require.False(t, isNativeOggOpus("call.mp3"))
}

func TestSquareAll(t *testing.T) {
	require.Equal(t, []float64{1, 4, 9}, squareAll([]float64{1, 2, 3}))
}

func TestNewSourceDefaultsTo16kHz(t *testing.T) {
	s := NewSource()
	require.Equal(t, DefaultSampleRate, s.SampleRate)
}
