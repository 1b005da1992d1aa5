package opus

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewDecoder(t *testing.T) {
	dec, err := NewDecoder(16000, 1)
	require.NoError(t, err)
	require.NotNil(t, dec)
	require.NoError(t, dec.Destroy())
}

func TestDecodeRejectsEmptyInput(t *testing.T) {
	dec, err := NewDecoder(16000, 1)
	require.NoError(t, err)
	defer dec.Destroy()

	samples := make([]float32, 320)

	_, err = dec.Decode(nil, samples)
	require.Error(t, err)

	_, err = dec.Decode([]byte{0x01, 0x02}, nil)
	require.Error(t, err)
}

func TestDecodeAfterDestroy(t *testing.T) {
	dec, err := NewDecoder(16000, 1)
	require.NoError(t, err)
	require.NoError(t, dec.Destroy())

	_, err = dec.Decode([]byte{0x01, 0x02}, make([]float32, 320))
	require.Error(t, err)

	require.Error(t, dec.Destroy())
}
