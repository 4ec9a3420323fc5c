package clip

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{
		"":        KindAuto,
		"auto":    KindAuto,
		" Native": KindNative,
		"exec":    KindExec,
		"MEMORY":  KindMemory,
	} {
		got, err := ParseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseKind("wayland")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wayland")
}

func TestNewMemory(t *testing.T) {
	b, err := New(KindMemory)
	require.NoError(t, err)
	defer b.Close()

	text, err := b.ReadText()
	require.NoError(t, err)
	assert.Empty(t, text)

	require.NoError(t, b.WriteText("hello"))
	text, err = b.ReadText()
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
}

func TestNewUnknownKind(t *testing.T) {
	_, err := New(Kind("bogus"))
	require.Error(t, err)
}
