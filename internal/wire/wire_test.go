package wire

import (
	"bytes"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type msg struct {
	Type string `json:"type"`
	N    int    `json:"n"`
}

func TestEncodeDecodeStream(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	require.NoError(t, enc.WriteMsg(msg{Type: "a", N: 1}))
	require.NoError(t, enc.WriteMsg(msg{Type: "b", N: 2}))

	assert.Equal(t, "{\"type\":\"a\",\"n\":1}\n{\"type\":\"b\",\"n\":2}\n", buf.String())

	dec := NewDecoder(&buf)
	var got msg
	require.NoError(t, dec.ReadMsg(&got))
	assert.Equal(t, msg{Type: "a", N: 1}, got)
	require.NoError(t, dec.ReadMsg(&got))
	assert.Equal(t, msg{Type: "b", N: 2}, got)
	assert.ErrorIs(t, dec.ReadMsg(&got), io.EOF)
}

func TestEncoderFlushesHTTPWriters(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, NewEncoder(rec).WriteMsg(msg{Type: "x"}))
	assert.True(t, rec.Flushed)
}

func TestDecoderRejectsGarbage(t *testing.T) {
	var got msg
	err := NewDecoder(strings.NewReader("not json\n")).ReadMsg(&got)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestDecoderTruncatedLine(t *testing.T) {
	var got msg
	err := NewDecoder(strings.NewReader(`{"type":"a"}`)).ReadMsg(&got)
	require.NoError(t, err, "a final line without newline still decodes")

	err = NewDecoder(strings.NewReader("")).ReadMsg(&got)
	assert.ErrorIs(t, err, io.EOF)
}
