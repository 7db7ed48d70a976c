package statistic

import (
	"minelens/internal/health"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCompressor(t *testing.T) *ZstdCompression {
	t.Helper()
	c, err := NewZstdCompressor()
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c.(*ZstdCompression)
}

func TestZstdCompression_SnapshotRoundtrip(t *testing.T) {
	c := newCompressor(t)

	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	snapshot := health.TelemetrySnapshot{}
	for i := 0; i < 500; i++ {
		snapshot.Rpc = append(snapshot.Rpc, health.Sample{Ts: ts, Ok: i%20 != 0, LatencyMs: float64(i % 300)})
	}
	original, err := json.Marshal(snapshot)
	require.NoError(t, err)

	compressed, err := c.Compress(original)
	require.NoError(t, err)
	assert.Less(t, len(compressed), len(original)/2, "repetitive samples compress well")

	decompressed, err := c.Decompress(compressed)
	require.NoError(t, err)
	assert.Equal(t, original, decompressed)
}

func TestZstdCompression_EmptyData(t *testing.T) {
	c := newCompressor(t)

	compressed, err := c.Compress([]byte{})
	require.NoError(t, err)

	decompressed, err := c.Decompress(compressed)
	require.NoError(t, err)
	assert.Empty(t, decompressed)
}

func TestZstdCompression_DecompressInvalidData(t *testing.T) {
	c := newCompressor(t)

	_, err := c.Decompress([]byte("not valid zstd data"))
	assert.Error(t, err)

	_, err = c.Decompress([]byte{0xff, 0xfe, 0xfd, 0xfc, 0x00, 0x01})
	assert.Error(t, err)
}
