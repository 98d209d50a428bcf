package stratadb

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedText_DeterministicAndNormalized(t *testing.T) {
	a := embedText("the quick brown fox")
	b := embedText("the quick brown fox")
	assert.Equal(t, a, b)
	require.Len(t, a, embedDimension)

	var norm float64
	for _, v := range a {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, norm, 1e-5, "vector is L2-normalized")

	// Case folding: tokenization lower-cases input.
	assert.Equal(t, a, embedText("THE Quick BROWN fox"))
}

func TestEmbedText_EmptyIsZeroVector(t *testing.T) {
	v := embedText("")
	require.Len(t, v, embedDimension)
	for _, x := range v {
		assert.Zero(t, x)
	}
}

func TestEmbed_Commands(t *testing.T) {
	s := newStore(t)

	one := mustExec(t, s, Embed{Text: "hello"}).(Embedding)
	require.Len(t, one.Vector, embedDimension)

	batch := mustExec(t, s, EmbedBatch{Texts: []string{"hello", "world"}}).(Embeddings)
	require.Len(t, batch.Vectors, 2)
	assert.Equal(t, one.Vector, batch.Vectors[0])
}

func TestEmbedStatus_DefaultsOff(t *testing.T) {
	s := newStore(t)
	out := mustExec(t, s, EmbedStatus{}).(EmbedStatusOut)
	assert.False(t, out.Info.AutoEmbed)
	assert.Equal(t, uint64(defaultEmbedBatchSize), out.Info.BatchSize)
	assert.Zero(t, out.Info.TotalQueued)
}

func TestAutoEmbed_WritesLandInAutoCollection(t *testing.T) {
	s := newStore(t)
	mustExec(t, s, ConfigSetAutoEmbed{Enabled: true})

	mustExec(t, s, KvPut{Branch: "default", Space: "default", Key: "note", Value: String("remember this phrase")})

	got := mustExec(t, s, VectorGet{Collection: "auto_embeddings", Key: "note"}).(VectorData)
	require.NotNil(t, got.Record)
	assert.Equal(t, embedText("remember this phrase"), got.Record.Embedding)

	status := mustExec(t, s, EmbedStatus{}).(EmbedStatusOut)
	assert.Equal(t, uint64(1), status.Info.TotalQueued)
	assert.Equal(t, uint64(1), status.Info.TotalEmbedded)
	assert.Zero(t, status.Info.TotalFailed)
}

func TestAutoEmbed_SkipsEventsAndNonText(t *testing.T) {
	s := newStore(t)
	mustExec(t, s, ConfigSetAutoEmbed{Enabled: true})

	mustExec(t, s, EventAppend{Branch: "default", Space: "default", EventType: "tick", Payload: String("event text")})
	mustExec(t, s, KvPut{Branch: "default", Space: "default", Key: "num", Value: Int(42)})

	status := mustExec(t, s, EmbedStatus{}).(EmbedStatusOut)
	assert.Zero(t, status.Info.TotalQueued)
}

func TestSimilarity_Metrics(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{0, 1}

	assert.InDelta(t, 0.0, similarity("cosine", a, b), 1e-9)
	assert.InDelta(t, 1.0, similarity("cosine", a, a), 1e-9)
	assert.InDelta(t, 0.0, similarity("dot", a, b), 1e-9)
	assert.InDelta(t, -math.Sqrt2, similarity("l2", a, b), 1e-9)
	assert.InDelta(t, 0.0, similarity("l2", a, a), 1e-9)
}

func TestSimilarity_L2NearIdenticalStaysFinite(t *testing.T) {
	a := []float32{0.1, 0.2, 0.3, 0.70000001}
	b := []float32{0.1, 0.2, 0.3, 0.7}

	for _, pair := range [][2][]float32{{a, a}, {a, b}, {b, a}} {
		score := similarity("l2", pair[0], pair[1])
		assert.False(t, math.IsNaN(score))
		assert.LessOrEqual(t, score, 0.0)
		assert.InDelta(t, 0.0, score, 1e-6)
	}
}
