package stratadb

import (
	"hash/fnv"
	"math"
	"strings"
)

// embedDimension is the fixed output width of the built-in embedder.
const embedDimension = 384

// defaultEmbedBatchSize bounds how many queued texts one flush embeds.
const defaultEmbedBatchSize = 32

// embedPipeline tracks the auto-embedding state and counters. Embedding
// runs inline on the write path; the counters exist so status reporting
// matches what callers of a queued pipeline expect.
type embedPipeline struct {
	auto          bool
	batchSize     uint64
	totalQueued   uint64
	totalEmbedded uint64
	totalFailed   uint64
}

// embedText is the built-in feature-hashing embedder: each token folds
// into a bucket of a fixed-width vector, which is then L2-normalized.
// Deterministic, dependency-free, and good enough for relatedness.
func embedText(text string) []float32 {
	vec := make([]float32, embedDimension)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(tok))
		sum := h.Sum32()
		sign := float32(1)
		if sum&1 == 1 {
			sign = -1
		}
		vec[sum%embedDimension] += sign
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		inv := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= inv
		}
	}
	return vec
}

// autoEmbedEntry hooks the write path: when auto-embed is on, every
// stored text lands in the well-known "auto_embeddings" collection keyed
// by entry key. Embedding failures never fail the write.
func (s *Strata) autoEmbedEntry(kind, key, text string) {
	if !s.embed.auto || text == "" || kind == kindEvent {
		return
	}
	s.embed.totalQueued++
	if err := s.ensureAutoCollection(); err != nil {
		s.embed.totalFailed++
		return
	}
	_, err := s.vectorUpsert(VectorUpsert{
		Collection: "auto_embeddings",
		Key:        key,
		Embedding:  embedText(text),
	})
	if err != nil {
		s.embed.totalFailed++
		return
	}
	s.embed.totalEmbedded++
}

func (s *Strata) ensureAutoCollection() error {
	_, err := s.vectorCreateCollection(VectorCreateCollection{
		Collection: "auto_embeddings",
		Dimension:  embedDimension,
		Metric:     "cosine",
	})
	if se, ok := err.(*StoreError); ok && se.Code == CodeCollectionExists {
		return nil
	}
	return err
}

func (s *Strata) embedOne(c Embed) (Output, error) {
	return Embedding{Vector: embedText(c.Text)}, nil
}

func (s *Strata) embedBatch(c EmbedBatch) (Output, error) {
	vectors := make([][]float32, 0, len(c.Texts))
	for _, t := range c.Texts {
		vectors = append(vectors, embedText(t))
	}
	return Embeddings{Vectors: vectors}, nil
}

func (s *Strata) embedStatus() (Output, error) {
	return EmbedStatusOut{Info: EmbedStatusData{
		AutoEmbed:     s.embed.auto,
		BatchSize:     s.embed.batchSize,
		TotalQueued:   s.embed.totalQueued,
		TotalEmbedded: s.embed.totalEmbedded,
		TotalFailed:   s.embed.totalFailed,
	}}, nil
}
