package stratadb

import (
	"database/sql"
	"encoding/json"
	"math"
	"sort"
)

func validMetric(metric string) bool {
	switch metric {
	case "cosine", "dot", "l2":
		return true
	}
	return false
}

func (s *Strata) collectionDimension(name string) (uint64, error) {
	var dim uint64
	err := s.q().QueryRow(`SELECT dimension FROM vector_collections WHERE name = ?`, name).Scan(&dim)
	if err == sql.ErrNoRows {
		return 0, storeErrf(CodeCollectionNotFound, "collection %q does not exist", name)
	}
	if err != nil {
		return 0, wrapSQL(err)
	}
	return dim, nil
}

func (s *Strata) vectorCreateCollection(c VectorCreateCollection) (Output, error) {
	if c.Dimension == 0 {
		return nil, storeErrf(CodeInvalidArgument, "dimension must be positive")
	}
	metric := c.Metric
	if metric == "" {
		metric = "cosine"
	}
	if !validMetric(metric) {
		return nil, storeErrf(CodeInvalidArgument, "unknown metric %q (cosine, dot, l2)", metric)
	}
	var n int
	if err := s.q().QueryRow(`SELECT COUNT(*) FROM vector_collections WHERE name = ?`, c.Collection).Scan(&n); err != nil {
		return nil, wrapSQL(err)
	}
	if n > 0 {
		return nil, storeErrf(CodeCollectionExists, "collection %q already exists", c.Collection)
	}
	_, err := s.q().Exec(
		`INSERT INTO vector_collections (name, dimension, metric, index_type, created_at) VALUES (?, ?, ?, 'flat', ?)`,
		c.Collection, c.Dimension, metric, nowMicros(),
	)
	if err != nil {
		return nil, wrapSQL(err)
	}
	return Unit{}, nil
}

func (s *Strata) vectorCollections() (Output, error) {
	rows, err := s.q().Query(`
		SELECT c.name, c.dimension, c.metric, c.index_type,
		       (SELECT COUNT(*) FROM vectors v WHERE v.collection = c.name),
		       (SELECT COALESCE(SUM(LENGTH(v.embedding)), 0) FROM vectors v WHERE v.collection = c.name)
		FROM vector_collections c ORDER BY c.name`)
	if err != nil {
		return nil, wrapSQL(err)
	}
	defer rows.Close()

	collections := []VectorCollectionInfo{}
	for rows.Next() {
		var info VectorCollectionInfo
		if err := rows.Scan(&info.CollectionName, &info.Dimension, &info.Metric,
			&info.IndexType, &info.Count, &info.MemoryBytes); err != nil {
			return nil, wrapSQL(err)
		}
		collections = append(collections, info)
	}
	return VectorCollectionList{Collections: collections}, wrapSQL(rows.Err())
}

func (s *Strata) vectorDropCollection(c VectorDropCollection) (Output, error) {
	if _, err := s.collectionDimension(c.Collection); err != nil {
		return nil, err
	}
	if _, err := s.q().Exec(`DELETE FROM vectors WHERE collection = ?`, c.Collection); err != nil {
		return nil, wrapSQL(err)
	}
	if _, err := s.q().Exec(`DELETE FROM vector_collections WHERE name = ?`, c.Collection); err != nil {
		return nil, wrapSQL(err)
	}
	return Unit{}, nil
}

func (s *Strata) vectorUpsert(c VectorUpsert) (Output, error) {
	dim, err := s.collectionDimension(c.Collection)
	if err != nil {
		return nil, err
	}
	if uint64(len(c.Embedding)) != dim {
		return nil, storeErrf(CodeDimensionMismatch,
			"collection %q expects dimension %d, got %d", c.Collection, dim, len(c.Embedding))
	}

	embJSON, err := json.Marshal(c.Embedding)
	if err != nil {
		return nil, storeErrf(CodeInternal, "encode embedding: %v", err)
	}
	var metaJSON []byte
	if c.Metadata != nil {
		metaJSON, err = EncodeValue(c.Metadata)
		if err != nil {
			return nil, storeErrf(CodeInternal, "encode metadata: %v", err)
		}
	}

	var version uint64
	_ = s.q().QueryRow(
		`SELECT version FROM vectors WHERE collection = ? AND key = ?`, c.Collection, c.Key,
	).Scan(&version)
	version++

	_, err = s.q().Exec(`
		INSERT INTO vectors (collection, key, embedding, metadata, version, ts)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (collection, key) DO UPDATE SET
			embedding = excluded.embedding,
			metadata  = excluded.metadata,
			version   = excluded.version,
			ts        = excluded.ts`,
		c.Collection, c.Key, string(embJSON), nullableString(metaJSON), version, nowMicros(),
	)
	if err != nil {
		return nil, wrapSQL(err)
	}
	s.counters.WalAppends++
	s.counters.BytesWritten += uint64(len(embJSON))
	return Version{Version: version}, nil
}

func nullableString(b []byte) any {
	if b == nil {
		return nil
	}
	return string(b)
}

func (s *Strata) scanVector(row interface{ Scan(...any) error }) (*VectorRecord, error) {
	var rec VectorRecord
	var embJSON string
	var metaJSON sql.NullString
	if err := row.Scan(&rec.Key, &embJSON, &metaJSON, &rec.Version, &rec.Timestamp); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(embJSON), &rec.Embedding); err != nil {
		return nil, storeErrf(CodeInternal, "decode embedding: %v", err)
	}
	if metaJSON.Valid {
		meta, err := DecodeValue([]byte(metaJSON.String))
		if err != nil {
			return nil, storeErrf(CodeInternal, "decode metadata: %v", err)
		}
		rec.Metadata = meta
	}
	return &rec, nil
}

func (s *Strata) vectorGet(c VectorGet) (Output, error) {
	if _, err := s.collectionDimension(c.Collection); err != nil {
		return nil, err
	}
	row := s.q().QueryRow(
		`SELECT key, embedding, metadata, version, ts FROM vectors WHERE collection = ? AND key = ?`,
		c.Collection, c.Key,
	)
	rec, err := s.scanVector(row)
	if err == sql.ErrNoRows {
		return VectorData{}, nil
	}
	if err != nil {
		return nil, wrapSQL(err)
	}
	return VectorData{Record: rec}, nil
}

func (s *Strata) vectorDelete(c VectorDelete) (Output, error) {
	if _, err := s.collectionDimension(c.Collection); err != nil {
		return nil, err
	}
	res, err := s.q().Exec(`DELETE FROM vectors WHERE collection = ? AND key = ?`, c.Collection, c.Key)
	if err != nil {
		return nil, wrapSQL(err)
	}
	n, _ := res.RowsAffected()
	return BoolOut{Value: n > 0}, nil
}

func (s *Strata) vectorSearch(c VectorSearch) (Output, error) {
	dim, err := s.collectionDimension(c.Collection)
	if err != nil {
		return nil, err
	}
	if uint64(len(c.Query)) != dim {
		return nil, storeErrf(CodeDimensionMismatch,
			"collection %q expects dimension %d, got %d", c.Collection, dim, len(c.Query))
	}
	var metric string
	if err := s.q().QueryRow(
		`SELECT metric FROM vector_collections WHERE name = ?`, c.Collection,
	).Scan(&metric); err != nil {
		return nil, wrapSQL(err)
	}

	rows, err := s.q().Query(
		`SELECT key, embedding, metadata, version, ts FROM vectors WHERE collection = ?`, c.Collection,
	)
	if err != nil {
		return nil, wrapSQL(err)
	}
	defer rows.Close()

	// Flat index: score everything, sort, truncate. Collections are small
	// enough that brute force beats index maintenance.
	matches := []VectorMatch{}
	for rows.Next() {
		rec, err := s.scanVector(rows)
		if err != nil {
			return nil, wrapSQL(err)
		}
		matches = append(matches, VectorMatch{
			Key:      rec.Key,
			Score:    similarity(metric, c.Query, rec.Embedding),
			Metadata: rec.Metadata,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, wrapSQL(err)
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	k := c.K
	if k == 0 {
		k = 10
	}
	if uint64(len(matches)) > k {
		matches = matches[:k]
	}
	return VectorMatches{Matches: matches}, nil
}

// similarity scores two vectors under a metric. Higher is always better;
// l2 distance is negated to keep the ordering uniform.
func similarity(metric string, a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	switch metric {
	case "dot":
		return dot
	case "l2":
		// Rounding can push the radicand slightly negative for
		// near-identical vectors; clamp so the score stays a number.
		d := normA + normB - 2*dot
		if d < 0 {
			d = 0
		}
		return -math.Sqrt(d)
	default: // cosine
		if normA == 0 || normB == 0 {
			return 0
		}
		return dot / (math.Sqrt(normA) * math.Sqrt(normB))
	}
}
