package stratadb

import (
	"database/sql"
	"time"
)

// Primitive kinds stored in the entries table. Each kind is an
// independent key namespace within a (branch, space).
const (
	kindKV    = "kv"
	kindState = "state"
	kindJSON  = "json"
	kindEvent = "event"
)

// appendEntry writes one versioned row and maintains the search index
// and durability counters. It is the single write path for every
// entry-backed primitive.
func (s *Strata) appendEntry(kind, branch, space, key string, v Value, deleted bool) (version, ts uint64, err error) {
	exists, err := s.branchExists(branch)
	if err != nil {
		return 0, 0, err
	}
	if !exists {
		return 0, 0, storeErrf(CodeBranchNotFound, "branch %q does not exist", branch)
	}

	var maxVersion sql.NullInt64
	err = s.q().QueryRow(
		`SELECT MAX(version) FROM entries WHERE branch = ? AND space = ? AND kind = ? AND key = ?`,
		branch, space, kind, key,
	).Scan(&maxVersion)
	if err != nil {
		return 0, 0, wrapSQL(err)
	}
	version = uint64(maxVersion.Int64) + 1
	ts = nowMicros()

	var valueJSON any
	var text string
	if !deleted {
		data, encErr := EncodeValue(v)
		if encErr != nil {
			return 0, 0, storeErrf(CodeInternal, "encode value: %v", encErr)
		}
		valueJSON = string(data)
		text = ValueText(v)
	}

	start := time.Now()
	if _, err = s.q().Exec(
		`INSERT INTO entries (branch, space, kind, key, version, value, deleted, ts) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		branch, space, kind, key, version, valueJSON, boolToInt(deleted), ts,
	); err != nil {
		return 0, 0, wrapSQL(err)
	}
	if _, err = s.q().Exec(
		`UPDATE branches SET updated_at = ? WHERE id = ?`, ts, branch,
	); err != nil {
		return 0, 0, wrapSQL(err)
	}

	if err = s.indexEntry(kind, branch, space, key, text, deleted); err != nil {
		return 0, 0, err
	}

	s.counters.WalAppends++
	if str, ok := valueJSON.(string); ok {
		s.counters.BytesWritten += uint64(len(str))
	}
	if s.tx == nil {
		// Autocommit write: the page sync happens here, not at TxnCommit.
		s.counters.SyncCalls++
		s.counters.SyncNanos += uint64(time.Since(start).Nanoseconds())
	}

	if !deleted {
		s.autoEmbedEntry(kind, key, text)
	}
	return version, ts, nil
}

// indexEntry keeps the FTS table in step with the latest entry state.
// Events accumulate one row per append; other kinds hold one row per key.
func (s *Strata) indexEntry(kind, branch, space, key, text string, deleted bool) error {
	if kind != kindEvent {
		if _, err := s.q().Exec(
			`DELETE FROM search_fts WHERE entity = ? AND primitive = ? AND branch = ? AND space = ?`,
			key, kind, branch, space,
		); err != nil {
			return wrapSQL(err)
		}
	}
	if deleted || text == "" {
		return nil
	}
	_, err := s.q().Exec(
		`INSERT INTO search_fts (entity, content, primitive, branch, space) VALUES (?, ?, ?, ?, ?)`,
		key, text, kind, branch, space,
	)
	return wrapSQL(err)
}

func (s *Strata) putValue(kind, branch, space, key string, v Value) (Output, error) {
	version, _, err := s.appendEntry(kind, branch, space, key, v, false)
	if err != nil {
		return nil, err
	}
	return Version{Version: version}, nil
}

// latestEntry fetches the newest row for a key at or before asOf.
func (s *Strata) latestEntry(kind, branch, space, key string, asOf *uint64) (*VersionedValue, bool, error) {
	query := `SELECT value, deleted, version, ts FROM entries
		WHERE branch = ? AND space = ? AND kind = ? AND key = ?`
	args := []any{branch, space, kind, key}
	if asOf != nil {
		query += ` AND ts <= ?`
		args = append(args, *asOf)
	}
	query += ` ORDER BY version DESC LIMIT 1`

	var raw sql.NullString
	var deleted int
	var version, ts uint64
	err := s.q().QueryRow(query, args...).Scan(&raw, &deleted, &version, &ts)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, wrapSQL(err)
	}
	if deleted != 0 {
		return nil, true, nil
	}
	v, err := DecodeValue([]byte(raw.String))
	if err != nil {
		return nil, false, storeErrf(CodeInternal, "decode value: %v", err)
	}
	return &VersionedValue{Value: v, Version: version, Timestamp: ts}, true, nil
}

func (s *Strata) getValue(kind, branch, space, key string, asOf *uint64) (Output, error) {
	vv, _, err := s.latestEntry(kind, branch, space, key, asOf)
	if err != nil {
		return nil, err
	}
	if vv == nil {
		return Maybe{}, nil
	}
	return Maybe{Value: vv.Value}, nil
}

func (s *Strata) getVersioned(kind, branch, space, key string, asOf *uint64) (Output, error) {
	vv, _, err := s.latestEntry(kind, branch, space, key, asOf)
	if err != nil {
		return nil, err
	}
	return MaybeVersioned{Value: vv}, nil
}

// deleteValue writes a tombstone. Returns Uint(1) when a live value was
// deleted, Uint(0) when the key was absent or already deleted.
func (s *Strata) deleteValue(kind, branch, space, key string) (Output, error) {
	vv, _, err := s.latestEntry(kind, branch, space, key, nil)
	if err != nil {
		return nil, err
	}
	if vv == nil {
		return Uint{Value: 0}, nil
	}
	if _, _, err := s.appendEntry(kind, branch, space, key, nil, true); err != nil {
		return nil, err
	}
	return Uint{Value: 1}, nil
}

// history lists non-tombstone versions of a key, oldest first. A deleted
// key still reports its pre-deletion versions.
func (s *Strata) history(kind, branch, space, key string, asOf *uint64) (Output, error) {
	query := `SELECT value, version, ts FROM entries
		WHERE branch = ? AND space = ? AND kind = ? AND key = ? AND deleted = 0`
	args := []any{branch, space, kind, key}
	if asOf != nil {
		query += ` AND ts <= ?`
		args = append(args, *asOf)
	}
	query += ` ORDER BY version ASC`

	rows, err := s.q().Query(query, args...)
	if err != nil {
		return nil, wrapSQL(err)
	}
	defer rows.Close()

	var values []VersionedValue
	for rows.Next() {
		var raw string
		var version, ts uint64
		if err := rows.Scan(&raw, &version, &ts); err != nil {
			return nil, wrapSQL(err)
		}
		v, err := DecodeValue([]byte(raw))
		if err != nil {
			return nil, storeErrf(CodeInternal, "decode value: %v", err)
		}
		values = append(values, VersionedValue{Value: v, Version: version, Timestamp: ts})
	}
	if err := rows.Err(); err != nil {
		return nil, wrapSQL(err)
	}
	if values == nil {
		return VersionHistory{Found: false}, nil
	}
	return VersionHistory{Values: values, Found: true}, nil
}

func (s *Strata) liveKeys(kind, branch, space, prefix string, afterKey string, limit uint64) ([]string, error) {
	query := `SELECT key FROM entries e
		WHERE branch = ? AND space = ? AND kind = ? AND deleted = 0
		  AND key LIKE ? ESCAPE '\'
		  AND version = (
			SELECT MAX(version) FROM entries
			WHERE branch = e.branch AND space = e.space AND kind = e.kind AND key = e.key
		  )`
	args := []any{branch, space, kind, likePrefix(prefix)}
	if afterKey != "" {
		query += ` AND key > ?`
		args = append(args, afterKey)
	}
	query += ` ORDER BY key ASC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.q().Query(query, args...)
	if err != nil {
		return nil, wrapSQL(err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, wrapSQL(err)
		}
		keys = append(keys, k)
	}
	return keys, wrapSQL(rows.Err())
}

func (s *Strata) keys(kind, branch, space, prefix string) (Output, error) {
	keys, err := s.liveKeys(kind, branch, space, prefix, "", 0)
	if err != nil {
		return nil, err
	}
	return Keys{Keys: keys}, nil
}

// batchPut stores entries independently: one bad value does not fail the
// batch, it fails its own slot.
func (s *Strata) batchPut(c KvBatchPut) (Output, error) {
	results := make([]BatchResult, 0, len(c.Entries))
	for _, e := range c.Entries {
		version, _, err := s.appendEntry(kindKV, c.Branch, c.Space, e.Key, e.Value, false)
		if err != nil {
			results = append(results, BatchResult{Err: err.Error()})
			continue
		}
		v := version
		results = append(results, BatchResult{Version: &v})
	}
	return BatchResults{Results: results}, nil
}

func (s *Strata) eventAppend(c EventAppend) (Output, error) {
	seq, _, err := s.appendEntry(kindEvent, c.Branch, c.Space, c.EventType, c.Payload, false)
	if err != nil {
		return nil, err
	}
	return Version{Version: seq}, nil
}

func (s *Strata) eventList(c EventList) (Output, error) {
	query := `SELECT value, version, ts FROM entries
		WHERE branch = ? AND space = ? AND kind = 'event'`
	args := []any{c.Branch, c.Space}
	if c.EventType != "" {
		query += ` AND key = ?`
		args = append(args, c.EventType)
	}
	query += ` ORDER BY ts ASC, version ASC`
	if c.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, c.Limit)
	}

	rows, err := s.q().Query(query, args...)
	if err != nil {
		return nil, wrapSQL(err)
	}
	defer rows.Close()

	values := []VersionedValue{}
	for rows.Next() {
		var raw string
		var version, ts uint64
		if err := rows.Scan(&raw, &version, &ts); err != nil {
			return nil, wrapSQL(err)
		}
		v, err := DecodeValue([]byte(raw))
		if err != nil {
			return nil, storeErrf(CodeInternal, "decode value: %v", err)
		}
		values = append(values, VersionedValue{Value: v, Version: version, Timestamp: ts})
	}
	if err := rows.Err(); err != nil {
		return nil, wrapSQL(err)
	}
	return VersionedValues{Values: values}, nil
}

func (s *Strata) spaceList(c SpaceList) (Output, error) {
	rows, err := s.q().Query(
		`SELECT DISTINCT space FROM entries WHERE branch = ? ORDER BY space ASC`, c.Branch,
	)
	if err != nil {
		return nil, wrapSQL(err)
	}
	defer rows.Close()

	spaces := []string{}
	for rows.Next() {
		var sp string
		if err := rows.Scan(&sp); err != nil {
			return nil, wrapSQL(err)
		}
		spaces = append(spaces, sp)
	}
	return SpaceListOut{Spaces: spaces}, wrapSQL(rows.Err())
}

// spaceClear tombstones every live key in a space. The data remains in
// history; only the live view empties.
func (s *Strata) spaceClear(c SpaceClear) (Output, error) {
	var cleared uint64
	for _, kind := range []string{kindKV, kindState, kindJSON} {
		keys, err := s.liveKeys(kind, c.Branch, c.Space, "", "", 0)
		if err != nil {
			return nil, err
		}
		for _, k := range keys {
			if _, _, err := s.appendEntry(kind, c.Branch, c.Space, k, nil, true); err != nil {
				return nil, err
			}
			cleared++
		}
	}
	return Uint{Value: cleared}, nil
}

// retentionApply trims per-key history down to the configured keep count.
// The newest rows survive; with keep at zero this is a no-op.
func (s *Strata) retentionApply(c RetentionApply) (Output, error) {
	keep := s.opts.RetentionKeepVersions
	if keep == 0 {
		return Unit{}, nil
	}
	_, err := s.q().Exec(`
		DELETE FROM entries WHERE id IN (
			SELECT e.id FROM entries e
			WHERE e.branch = ?
			  AND (
				SELECT COUNT(*) FROM entries newer
				WHERE newer.branch = e.branch AND newer.space = e.space
				  AND newer.kind = e.kind AND newer.key = e.key
				  AND newer.version > e.version
			  ) >= ?
		)`, c.Branch, keep)
	if err != nil {
		return nil, wrapSQL(err)
	}
	return Unit{}, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// likePrefix escapes LIKE metacharacters so a key prefix matches
// literally.
func likePrefix(prefix string) string {
	escaped := make([]byte, 0, len(prefix)+4)
	for i := 0; i < len(prefix); i++ {
		switch prefix[i] {
		case '%', '_', '\\':
			escaped = append(escaped, '\\')
		}
		escaped = append(escaped, prefix[i])
	}
	return string(escaped) + "%"
}
