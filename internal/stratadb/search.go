package stratadb

import "strings"

// sanitizeFTS quotes each word of a user query so FTS5 operators in the
// input cannot change the query's meaning.
func sanitizeFTS(query string) string {
	words := strings.Fields(query)
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ReplaceAll(w, `"`, "")
		if w == "" {
			continue
		}
		quoted = append(quoted, `"`+w+`"`)
	}
	return strings.Join(quoted, " ")
}

func (s *Strata) search(c Search) (Output, error) {
	sanitized := sanitizeFTS(c.Query.Query)
	if sanitized == "" {
		return SearchResults{Results: []SearchResult{}}, nil
	}

	k := c.Query.K
	if k == 0 {
		k = 10
	}

	query := `
		SELECT entity, primitive, bm25(search_fts) AS score,
		       snippet(search_fts, 1, '[', ']', '…', 12) AS snip
		FROM search_fts
		WHERE search_fts MATCH ? AND branch = ? AND space = ?`
	args := []any{sanitized, c.Branch, c.Space}

	if len(c.Query.Primitives) > 0 {
		query += ` AND primitive IN (?` + strings.Repeat(",?", len(c.Query.Primitives)-1) + `)`
		for _, p := range c.Query.Primitives {
			args = append(args, p)
		}
	}
	query += ` ORDER BY score LIMIT ?`
	args = append(args, k)

	rows, err := s.q().Query(query, args...)
	if err != nil {
		return nil, wrapSQL(err)
	}
	defer rows.Close()

	results := []SearchResult{}
	rank := uint64(1)
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Entity, &r.Primitive, &r.Score, &r.Snippet); err != nil {
			return nil, wrapSQL(err)
		}
		// bm25 scores are negative with better matches lower; flip so
		// callers see higher-is-better.
		r.Score = -r.Score
		r.Rank = rank
		rank++
		results = append(results, r)
	}
	return SearchResults{Results: results}, wrapSQL(rows.Err())
}
