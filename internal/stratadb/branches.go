package stratadb

import (
	"database/sql"

	"github.com/google/uuid"
)

func (s *Strata) branchExists(id string) (bool, error) {
	var n int
	err := s.q().QueryRow(`SELECT COUNT(*) FROM branches WHERE id = ?`, id).Scan(&n)
	if err != nil {
		return false, wrapSQL(err)
	}
	return n > 0, nil
}

func (s *Strata) branchCreate(c BranchCreate) (Output, error) {
	id := c.BranchID
	if id == "" {
		id = uuid.NewString()
	}
	exists, err := s.branchExists(id)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, storeErrf(CodeBranchExists, "branch %q already exists", id)
	}
	now := nowMicros()
	if _, err := s.q().Exec(
		`INSERT INTO branches (id, status, created_at, updated_at) VALUES (?, 'Active', ?, ?)`,
		id, now, now,
	); err != nil {
		return nil, wrapSQL(err)
	}
	return MaybeBranchInfo{Info: &BranchInfo{
		ID: id, Status: BranchActive, CreatedAt: now, UpdatedAt: now, Timestamp: now,
	}}, nil
}

func (s *Strata) branchExistsCmd(c BranchExists) (Output, error) {
	exists, err := s.branchExists(c.Branch)
	if err != nil {
		return nil, err
	}
	return BoolOut{Value: exists}, nil
}

func (s *Strata) scanBranch(row interface{ Scan(...any) error }) (*BranchInfo, error) {
	var info BranchInfo
	var status string
	var parent sql.NullString
	if err := row.Scan(&info.ID, &status, &parent, &info.CreatedAt, &info.UpdatedAt); err != nil {
		return nil, err
	}
	info.Status = BranchStatus(status)
	info.ParentID = parent.String
	info.Timestamp = info.UpdatedAt
	return &info, nil
}

func (s *Strata) branchGet(c BranchGet) (Output, error) {
	row := s.q().QueryRow(
		`SELECT id, status, parent_id, created_at, updated_at FROM branches WHERE id = ?`, c.Branch,
	)
	info, err := s.scanBranch(row)
	if err == sql.ErrNoRows {
		return MaybeBranchInfo{}, nil
	}
	if err != nil {
		return nil, wrapSQL(err)
	}
	return MaybeBranchInfo{Info: info}, nil
}

func (s *Strata) branchList(c BranchList) (Output, error) {
	query := `SELECT id, status, parent_id, created_at, updated_at FROM branches`
	args := []any{}
	if c.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, c.Status)
	}
	query += ` ORDER BY created_at ASC`
	if c.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, c.Limit)
	}

	rows, err := s.q().Query(query, args...)
	if err != nil {
		return nil, wrapSQL(err)
	}
	defer rows.Close()

	branches := []BranchInfo{}
	for rows.Next() {
		info, err := s.scanBranch(rows)
		if err != nil {
			return nil, wrapSQL(err)
		}
		branches = append(branches, *info)
	}
	return BranchInfoList{Branches: branches}, wrapSQL(rows.Err())
}

func (s *Strata) branchDelete(c BranchDelete) (Output, error) {
	exists, err := s.branchExists(c.Branch)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, storeErrf(CodeBranchNotFound, "branch %q does not exist", c.Branch)
	}
	if c.Branch == "default" {
		return nil, storeErrf(CodeInvalidArgument, "the default branch cannot be deleted")
	}
	for _, stmt := range []string{
		`DELETE FROM entries WHERE branch = ?`,
		`DELETE FROM search_fts WHERE branch = ?`,
		`DELETE FROM branches WHERE id = ?`,
	} {
		if _, err := s.q().Exec(stmt, c.Branch); err != nil {
			return nil, wrapSQL(err)
		}
	}
	return Unit{}, nil
}

// ── Power API ────────────────────────────────────────────────────────────

// BranchAPI exposes the fork/diff/merge operations that work across
// branches rather than inside one.
type BranchAPI struct {
	s *Strata
}

// Branches returns the branch power API.
func (s *Strata) Branches() *BranchAPI {
	return &BranchAPI{s: s}
}

// Fork copies every entry of src into a new branch dst. The copy keeps
// versions and timestamps so history travels with the fork.
func (b *BranchAPI) Fork(src, dst string) (ForkInfo, error) {
	s := b.s
	exists, err := s.branchExists(src)
	if err != nil {
		return ForkInfo{}, err
	}
	if !exists {
		return ForkInfo{}, storeErrf(CodeBranchNotFound, "branch %q does not exist", src)
	}
	if dstExists, err := s.branchExists(dst); err != nil {
		return ForkInfo{}, err
	} else if dstExists {
		return ForkInfo{}, storeErrf(CodeBranchExists, "branch %q already exists", dst)
	}

	now := nowMicros()
	if _, err := s.q().Exec(
		`INSERT INTO branches (id, status, parent_id, created_at, updated_at) VALUES (?, 'Active', ?, ?, ?)`,
		dst, src, now, now,
	); err != nil {
		return ForkInfo{}, wrapSQL(err)
	}
	if _, err := s.q().Exec(
		`INSERT INTO entries (branch, space, kind, key, version, value, deleted, ts)
		 SELECT ?, space, kind, key, version, value, deleted, ts FROM entries WHERE branch = ?`,
		dst, src,
	); err != nil {
		return ForkInfo{}, wrapSQL(err)
	}
	if _, err := s.q().Exec(
		`INSERT INTO search_fts (entity, content, primitive, branch, space)
		 SELECT entity, content, primitive, ?, space FROM search_fts WHERE branch = ?`,
		dst, src,
	); err != nil {
		return ForkInfo{}, wrapSQL(err)
	}

	var copied uint64
	err = s.q().QueryRow(`
		SELECT COUNT(*) FROM entries e
		WHERE branch = ? AND kind != 'event' AND deleted = 0
		  AND version = (
			SELECT MAX(version) FROM entries
			WHERE branch = e.branch AND space = e.space AND kind = e.kind AND key = e.key
		  )`, dst).Scan(&copied)
	if err != nil {
		return ForkInfo{}, wrapSQL(err)
	}
	return ForkInfo{Source: src, Destination: dst, KeysCopied: copied}, nil
}

// latestSnapshot maps (space, kind, key) to the latest live value JSON.
func (s *Strata) latestSnapshot(branch string) (map[[3]string]string, error) {
	rows, err := s.q().Query(`
		SELECT space, kind, key, value FROM entries e
		WHERE branch = ? AND kind != 'event' AND deleted = 0
		  AND version = (
			SELECT MAX(version) FROM entries
			WHERE branch = e.branch AND space = e.space AND kind = e.kind AND key = e.key
		  )`, branch)
	if err != nil {
		return nil, wrapSQL(err)
	}
	defer rows.Close()

	snap := map[[3]string]string{}
	for rows.Next() {
		var space, kind, key, value string
		if err := rows.Scan(&space, &kind, &key, &value); err != nil {
			return nil, wrapSQL(err)
		}
		snap[[3]string{space, kind, key}] = value
	}
	return snap, wrapSQL(rows.Err())
}

// Diff compares the live key sets of two branches.
func (b *BranchAPI) Diff(branchA, branchB string) (BranchDiffResult, error) {
	s := b.s
	for _, id := range []string{branchA, branchB} {
		exists, err := s.branchExists(id)
		if err != nil {
			return BranchDiffResult{}, err
		}
		if !exists {
			return BranchDiffResult{}, storeErrf(CodeBranchNotFound, "branch %q does not exist", id)
		}
	}

	snapA, err := s.latestSnapshot(branchA)
	if err != nil {
		return BranchDiffResult{}, err
	}
	snapB, err := s.latestSnapshot(branchB)
	if err != nil {
		return BranchDiffResult{}, err
	}

	diff := BranchDiffResult{BranchA: branchA, BranchB: branchB}
	for k, va := range snapA {
		vb, ok := snapB[k]
		switch {
		case !ok:
			diff.Summary.TotalRemoved++
		case va != vb:
			diff.Summary.TotalModified++
		}
	}
	for k := range snapB {
		if _, ok := snapA[k]; !ok {
			diff.Summary.TotalAdded++
		}
	}
	return diff, nil
}

// MergeStrategy selects conflict resolution during a merge.
type MergeStrategy string

// Merge strategies.
const (
	// MergeLastWriterWins applies the side with the newer timestamp.
	MergeLastWriterWins MergeStrategy = "last_writer_wins"
	// MergeSourceWins always applies the source branch's value.
	MergeSourceWins MergeStrategy = "source_wins"
)

// Merge applies src's live entries into dst. Keys present in both
// branches with different values are reported as conflicts; the chosen
// strategy decides which side lands in dst.
func (b *BranchAPI) Merge(src, dst string, strategy MergeStrategy) (MergeInfo, error) {
	s := b.s
	for _, id := range []string{src, dst} {
		exists, err := s.branchExists(id)
		if err != nil {
			return MergeInfo{}, err
		}
		if !exists {
			return MergeInfo{}, storeErrf(CodeBranchNotFound, "branch %q does not exist", id)
		}
	}

	rows, err := s.q().Query(`
		SELECT space, kind, key, value, ts FROM entries e
		WHERE branch = ? AND kind != 'event' AND deleted = 0
		  AND version = (
			SELECT MAX(version) FROM entries
			WHERE branch = e.branch AND space = e.space AND kind = e.kind AND key = e.key
		  )`, src)
	if err != nil {
		return MergeInfo{}, wrapSQL(err)
	}
	type srcEntry struct {
		space, kind, key, value string
		ts                      uint64
	}
	var srcEntries []srcEntry
	for rows.Next() {
		var e srcEntry
		if err := rows.Scan(&e.space, &e.kind, &e.key, &e.value, &e.ts); err != nil {
			rows.Close()
			return MergeInfo{}, wrapSQL(err)
		}
		srcEntries = append(srcEntries, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return MergeInfo{}, wrapSQL(err)
	}

	info := MergeInfo{}
	spaces := map[string]bool{}
	for _, e := range srcEntries {
		cur, _, err := s.latestEntry(e.kind, dst, e.space, e.key, nil)
		if err != nil {
			return MergeInfo{}, err
		}
		if cur != nil {
			curJSON, encErr := EncodeValue(cur.Value)
			if encErr != nil {
				return MergeInfo{}, storeErrf(CodeInternal, "encode value: %v", encErr)
			}
			if string(curJSON) == e.value {
				continue // identical on both sides
			}
			info.Conflicts = append(info.Conflicts, MergeConflict{Key: e.key, Space: e.space})
			if strategy == MergeLastWriterWins && cur.Timestamp > e.ts {
				continue // destination is newer, keep it
			}
		}
		v, err := DecodeValue([]byte(e.value))
		if err != nil {
			return MergeInfo{}, storeErrf(CodeInternal, "decode value: %v", err)
		}
		if _, _, err := s.appendEntry(e.kind, dst, e.space, e.key, v, false); err != nil {
			return MergeInfo{}, err
		}
		info.KeysApplied++
		spaces[e.space] = true
	}
	info.SpacesMerged = uint64(len(spaces))
	return info, nil
}
