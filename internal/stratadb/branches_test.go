package stratadb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBranchCreate_NamedAndGenerated(t *testing.T) {
	s := newStore(t)

	out := mustExec(t, s, BranchCreate{BranchID: "feature"}).(MaybeBranchInfo)
	require.NotNil(t, out.Info)
	assert.Equal(t, "feature", out.Info.ID)
	assert.Equal(t, BranchActive, out.Info.Status)

	// An empty id asks the store to generate one.
	gen := mustExec(t, s, BranchCreate{}).(MaybeBranchInfo)
	require.NotNil(t, gen.Info)
	assert.NotEmpty(t, gen.Info.ID)
	assert.NotEqual(t, "feature", gen.Info.ID)
}

func TestBranchCreate_DuplicateFails(t *testing.T) {
	s := newStore(t)
	mustExec(t, s, BranchCreate{BranchID: "feature"})

	_, err := s.Execute(BranchCreate{BranchID: "feature"})
	require.Error(t, err)
	assert.Equal(t, CodeBranchExists, err.(*StoreError).Code)
}

func TestBranchExists(t *testing.T) {
	s := newStore(t)
	assert.Equal(t, BoolOut{Value: true}, mustExec(t, s, BranchExists{Branch: "default"}))
	assert.Equal(t, BoolOut{Value: false}, mustExec(t, s, BranchExists{Branch: "ghost"}))
}

func TestBranchGet_AbsentIsEmpty(t *testing.T) {
	s := newStore(t)
	out := mustExec(t, s, BranchGet{Branch: "ghost"}).(MaybeBranchInfo)
	assert.Nil(t, out.Info)

	got := mustExec(t, s, BranchGet{Branch: "default"}).(MaybeBranchInfo)
	require.NotNil(t, got.Info)
	assert.Equal(t, "default", got.Info.ID)
}

func TestBranchList_StatusFilterAndLimit(t *testing.T) {
	s := newStore(t)
	mustExec(t, s, BranchCreate{BranchID: "a"})
	mustExec(t, s, BranchCreate{BranchID: "b"})

	all := mustExec(t, s, BranchList{}).(BranchInfoList)
	require.Len(t, all.Branches, 3) // default + a + b

	limited := mustExec(t, s, BranchList{Limit: 2}).(BranchInfoList)
	require.Len(t, limited.Branches, 2)

	archived := mustExec(t, s, BranchList{Status: "Archived"}).(BranchInfoList)
	assert.Empty(t, archived.Branches)
}

func TestBranchDelete_RemovesData(t *testing.T) {
	s := newStore(t)
	mustExec(t, s, BranchCreate{BranchID: "scratch"})
	mustExec(t, s, KvPut{Branch: "scratch", Space: "default", Key: "k", Value: Int(1)})

	mustExec(t, s, BranchDelete{Branch: "scratch"})

	assert.Equal(t, BoolOut{Value: false}, mustExec(t, s, BranchExists{Branch: "scratch"}))
	_, err := s.Execute(KvPut{Branch: "scratch", Space: "default", Key: "k", Value: Int(1)})
	require.Error(t, err)
}

func TestBranchDelete_DefaultIsProtected(t *testing.T) {
	s := newStore(t)
	_, err := s.Execute(BranchDelete{Branch: "default"})
	require.Error(t, err)
	assert.Equal(t, CodeInvalidArgument, err.(*StoreError).Code)
}

func TestBranchDelete_AbsentFails(t *testing.T) {
	s := newStore(t)
	_, err := s.Execute(BranchDelete{Branch: "ghost"})
	require.Error(t, err)
	assert.Equal(t, CodeBranchNotFound, err.(*StoreError).Code)
}

// --- Fork ---

func TestFork_CopiesHistoryAndIsolates(t *testing.T) {
	s := newStore(t)
	mustExec(t, s, KvPut{Branch: "default", Space: "default", Key: "k", Value: Int(1)})
	mustExec(t, s, KvPut{Branch: "default", Space: "default", Key: "k", Value: Int(2)})
	mustExec(t, s, KvPut{Branch: "default", Space: "default", Key: "other", Value: String("x")})

	info, err := s.Branches().Fork("default", "feature")
	require.NoError(t, err)
	assert.Equal(t, ForkInfo{Source: "default", Destination: "feature", KeysCopied: 2}, info)

	// History traveled with the fork.
	hist := mustExec(t, s, KvHistory{Branch: "feature", Space: "default", Key: "k"}).(VersionHistory)
	require.Len(t, hist.Values, 2)

	// Writes after the fork don't leak across.
	mustExec(t, s, KvPut{Branch: "feature", Space: "default", Key: "k", Value: Int(99)})
	assert.Equal(t, Maybe{Value: Int(2)}, mustExec(t, s, KvGet{Branch: "default", Space: "default", Key: "k"}))
	assert.Equal(t, Maybe{Value: Int(99)}, mustExec(t, s, KvGet{Branch: "feature", Space: "default", Key: "k"}))
}

func TestFork_MissingSourceOrExistingDestination(t *testing.T) {
	s := newStore(t)

	_, err := s.Branches().Fork("ghost", "feature")
	require.Error(t, err)
	assert.Equal(t, CodeBranchNotFound, err.(*StoreError).Code)

	mustExec(t, s, BranchCreate{BranchID: "taken"})
	_, err = s.Branches().Fork("default", "taken")
	require.Error(t, err)
	assert.Equal(t, CodeBranchExists, err.(*StoreError).Code)
}

// --- Diff ---

func TestDiff_CountsAddedRemovedModified(t *testing.T) {
	s := newStore(t)
	mustExec(t, s, KvPut{Branch: "default", Space: "default", Key: "same", Value: Int(1)})
	mustExec(t, s, KvPut{Branch: "default", Space: "default", Key: "changed", Value: Int(1)})
	mustExec(t, s, KvPut{Branch: "default", Space: "default", Key: "only-a", Value: Int(1)})

	_, err := s.Branches().Fork("default", "b")
	require.NoError(t, err)

	mustExec(t, s, KvPut{Branch: "b", Space: "default", Key: "changed", Value: Int(2)})
	mustExec(t, s, KvPut{Branch: "b", Space: "default", Key: "only-b", Value: Int(1)})
	mustExec(t, s, KvDelete{Branch: "b", Space: "default", Key: "only-a"})

	diff, err := s.Branches().Diff("default", "b")
	require.NoError(t, err)
	assert.Equal(t, "default", diff.BranchA)
	assert.Equal(t, "b", diff.BranchB)
	assert.Equal(t, DiffSummary{TotalAdded: 1, TotalRemoved: 1, TotalModified: 1}, diff.Summary)
}

func TestDiff_MissingBranchFails(t *testing.T) {
	s := newStore(t)
	_, err := s.Branches().Diff("default", "ghost")
	require.Error(t, err)
	assert.Equal(t, CodeBranchNotFound, err.(*StoreError).Code)
}

// --- Merge ---

func TestMerge_AppliesNewKeysAndSkipsIdentical(t *testing.T) {
	s := newStore(t)
	mustExec(t, s, KvPut{Branch: "default", Space: "default", Key: "same", Value: Int(1)})

	_, err := s.Branches().Fork("default", "src")
	require.NoError(t, err)
	mustExec(t, s, KvPut{Branch: "src", Space: "default", Key: "fresh", Value: String("new")})

	info, err := s.Branches().Merge("src", "default", MergeLastWriterWins)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), info.KeysApplied, "identical key skipped, fresh key applied")
	assert.Equal(t, uint64(1), info.SpacesMerged)
	assert.Empty(t, info.Conflicts)

	assert.Equal(t, Maybe{Value: String("new")}, mustExec(t, s, KvGet{Branch: "default", Space: "default", Key: "fresh"}))
}

func TestMerge_LastWriterWinsConflict(t *testing.T) {
	s := newStore(t)
	mustExec(t, s, KvPut{Branch: "default", Space: "default", Key: "k", Value: Int(1)})
	_, err := s.Branches().Fork("default", "src")
	require.NoError(t, err)

	// Source writes first, destination writes later: LWW keeps the
	// destination value and still reports the conflict.
	mustExec(t, s, KvPut{Branch: "src", Space: "default", Key: "k", Value: Int(10)})
	waitMicroTick(t)
	mustExec(t, s, KvPut{Branch: "default", Space: "default", Key: "k", Value: Int(20)})

	info, err := s.Branches().Merge("src", "default", MergeLastWriterWins)
	require.NoError(t, err)
	require.Len(t, info.Conflicts, 1)
	assert.Equal(t, "k", info.Conflicts[0].Key)
	assert.Equal(t, uint64(0), info.KeysApplied)
	assert.Equal(t, Maybe{Value: Int(20)}, mustExec(t, s, KvGet{Branch: "default", Space: "default", Key: "k"}))
}

func TestMerge_SourceWinsOverridesNewerDestination(t *testing.T) {
	s := newStore(t)
	mustExec(t, s, KvPut{Branch: "default", Space: "default", Key: "k", Value: Int(1)})
	_, err := s.Branches().Fork("default", "src")
	require.NoError(t, err)

	mustExec(t, s, KvPut{Branch: "src", Space: "default", Key: "k", Value: Int(10)})
	waitMicroTick(t)
	mustExec(t, s, KvPut{Branch: "default", Space: "default", Key: "k", Value: Int(20)})

	info, err := s.Branches().Merge("src", "default", MergeSourceWins)
	require.NoError(t, err)
	require.Len(t, info.Conflicts, 1)
	assert.Equal(t, uint64(1), info.KeysApplied)
	assert.Equal(t, Maybe{Value: Int(10)}, mustExec(t, s, KvGet{Branch: "default", Space: "default", Key: "k"}))
}

// waitMicroTick sleeps until the microsecond clock advances, so writes
// on either side of it get distinct timestamps.
func waitMicroTick(t *testing.T) {
	t.Helper()
	start := nowMicros()
	for nowMicros() == start {
	}
}
