package stratadb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Strata {
	t.Helper()
	s, err := Cache()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mustExec(t *testing.T, s *Strata, cmd Command) Output {
	t.Helper()
	out, err := s.Execute(cmd)
	require.NoError(t, err, "executing %s", cmd.Name())
	return out
}

// --- KV ---

func TestKvPut_VersionsAreMonotonic(t *testing.T) {
	s := newStore(t)

	for want := uint64(1); want <= 3; want++ {
		out := mustExec(t, s, KvPut{Branch: "default", Space: "default", Key: "counter", Value: Int(int64(want))})
		require.Equal(t, Version{Version: want}, out)
	}
}

func TestKvGet_LatestWins(t *testing.T) {
	s := newStore(t)
	mustExec(t, s, KvPut{Branch: "default", Space: "default", Key: "k", Value: String("old")})
	mustExec(t, s, KvPut{Branch: "default", Space: "default", Key: "k", Value: String("new")})

	out := mustExec(t, s, KvGet{Branch: "default", Space: "default", Key: "k"})
	require.Equal(t, Maybe{Value: String("new")}, out)
}

func TestKvGet_AbsentKeyIsEmptyMaybe(t *testing.T) {
	s := newStore(t)
	out := mustExec(t, s, KvGet{Branch: "default", Space: "default", Key: "nope"})
	require.Equal(t, Maybe{}, out)
}

func TestKvPut_UnknownBranchFails(t *testing.T) {
	s := newStore(t)
	_, err := s.Execute(KvPut{Branch: "ghost", Space: "default", Key: "k", Value: Int(1)})
	require.Error(t, err)
	se, ok := err.(*StoreError)
	require.True(t, ok)
	assert.Equal(t, CodeBranchNotFound, se.Code)
}

func TestKvDelete_TombstonePreservesHistory(t *testing.T) {
	s := newStore(t)
	mustExec(t, s, KvPut{Branch: "default", Space: "default", Key: "k", Value: Int(1)})
	mustExec(t, s, KvPut{Branch: "default", Space: "default", Key: "k", Value: Int(2)})

	out := mustExec(t, s, KvDelete{Branch: "default", Space: "default", Key: "k"})
	require.Equal(t, Uint{Value: 1}, out)

	// The live view is empty.
	got := mustExec(t, s, KvGet{Branch: "default", Space: "default", Key: "k"})
	require.Equal(t, Maybe{}, got)

	// But history still reports the pre-deletion versions.
	hist := mustExec(t, s, KvHistory{Branch: "default", Space: "default", Key: "k"}).(VersionHistory)
	require.True(t, hist.Found)
	require.Len(t, hist.Values, 2)
	assert.Equal(t, Int(1), hist.Values[0].Value)
	assert.Equal(t, Int(2), hist.Values[1].Value)
	assert.Less(t, hist.Values[0].Version, hist.Values[1].Version)
}

func TestKvDelete_AbsentKeyDeletesNothing(t *testing.T) {
	s := newStore(t)
	out := mustExec(t, s, KvDelete{Branch: "default", Space: "default", Key: "nope"})
	require.Equal(t, Uint{Value: 0}, out)
}

func TestKvHistory_NeverWrittenKeyIsNotFound(t *testing.T) {
	s := newStore(t)
	hist := mustExec(t, s, KvHistory{Branch: "default", Space: "default", Key: "nope"}).(VersionHistory)
	assert.False(t, hist.Found)
	assert.Empty(t, hist.Values)
}

func TestKvKeys_PrefixFilterIsLiteral(t *testing.T) {
	s := newStore(t)
	for _, k := range []string{"user:1", "user:2", "use_r:3", "other"} {
		mustExec(t, s, KvPut{Branch: "default", Space: "default", Key: k, Value: Bool(true)})
	}
	mustExec(t, s, KvDelete{Branch: "default", Space: "default", Key: "user:2"})

	out := mustExec(t, s, KvKeys{Branch: "default", Space: "default", Prefix: "user:"})
	require.Equal(t, Keys{Keys: []string{"user:1"}}, out)

	// LIKE metacharacters in the prefix must not act as wildcards.
	out = mustExec(t, s, KvKeys{Branch: "default", Space: "default", Prefix: "use_"})
	require.Equal(t, Keys{Keys: []string{"use_r:3"}}, out)
}

func TestKvBatchPut_ItemsFailIndependently(t *testing.T) {
	s := newStore(t)

	out := mustExec(t, s, KvBatchPut{
		Branch: "default", Space: "default",
		Entries: []BatchEntry{
			{Key: "a", Value: Int(1)},
			{Key: "b", Value: String("two")},
		},
	}).(BatchResults)

	require.Len(t, out.Results, 2)
	for i, r := range out.Results {
		require.NotNil(t, r.Version, "item %d", i)
		assert.Empty(t, r.Err)
	}

	// A failing batch against a missing branch reports per-item errors,
	// not a top-level failure.
	bad, err := s.Execute(KvBatchPut{
		Branch: "ghost", Space: "default",
		Entries: []BatchEntry{{Key: "a", Value: Int(1)}},
	})
	require.NoError(t, err)
	results := bad.(BatchResults).Results
	require.Len(t, results, 1)
	assert.Nil(t, results[0].Version)
	assert.NotEmpty(t, results[0].Err)
}

// --- State ---

func TestState_SeparateNamespaceFromKv(t *testing.T) {
	s := newStore(t)
	mustExec(t, s, KvPut{Branch: "default", Space: "default", Key: "shared", Value: String("kv")})
	mustExec(t, s, StateSet{Branch: "default", Space: "default", Key: "shared", Value: String("state")})

	kv := mustExec(t, s, KvGet{Branch: "default", Space: "default", Key: "shared"})
	require.Equal(t, Maybe{Value: String("kv")}, kv)

	st := mustExec(t, s, StateGet{Branch: "default", Space: "default", Key: "shared"}).(MaybeVersioned)
	require.NotNil(t, st.Value)
	assert.Equal(t, String("state"), st.Value.Value)
	assert.Equal(t, uint64(1), st.Value.Version)
}

func TestStateHistory_OldestFirst(t *testing.T) {
	s := newStore(t)
	mustExec(t, s, StateSet{Branch: "default", Space: "default", Key: "phase", Value: String("init")})
	mustExec(t, s, StateSet{Branch: "default", Space: "default", Key: "phase", Value: String("ready")})

	hist := mustExec(t, s, StateHistory{Branch: "default", Space: "default", Key: "phase"}).(VersionHistory)
	require.True(t, hist.Found)
	require.Len(t, hist.Values, 2)
	assert.Equal(t, String("init"), hist.Values[0].Value)
	assert.Equal(t, String("ready"), hist.Values[1].Value)
}

// --- Events ---

func TestEventAppend_SequencesPerType(t *testing.T) {
	s := newStore(t)

	out := mustExec(t, s, EventAppend{Branch: "default", Space: "default", EventType: "deploy", Payload: Object{"ok": Bool(true)}})
	require.Equal(t, Version{Version: 1}, out)
	out = mustExec(t, s, EventAppend{Branch: "default", Space: "default", EventType: "deploy", Payload: Object{"ok": Bool(false)}})
	require.Equal(t, Version{Version: 2}, out)

	// A different type starts its own sequence.
	out = mustExec(t, s, EventAppend{Branch: "default", Space: "default", EventType: "alert", Payload: Null{}})
	require.Equal(t, Version{Version: 1}, out)
}

func TestEventList_FiltersByTypeAndLimit(t *testing.T) {
	s := newStore(t)
	for i := 0; i < 3; i++ {
		mustExec(t, s, EventAppend{Branch: "default", Space: "default", EventType: "tick", Payload: Int(int64(i))})
	}
	mustExec(t, s, EventAppend{Branch: "default", Space: "default", EventType: "other", Payload: Null{}})

	out := mustExec(t, s, EventList{Branch: "default", Space: "default", EventType: "tick"}).(VersionedValues)
	require.Len(t, out.Values, 3)
	assert.Equal(t, Int(0), out.Values[0].Value)

	limited := mustExec(t, s, EventList{Branch: "default", Space: "default", EventType: "tick", Limit: 2}).(VersionedValues)
	require.Len(t, limited.Values, 2)
}

// --- Spaces ---

func TestSpaceList_DistinctSorted(t *testing.T) {
	s := newStore(t)
	mustExec(t, s, KvPut{Branch: "default", Space: "beta", Key: "k", Value: Int(1)})
	mustExec(t, s, KvPut{Branch: "default", Space: "alpha", Key: "k", Value: Int(1)})
	mustExec(t, s, KvPut{Branch: "default", Space: "alpha", Key: "k2", Value: Int(2)})

	out := mustExec(t, s, SpaceList{Branch: "default"})
	require.Equal(t, SpaceListOut{Spaces: []string{"alpha", "beta"}}, out)
}

func TestSpaceClear_TombstonesEverything(t *testing.T) {
	s := newStore(t)
	mustExec(t, s, KvPut{Branch: "default", Space: "scratch", Key: "a", Value: Int(1)})
	mustExec(t, s, StateSet{Branch: "default", Space: "scratch", Key: "b", Value: Int(2)})
	mustExec(t, s, KvPut{Branch: "default", Space: "keep", Key: "c", Value: Int(3)})

	out := mustExec(t, s, SpaceClear{Branch: "default", Space: "scratch"})
	require.Equal(t, Uint{Value: 2}, out)

	assert.Equal(t, Maybe{}, mustExec(t, s, KvGet{Branch: "default", Space: "scratch", Key: "a"}))
	assert.Equal(t, Maybe{Value: Int(3)}, mustExec(t, s, KvGet{Branch: "default", Space: "keep", Key: "c"}))

	// History survives the clear.
	hist := mustExec(t, s, KvHistory{Branch: "default", Space: "scratch", Key: "a"}).(VersionHistory)
	assert.True(t, hist.Found)
}

// --- Retention ---

func TestRetentionApply_TrimsToKeepCount(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "strata.db"), Options{RetentionKeepVersions: 2})
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	for i := 1; i <= 5; i++ {
		mustExec(t, s, KvPut{Branch: "default", Space: "default", Key: "k", Value: Int(int64(i))})
	}
	mustExec(t, s, RetentionApply{Branch: "default"})

	hist := mustExec(t, s, KvHistory{Branch: "default", Space: "default", Key: "k"}).(VersionHistory)
	require.True(t, hist.Found)
	require.Len(t, hist.Values, 2)
	assert.Equal(t, Int(4), hist.Values[0].Value)
	assert.Equal(t, Int(5), hist.Values[1].Value)

	// Latest value is untouched.
	assert.Equal(t, Maybe{Value: Int(5)}, mustExec(t, s, KvGet{Branch: "default", Space: "default", Key: "k"}))
}

func TestRetentionApply_ZeroKeepIsNoop(t *testing.T) {
	s := newStore(t)
	for i := 1; i <= 3; i++ {
		mustExec(t, s, KvPut{Branch: "default", Space: "default", Key: "k", Value: Int(int64(i))})
	}
	mustExec(t, s, RetentionApply{Branch: "default"})

	hist := mustExec(t, s, KvHistory{Branch: "default", Space: "default", Key: "k"}).(VersionHistory)
	require.Len(t, hist.Values, 3)
}

// --- Info / Ping / TimeRange ---

func TestInfo_CountsLiveKeys(t *testing.T) {
	s := newStore(t)
	mustExec(t, s, KvPut{Branch: "default", Space: "default", Key: "a", Value: Int(1)})
	mustExec(t, s, KvPut{Branch: "default", Space: "default", Key: "b", Value: Int(2)})
	mustExec(t, s, KvDelete{Branch: "default", Space: "default", Key: "b"})
	mustExec(t, s, EventAppend{Branch: "default", Space: "default", EventType: "e", Payload: Null{}})

	info := mustExec(t, s, Info{}).(DatabaseInfo)
	assert.Equal(t, EngineVersion, info.Info.Version)
	assert.Equal(t, uint64(1), info.Info.BranchCount)
	assert.Equal(t, uint64(1), info.Info.TotalKeys, "tombstoned keys and events don't count")
}

func TestPing(t *testing.T) {
	s := newStore(t)
	require.Equal(t, Pong{Version: EngineVersion}, mustExec(t, s, Ping{}))
}

func TestTimeRange_EmptyBranchHasNoWindow(t *testing.T) {
	s := newStore(t)
	out := mustExec(t, s, TimeRange{Branch: "default"}).(TimeRangeOut)
	assert.Nil(t, out.OldestTs)
	assert.Nil(t, out.LatestTs)

	mustExec(t, s, KvPut{Branch: "default", Space: "default", Key: "k", Value: Int(1)})
	out = mustExec(t, s, TimeRange{Branch: "default"}).(TimeRangeOut)
	require.NotNil(t, out.OldestTs)
	require.NotNil(t, out.LatestTs)
	assert.LessOrEqual(t, *out.OldestTs, *out.LatestTs)
}

// --- Durability counters ---

func TestDurabilityCounters_TrackAutocommitWrites(t *testing.T) {
	s := newStore(t)
	mustExec(t, s, KvPut{Branch: "default", Space: "default", Key: "k", Value: String("payload")})

	out := mustExec(t, s, DurabilityCounters{}).(DurabilityCountersOut)
	assert.Equal(t, uint64(1), out.Counters.WalAppends)
	assert.Equal(t, uint64(1), out.Counters.SyncCalls)
	assert.NotZero(t, out.Counters.BytesWritten)
}
