package stratadb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBundle_ExportImportRoundTrip(t *testing.T) {
	s := newStore(t)
	mustExec(t, s, KvPut{Branch: "default", Space: "default", Key: "k", Value: Int(1)})
	mustExec(t, s, KvPut{Branch: "default", Space: "default", Key: "k", Value: Int(2)})
	mustExec(t, s, KvPut{Branch: "default", Space: "default", Key: "gone", Value: String("bye")})
	mustExec(t, s, KvDelete{Branch: "default", Space: "default", Key: "gone"})
	mustExec(t, s, JsonSet{Branch: "default", Space: "docs", Key: "doc", Path: "$", Value: Object{"a": Int(1)}})

	path := filepath.Join(t.TempDir(), "default.bundle")
	exported := mustExec(t, s, BundleExport{Branch: "default", Path: path}).(BranchExported)
	assert.Equal(t, "default", exported.BranchID)
	assert.Equal(t, uint64(6), exported.EntryCount, "every version including tombstones")
	assert.NotZero(t, exported.BundleSize)

	imported := mustExec(t, s, BundleImport{Branch: "restored", Path: path}).(BranchImported)
	assert.Equal(t, "restored", imported.BranchID)
	assert.Equal(t, uint64(6), imported.TransactionsApplied)
	assert.Equal(t, uint64(5), imported.KeysWritten, "tombstones don't count as written keys")

	// The restored branch replays to the same live view and history.
	assert.Equal(t, Maybe{Value: Int(2)}, mustExec(t, s, KvGet{Branch: "restored", Space: "default", Key: "k"}))
	assert.Equal(t, Maybe{}, mustExec(t, s, KvGet{Branch: "restored", Space: "default", Key: "gone"}))
	hist := mustExec(t, s, KvHistory{Branch: "restored", Space: "default", Key: "k"}).(VersionHistory)
	require.Len(t, hist.Values, 2)
	doc := mustExec(t, s, JsonGet{Branch: "restored", Space: "docs", Key: "doc", Path: "$"}).(MaybeVersioned)
	require.NotNil(t, doc.Value)
	assert.Equal(t, Object{"a": Int(1)}, doc.Value.Value)
}

func TestBundleValidate(t *testing.T) {
	s := newStore(t)
	mustExec(t, s, KvPut{Branch: "default", Space: "default", Key: "k", Value: Int(1)})

	path := filepath.Join(t.TempDir(), "b.bundle")
	mustExec(t, s, BundleExport{Branch: "default", Path: path})

	out := mustExec(t, s, BundleValidate{Path: path}).(BundleValidated)
	assert.Equal(t, "default", out.BranchID)
	assert.Equal(t, uint64(bundleFormatVersion), out.FormatVersion)
	assert.Equal(t, uint64(1), out.EntryCount)
	assert.True(t, out.ChecksumsValid)
}

func TestBundleExport_MissingBranchFails(t *testing.T) {
	s := newStore(t)
	_, err := s.Execute(BundleExport{Branch: "ghost", Path: filepath.Join(t.TempDir(), "x")})
	require.Error(t, err)
	assert.Equal(t, CodeBranchNotFound, err.(*StoreError).Code)
}

func TestBundleValidate_DetectsTampering(t *testing.T) {
	s := newStore(t)
	mustExec(t, s, KvPut{Branch: "default", Space: "default", Key: "k", Value: String("payload")})

	path := filepath.Join(t.TempDir(), "b.bundle")
	mustExec(t, s, BundleExport{Branch: "default", Path: path})

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	tampered := []byte(string(data))
	for i, b := range tampered {
		if b == 'p' { // flip a byte inside the entry payload
			tampered[i] = 'q'
			break
		}
	}
	require.NoError(t, os.WriteFile(path, tampered, 0o644))

	_, err = s.Execute(BundleValidate{Path: path})
	require.Error(t, err)
	assert.Equal(t, CodeBundleCorrupt, err.(*StoreError).Code)
}

func TestBundleValidate_RejectsGarbageAndEmpty(t *testing.T) {
	s := newStore(t)
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.bundle")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err := s.Execute(BundleValidate{Path: empty})
	require.Error(t, err)
	assert.Equal(t, CodeBundleCorrupt, err.(*StoreError).Code)

	garbage := filepath.Join(dir, "garbage.bundle")
	require.NoError(t, os.WriteFile(garbage, []byte("not json\n"), 0o644))
	_, err = s.Execute(BundleValidate{Path: garbage})
	require.Error(t, err)
	assert.Equal(t, CodeBundleCorrupt, err.(*StoreError).Code)

	_, err = s.Execute(BundleValidate{Path: filepath.Join(dir, "missing.bundle")})
	require.Error(t, err)
	assert.Equal(t, CodeIO, err.(*StoreError).Code)
}
