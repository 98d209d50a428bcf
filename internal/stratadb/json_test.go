package stratadb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		path string
		want []pathSegment
		ok   bool
	}{
		{"$", nil, true},
		{"", nil, true},
		{"$.a", []pathSegment{{Key: "a"}}, true},
		{"$.a.b", []pathSegment{{Key: "a"}, {Key: "b"}}, true},
		{"$.a[2].b", []pathSegment{{Key: "a"}, {Index: 2, IsIndex: true}, {Key: "b"}}, true},
		{"$[0]", []pathSegment{{Index: 0, IsIndex: true}}, true},
		{"a.b", nil, false},
		{"$.", nil, false},
		{"$.a[", nil, false},
		{"$.a[-1]", nil, false},
		{"$.a[x]", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := parsePath(tt.path)
			if !tt.ok {
				require.Error(t, err)
				assert.Equal(t, CodeInvalidPath, err.(*StoreError).Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJsonSet_WholeDocumentAndNestedField(t *testing.T) {
	s := newStore(t)

	out := mustExec(t, s, JsonSet{Branch: "default", Space: "default", Key: "doc", Path: "$", Value: Object{"a": Int(1)}})
	require.Equal(t, Version{Version: 1}, out)

	// Nested set creates intermediate objects and bumps the version.
	out = mustExec(t, s, JsonSet{Branch: "default", Space: "default", Key: "doc", Path: "$.b.c", Value: String("deep")})
	require.Equal(t, Version{Version: 2}, out)

	got := mustExec(t, s, JsonGet{Branch: "default", Space: "default", Key: "doc", Path: "$"}).(MaybeVersioned)
	require.NotNil(t, got.Value)
	assert.Equal(t, Object{"a": Int(1), "b": Object{"c": String("deep")}}, got.Value.Value)
	assert.Equal(t, uint64(2), got.Value.Version)
}

func TestJsonSet_NestedOnAbsentKeyStartsEmptyObject(t *testing.T) {
	s := newStore(t)
	mustExec(t, s, JsonSet{Branch: "default", Space: "default", Key: "fresh", Path: "$.x", Value: Int(5)})

	got := mustExec(t, s, JsonGet{Branch: "default", Space: "default", Key: "fresh", Path: "$"}).(MaybeVersioned)
	require.NotNil(t, got.Value)
	assert.Equal(t, Object{"x": Int(5)}, got.Value.Value)
}

func TestJsonSet_ArrayIndexOutOfRangeFails(t *testing.T) {
	s := newStore(t)
	mustExec(t, s, JsonSet{Branch: "default", Space: "default", Key: "doc", Path: "$", Value: Object{"list": Array{Int(1)}}})

	_, err := s.Execute(JsonSet{Branch: "default", Space: "default", Key: "doc", Path: "$.list[5]", Value: Int(9)})
	require.Error(t, err)
	assert.Equal(t, CodeInvalidPath, err.(*StoreError).Code)
}

func TestJsonGet_PathResolution(t *testing.T) {
	s := newStore(t)
	mustExec(t, s, JsonSet{Branch: "default", Space: "default", Key: "doc", Path: "$", Value: Object{
		"items": Array{Object{"name": String("first")}, Object{"name": String("second")}},
	}})

	got := mustExec(t, s, JsonGet{Branch: "default", Space: "default", Key: "doc", Path: "$.items[1].name"}).(MaybeVersioned)
	require.NotNil(t, got.Value)
	assert.Equal(t, String("second"), got.Value.Value)

	// Missing path is absent, not an error.
	missing := mustExec(t, s, JsonGet{Branch: "default", Space: "default", Key: "doc", Path: "$.items[9]"}).(MaybeVersioned)
	assert.Nil(t, missing.Value)
}

func TestJsonDelete_FieldVsDocument(t *testing.T) {
	s := newStore(t)
	mustExec(t, s, JsonSet{Branch: "default", Space: "default", Key: "doc", Path: "$", Value: Object{"keep": Int(1), "drop": Int(2)}})

	out := mustExec(t, s, JsonDelete{Branch: "default", Space: "default", Key: "doc", Path: "$.drop"})
	require.Equal(t, Uint{Value: 1}, out)

	got := mustExec(t, s, JsonGet{Branch: "default", Space: "default", Key: "doc", Path: "$"}).(MaybeVersioned)
	require.NotNil(t, got.Value)
	assert.Equal(t, Object{"keep": Int(1)}, got.Value.Value)

	// Removing an absent field deletes nothing.
	out = mustExec(t, s, JsonDelete{Branch: "default", Space: "default", Key: "doc", Path: "$.ghost"})
	require.Equal(t, Uint{Value: 0}, out)

	// "$" tombstones the whole document; history survives.
	out = mustExec(t, s, JsonDelete{Branch: "default", Space: "default", Key: "doc", Path: "$"})
	require.Equal(t, Uint{Value: 1}, out)
	gone := mustExec(t, s, JsonGet{Branch: "default", Space: "default", Key: "doc", Path: "$"}).(MaybeVersioned)
	assert.Nil(t, gone.Value)

	hist := mustExec(t, s, JsonGetv{Branch: "default", Space: "default", Key: "doc"}).(VersionHistory)
	assert.True(t, hist.Found)
	assert.Len(t, hist.Values, 2)
}

func TestJsonList_PagesWithCursor(t *testing.T) {
	s := newStore(t)
	for _, k := range []string{"a", "b", "c", "d", "e"} {
		mustExec(t, s, JsonSet{Branch: "default", Space: "default", Key: k, Path: "$", Value: Int(1)})
	}

	page1 := mustExec(t, s, JsonList{Branch: "default", Space: "default", Limit: 2}).(JsonListResult)
	require.Equal(t, []string{"a", "b"}, page1.Keys)
	require.Equal(t, "b", page1.Cursor)

	page2 := mustExec(t, s, JsonList{Branch: "default", Space: "default", Limit: 2, Cursor: page1.Cursor}).(JsonListResult)
	require.Equal(t, []string{"c", "d"}, page2.Keys)
	require.Equal(t, "d", page2.Cursor)

	page3 := mustExec(t, s, JsonList{Branch: "default", Space: "default", Limit: 2, Cursor: page2.Cursor}).(JsonListResult)
	require.Equal(t, []string{"e"}, page3.Keys)
	assert.Empty(t, page3.Cursor, "last page carries no cursor")
}
