package stratadb

import (
	"fmt"
	"strconv"
	"strings"
)

// pathSegment addresses one step into a document: an object key or an
// array index.
type pathSegment struct {
	Key     string
	Index   int
	IsIndex bool
}

// parsePath parses the supported JSONPath subset: "$", "$.a.b", "$.a[0].b".
func parsePath(path string) ([]pathSegment, error) {
	if path == "" || path == "$" {
		return nil, nil
	}
	if !strings.HasPrefix(path, "$.") && !strings.HasPrefix(path, "$[") {
		return nil, storeErrf(CodeInvalidPath, "path must start with '$': %q", path)
	}

	var segs []pathSegment
	rest := path[1:]
	for rest != "" {
		switch rest[0] {
		case '.':
			rest = rest[1:]
			end := strings.IndexAny(rest, ".[")
			if end == -1 {
				end = len(rest)
			}
			if end == 0 {
				return nil, storeErrf(CodeInvalidPath, "empty segment in path %q", path)
			}
			segs = append(segs, pathSegment{Key: rest[:end]})
			rest = rest[end:]
		case '[':
			closing := strings.IndexByte(rest, ']')
			if closing == -1 {
				return nil, storeErrf(CodeInvalidPath, "unterminated index in path %q", path)
			}
			idx, err := strconv.Atoi(rest[1:closing])
			if err != nil || idx < 0 {
				return nil, storeErrf(CodeInvalidPath, "bad array index in path %q", path)
			}
			segs = append(segs, pathSegment{Index: idx, IsIndex: true})
			rest = rest[closing+1:]
		default:
			return nil, storeErrf(CodeInvalidPath, "unexpected %q in path %q", rest[0], path)
		}
	}
	return segs, nil
}

// pathGet resolves a path inside a value. Missing steps resolve to
// (nil, false) rather than an error: absent is a normal read result.
func pathGet(v Value, segs []pathSegment) (Value, bool) {
	cur := v
	for _, seg := range segs {
		if seg.IsIndex {
			arr, ok := cur.(Array)
			if !ok || seg.Index >= len(arr) {
				return nil, false
			}
			cur = arr[seg.Index]
			continue
		}
		obj, ok := cur.(Object)
		if !ok {
			return nil, false
		}
		child, ok := obj[seg.Key]
		if !ok {
			return nil, false
		}
		cur = child
	}
	return cur, true
}

// pathSet writes a value at a path, creating intermediate objects for
// missing keys. Array steps must already exist; the engine does not
// invent list elements.
func pathSet(root Value, segs []pathSegment, v Value) (Value, error) {
	if len(segs) == 0 {
		return v, nil
	}
	seg := segs[0]
	if seg.IsIndex {
		arr, ok := root.(Array)
		if !ok {
			return nil, storeErrf(CodeInvalidPath, "cannot index into %s", typeName(root))
		}
		if seg.Index >= len(arr) {
			return nil, storeErrf(CodeInvalidPath, "index %d out of range (len %d)", seg.Index, len(arr))
		}
		child, err := pathSet(arr[seg.Index], segs[1:], v)
		if err != nil {
			return nil, err
		}
		out := make(Array, len(arr))
		copy(out, arr)
		out[seg.Index] = child
		return out, nil
	}

	obj, ok := root.(Object)
	if !ok {
		obj = Object{}
	}
	child, err := pathSet(obj[seg.Key], segs[1:], v)
	if err != nil {
		return nil, err
	}
	out := make(Object, len(obj)+1)
	for k, e := range obj {
		out[k] = e
	}
	out[seg.Key] = child
	return out, nil
}

// pathDelete removes the field or element a path names. The second
// return reports whether anything was removed.
func pathDelete(root Value, segs []pathSegment) (Value, bool, error) {
	if len(segs) == 0 {
		return nil, false, storeErrf(CodeInvalidPath, "cannot delete the document root by path")
	}
	seg := segs[0]
	if len(segs) == 1 {
		if seg.IsIndex {
			arr, ok := root.(Array)
			if !ok || seg.Index >= len(arr) {
				return root, false, nil
			}
			out := make(Array, 0, len(arr)-1)
			out = append(out, arr[:seg.Index]...)
			out = append(out, arr[seg.Index+1:]...)
			return out, true, nil
		}
		obj, ok := root.(Object)
		if !ok {
			return root, false, nil
		}
		if _, exists := obj[seg.Key]; !exists {
			return root, false, nil
		}
		out := make(Object, len(obj))
		for k, e := range obj {
			if k != seg.Key {
				out[k] = e
			}
		}
		return out, true, nil
	}

	child, ok := pathGet(root, segs[:1])
	if !ok {
		return root, false, nil
	}
	newChild, removed, err := pathDelete(child, segs[1:])
	if err != nil || !removed {
		return root, removed, err
	}
	out, err := pathSet(root, segs[:1], newChild)
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}

func typeName(v Value) string {
	switch v.(type) {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Float:
		return "float"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// ── JSON document commands ───────────────────────────────────────────────

func (s *Strata) jsonSet(c JsonSet) (Output, error) {
	segs, err := parsePath(c.Path)
	if err != nil {
		return nil, err
	}

	doc := c.Value
	if len(segs) > 0 {
		cur, _, err := s.latestEntry(kindJSON, c.Branch, c.Space, c.Key, nil)
		if err != nil {
			return nil, err
		}
		var base Value = Object{}
		if cur != nil {
			base = cur.Value
		}
		doc, err = pathSet(base, segs, c.Value)
		if err != nil {
			return nil, err
		}
	}
	return s.putValue(kindJSON, c.Branch, c.Space, c.Key, doc)
}

func (s *Strata) jsonGet(c JsonGet) (Output, error) {
	segs, err := parsePath(c.Path)
	if err != nil {
		return nil, err
	}
	vv, _, err := s.latestEntry(kindJSON, c.Branch, c.Space, c.Key, c.AsOf)
	if err != nil {
		return nil, err
	}
	if vv == nil {
		return MaybeVersioned{}, nil
	}
	if len(segs) > 0 {
		sub, ok := pathGet(vv.Value, segs)
		if !ok {
			return MaybeVersioned{}, nil
		}
		return MaybeVersioned{Value: &VersionedValue{
			Value: sub, Version: vv.Version, Timestamp: vv.Timestamp,
		}}, nil
	}
	return MaybeVersioned{Value: vv}, nil
}

func (s *Strata) jsonDelete(c JsonDelete) (Output, error) {
	segs, err := parsePath(c.Path)
	if err != nil {
		return nil, err
	}
	if len(segs) == 0 {
		return s.deleteValue(kindJSON, c.Branch, c.Space, c.Key)
	}

	vv, _, err := s.latestEntry(kindJSON, c.Branch, c.Space, c.Key, nil)
	if err != nil {
		return nil, err
	}
	if vv == nil {
		return Uint{Value: 0}, nil
	}
	doc, removed, err := pathDelete(vv.Value, segs)
	if err != nil {
		return nil, err
	}
	if !removed {
		return Uint{Value: 0}, nil
	}
	if _, _, err := s.appendEntry(kindJSON, c.Branch, c.Space, c.Key, doc, false); err != nil {
		return nil, err
	}
	return Uint{Value: 1}, nil
}

func (s *Strata) jsonList(c JsonList) (Output, error) {
	limit := c.Limit
	if limit == 0 {
		limit = 100
	}
	// Fetch one past the page to know whether a cursor is needed.
	keys, err := s.liveKeys(kindJSON, c.Branch, c.Space, c.Prefix, c.Cursor, limit+1)
	if err != nil {
		return nil, err
	}
	out := JsonListResult{Keys: keys}
	if uint64(len(keys)) > limit {
		out.Keys = keys[:limit]
		out.Cursor = keys[limit-1]
	}
	return out, nil
}
