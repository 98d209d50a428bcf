package stratadb

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
)

// bundleFormatVersion is the on-disk JSONL bundle format.
const bundleFormatVersion = 1

// bundleHeader is the first line of a bundle file.
type bundleHeader struct {
	FormatVersion uint64 `json:"format_version"`
	Branch        string `json:"branch"`
	EntryCount    uint64 `json:"entry_count"`
}

// bundleEntry is one entry line of a bundle file.
type bundleEntry struct {
	Space   string          `json:"space"`
	Kind    string          `json:"kind"`
	Key     string          `json:"key"`
	Version uint64          `json:"version"`
	Value   json.RawMessage `json:"value,omitempty"`
	Deleted bool            `json:"deleted,omitempty"`
	Ts      uint64          `json:"ts"`
}

// bundleTrailer is the last line: a checksum of every preceding line.
type bundleTrailer struct {
	Checksum string `json:"checksum"`
}

func (s *Strata) bundleExport(c BundleExport) (Output, error) {
	exists, err := s.branchExists(c.Branch)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, storeErrf(CodeBranchNotFound, "branch %q does not exist", c.Branch)
	}

	rows, err := s.q().Query(`
		SELECT space, kind, key, version, value, deleted, ts FROM entries
		WHERE branch = ? ORDER BY id ASC`, c.Branch)
	if err != nil {
		return nil, wrapSQL(err)
	}
	defer rows.Close()

	var entries []bundleEntry
	for rows.Next() {
		var e bundleEntry
		var value *string
		var deleted int
		if err := rows.Scan(&e.Space, &e.Kind, &e.Key, &e.Version, &value, &deleted, &e.Ts); err != nil {
			return nil, wrapSQL(err)
		}
		if value != nil {
			e.Value = json.RawMessage(*value)
		}
		e.Deleted = deleted != 0
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapSQL(err)
	}

	f, err := os.Create(c.Path)
	if err != nil {
		return nil, storeErrf(CodeIO, "create bundle: %v", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	hash := sha256.New()
	writeLine := func(v any) error {
		line, err := json.Marshal(v)
		if err != nil {
			return storeErrf(CodeInternal, "encode bundle line: %v", err)
		}
		line = append(line, '\n')
		hash.Write(line)
		if _, err := w.Write(line); err != nil {
			return storeErrf(CodeIO, "write bundle: %v", err)
		}
		return nil
	}

	if err := writeLine(bundleHeader{
		FormatVersion: bundleFormatVersion,
		Branch:        c.Branch,
		EntryCount:    uint64(len(entries)),
	}); err != nil {
		return nil, err
	}
	for _, e := range entries {
		if err := writeLine(e); err != nil {
			return nil, err
		}
	}

	trailer, err := json.Marshal(bundleTrailer{Checksum: hex.EncodeToString(hash.Sum(nil))})
	if err != nil {
		return nil, storeErrf(CodeInternal, "encode bundle trailer: %v", err)
	}
	if _, err := w.Write(append(trailer, '\n')); err != nil {
		return nil, storeErrf(CodeIO, "write bundle: %v", err)
	}
	if err := w.Flush(); err != nil {
		return nil, storeErrf(CodeIO, "write bundle: %v", err)
	}

	st, err := f.Stat()
	if err != nil {
		return nil, storeErrf(CodeIO, "stat bundle: %v", err)
	}
	return BranchExported{
		BranchID:   c.Branch,
		Path:       c.Path,
		EntryCount: uint64(len(entries)),
		BundleSize: uint64(st.Size()),
	}, nil
}

// readBundle parses and checksum-verifies a bundle file.
func readBundle(path string) (bundleHeader, []bundleEntry, error) {
	var hdr bundleHeader
	f, err := os.Open(path)
	if err != nil {
		return hdr, nil, storeErrf(CodeIO, "open bundle: %v", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	hash := sha256.New()
	var entries []bundleEntry
	var trailer *bundleTrailer
	first := true
	for scanner.Scan() {
		line := scanner.Bytes()
		if trailer != nil {
			return hdr, nil, storeErrf(CodeBundleCorrupt, "data after checksum trailer")
		}
		if first {
			if err := json.Unmarshal(line, &hdr); err != nil {
				return hdr, nil, storeErrf(CodeBundleCorrupt, "bad bundle header: %v", err)
			}
			if hdr.FormatVersion != bundleFormatVersion {
				return hdr, nil, storeErrf(CodeBundleCorrupt,
					"unsupported bundle format version %d", hdr.FormatVersion)
			}
			hash.Write(append(append([]byte{}, line...), '\n'))
			first = false
			continue
		}
		var t bundleTrailer
		if err := json.Unmarshal(line, &t); err == nil && t.Checksum != "" {
			trailer = &t
			continue
		}
		var e bundleEntry
		if err := json.Unmarshal(line, &e); err != nil {
			return hdr, nil, storeErrf(CodeBundleCorrupt, "bad bundle entry: %v", err)
		}
		entries = append(entries, e)
		hash.Write(append(append([]byte{}, line...), '\n'))
	}
	if err := scanner.Err(); err != nil {
		return hdr, nil, storeErrf(CodeIO, "read bundle: %v", err)
	}
	if first {
		return hdr, nil, storeErrf(CodeBundleCorrupt, "empty bundle")
	}
	if trailer == nil {
		return hdr, nil, storeErrf(CodeBundleCorrupt, "missing checksum trailer")
	}
	if got := hex.EncodeToString(hash.Sum(nil)); got != trailer.Checksum {
		return hdr, nil, storeErrf(CodeBundleCorrupt, "checksum mismatch")
	}
	if uint64(len(entries)) != hdr.EntryCount {
		return hdr, nil, storeErrf(CodeBundleCorrupt,
			"header says %d entries, found %d", hdr.EntryCount, len(entries))
	}
	return hdr, entries, nil
}

func (s *Strata) bundleImport(c BundleImport) (Output, error) {
	_, entries, err := readBundle(c.Path)
	if err != nil {
		return nil, err
	}

	branch := c.Branch
	exists, err := s.branchExists(branch)
	if err != nil {
		return nil, err
	}
	if !exists {
		if _, err := s.branchCreate(BranchCreate{BranchID: branch}); err != nil {
			return nil, err
		}
	}

	var written uint64
	for _, e := range entries {
		if e.Deleted {
			if _, _, err := s.appendEntry(e.Kind, branch, e.Space, e.Key, nil, true); err != nil {
				return nil, err
			}
			continue
		}
		v, err := DecodeValue(e.Value)
		if err != nil {
			return nil, storeErrf(CodeBundleCorrupt, "bad value for key %q: %v", e.Key, err)
		}
		if _, _, err := s.appendEntry(e.Kind, branch, e.Space, e.Key, v, false); err != nil {
			return nil, err
		}
		written++
	}
	return BranchImported{
		BranchID:            branch,
		TransactionsApplied: uint64(len(entries)),
		KeysWritten:         written,
	}, nil
}

func (s *Strata) bundleValidate(c BundleValidate) (Output, error) {
	hdr, _, err := readBundle(c.Path)
	if err != nil {
		return nil, err
	}
	return BundleValidated{
		BranchID:       hdr.Branch,
		FormatVersion:  hdr.FormatVersion,
		EntryCount:     hdr.EntryCount,
		ChecksumsValid: true,
	}, nil
}
