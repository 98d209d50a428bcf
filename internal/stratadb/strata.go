package stratadb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// EngineVersion is reported by Info and Ping.
const EngineVersion = "0.4.0"

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// AccessMode says whether the store accepts writes.
type AccessMode int

// Access modes.
const (
	ReadWrite AccessMode = iota
	ReadOnly
)

// Options configures an opened store.
type Options struct {
	// ReadOnly rejects every write command with ACCESS_DENIED upstream;
	// the engine itself also refuses to open transactions.
	ReadOnly bool
	// ModelsDir is where pulled models land. Defaults to <data dir>/models,
	// or a temp dir for in-memory stores.
	ModelsDir string
	// RetentionKeepVersions bounds per-key history when RetentionApply
	// runs. Zero keeps everything.
	RetentionKeepVersions uint64
}

// Strata is the embedded versioned store. One instance owns one SQLite
// database; access is request-at-a-time, so no internal locking.
type Strata struct {
	db       *sql.DB
	mode     AccessMode
	openedAt time.Time
	opts     Options

	// Open transaction, nil when idle. All statements route through it
	// while it is set.
	tx      *sql.Tx
	txID    string
	txStart uint64

	counters DurabilityCountersData
	embed    embedPipeline
	loaded   map[string]bool
}

// Open opens (or creates) a store at path.
func Open(path string, opts Options) (*Strata, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("stratadb: create data dir: %w", err)
	}
	if opts.ModelsDir == "" {
		opts.ModelsDir = filepath.Join(filepath.Dir(path), "models")
	}
	return open(path, opts)
}

// Cache opens an in-memory store, used by tests and ephemeral sessions.
func Cache() (*Strata, error) {
	return open(":memory:", Options{ModelsDir: filepath.Join(os.TempDir(), "strata-models")})
}

func open(path string, opts Options) (*Strata, error) {
	db, err := openDB("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("stratadb: open database: %w", err)
	}
	// The engine is single-owner; a second connection would only bypass
	// the open-transaction routing.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("stratadb: pragma %q: %w", p, err)
		}
	}

	mode := ReadWrite
	if opts.ReadOnly {
		mode = ReadOnly
	}
	s := &Strata{
		db:       db,
		mode:     mode,
		openedAt: time.Now(),
		opts:     opts,
		loaded:   map[string]bool{},
	}
	s.embed.batchSize = defaultEmbedBatchSize
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("stratadb: migration: %w", err)
	}
	if err := s.loadRuntimeConfig(); err != nil {
		return nil, fmt.Errorf("stratadb: load runtime config: %w", err)
	}
	return s, nil
}

// Close closes the database. An open transaction is rolled back.
func (s *Strata) Close() error {
	if s.tx != nil {
		_ = s.tx.Rollback()
		s.tx = nil
	}
	return s.db.Close()
}

// AccessMode reports whether the store was opened read-only.
func (s *Strata) AccessMode() AccessMode {
	return s.mode
}

// dbq is the subset of database/sql shared by *sql.DB and *sql.Tx; every
// engine query goes through it so open transactions are honored.
type dbq interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

func (s *Strata) q() dbq {
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

func (s *Strata) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS branches (
			id         TEXT PRIMARY KEY,
			status     TEXT NOT NULL DEFAULT 'Active',
			parent_id  TEXT,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS entries (
			id      INTEGER PRIMARY KEY AUTOINCREMENT,
			branch  TEXT    NOT NULL,
			space   TEXT    NOT NULL,
			kind    TEXT    NOT NULL,
			key     TEXT    NOT NULL,
			version INTEGER NOT NULL,
			value   TEXT,
			deleted INTEGER NOT NULL DEFAULT 0,
			ts      INTEGER NOT NULL
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_entries_pk
			ON entries(branch, space, kind, key, version);
		CREATE INDEX IF NOT EXISTS idx_entries_ts
			ON entries(branch, ts);

		CREATE VIRTUAL TABLE IF NOT EXISTS search_fts USING fts5(
			entity,
			content,
			primitive UNINDEXED,
			branch    UNINDEXED,
			space     UNINDEXED
		);

		CREATE TABLE IF NOT EXISTS vector_collections (
			name       TEXT PRIMARY KEY,
			dimension  INTEGER NOT NULL,
			metric     TEXT NOT NULL,
			index_type TEXT NOT NULL DEFAULT 'flat',
			created_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS vectors (
			collection TEXT NOT NULL,
			key        TEXT NOT NULL,
			embedding  TEXT NOT NULL,
			metadata   TEXT,
			version    INTEGER NOT NULL,
			ts         INTEGER NOT NULL,
			PRIMARY KEY (collection, key)
		);

		CREATE TABLE IF NOT EXISTS runtime_config (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	now := nowMicros()
	if _, err := s.db.Exec(
		`INSERT OR IGNORE INTO branches (id, status, created_at, updated_at) VALUES ('default', 'Active', ?, ?)`,
		now, now,
	); err != nil {
		return err
	}
	_, err := s.db.Exec(`INSERT OR IGNORE INTO meta (key, value) VALUES ('commit_version', '0')`)
	return err
}

func nowMicros() uint64 {
	return uint64(time.Now().UnixMicro())
}

// Execute runs one command and returns its output. The Command→Output
// shape mapping is fixed; callers that receive an unexpected shape for a
// known command treat it as an internal error.
func (s *Strata) Execute(cmd Command) (Output, error) {
	switch c := cmd.(type) {
	case Info:
		return s.info()
	case Ping:
		return Pong{Version: EngineVersion}, nil
	case TimeRange:
		return s.timeRange(c)

	case KvPut:
		return s.putValue(kindKV, c.Branch, c.Space, c.Key, c.Value)
	case KvGet:
		return s.getValue(kindKV, c.Branch, c.Space, c.Key, c.AsOf)
	case KvGetVersioned:
		return s.getVersioned(kindKV, c.Branch, c.Space, c.Key, c.AsOf)
	case KvDelete:
		return s.deleteValue(kindKV, c.Branch, c.Space, c.Key)
	case KvHistory:
		return s.history(kindKV, c.Branch, c.Space, c.Key, c.AsOf)
	case KvKeys:
		return s.keys(kindKV, c.Branch, c.Space, c.Prefix)
	case KvBatchPut:
		return s.batchPut(c)

	case StateSet:
		return s.putValue(kindState, c.Branch, c.Space, c.Key, c.Value)
	case StateGet:
		return s.getVersioned(kindState, c.Branch, c.Space, c.Key, c.AsOf)
	case StateHistory:
		return s.history(kindState, c.Branch, c.Space, c.Key, nil)
	case EventAppend:
		return s.eventAppend(c)
	case EventList:
		return s.eventList(c)

	case JsonSet:
		return s.jsonSet(c)
	case JsonGet:
		return s.jsonGet(c)
	case JsonGetv:
		return s.history(kindJSON, c.Branch, c.Space, c.Key, c.AsOf)
	case JsonDelete:
		return s.jsonDelete(c)
	case JsonList:
		return s.jsonList(c)

	case SpaceList:
		return s.spaceList(c)
	case SpaceClear:
		return s.spaceClear(c)

	case BranchCreate:
		return s.branchCreate(c)
	case BranchExists:
		return s.branchExistsCmd(c)
	case BranchGet:
		return s.branchGet(c)
	case BranchList:
		return s.branchList(c)
	case BranchDelete:
		return s.branchDelete(c)

	case TxnBegin:
		return s.txnBegin()
	case TxnCommit:
		return s.txnCommit()
	case TxnAbort:
		return s.txnAbort()
	case TxnStatus:
		return s.txnStatus()

	case Search:
		return s.search(c)

	case BundleExport:
		return s.bundleExport(c)
	case BundleImport:
		return s.bundleImport(c)
	case BundleValidate:
		return s.bundleValidate(c)

	case RetentionApply:
		return s.retentionApply(c)

	case ConfigGet:
		return s.configGet()
	case ConfigSetDurability:
		return s.configSetDurability(c)
	case ConfigSetAutoEmbed:
		return s.configSetAutoEmbed(c)
	case ConfigSetModel:
		return s.configSetModel(c)

	case Embed:
		return s.embedOne(c)
	case EmbedBatch:
		return s.embedBatch(c)
	case EmbedStatus:
		return s.embedStatus()

	case Generate:
		return s.generate(c)
	case Tokenize:
		return s.tokenize(c)
	case Detokenize:
		return s.detokenize(c)
	case GenerateUnload:
		return s.generateUnload(c)

	case ModelsList:
		return s.modelsList(false)
	case ModelsLocal:
		return s.modelsList(true)
	case ModelsPull:
		return s.modelsPull(c)

	case DurabilityCounters:
		return DurabilityCountersOut{Counters: s.counters}, nil

	case VectorCreateCollection:
		return s.vectorCreateCollection(c)
	case VectorCollections:
		return s.vectorCollections()
	case VectorDropCollection:
		return s.vectorDropCollection(c)
	case VectorUpsert:
		return s.vectorUpsert(c)
	case VectorGet:
		return s.vectorGet(c)
	case VectorDelete:
		return s.vectorDelete(c)
	case VectorSearch:
		return s.vectorSearch(c)

	default:
		return nil, storeErrf(CodeInternal, "unhandled command %T", cmd)
	}
}

func (s *Strata) info() (Output, error) {
	var branchCount, totalKeys uint64
	if err := s.q().QueryRow(`SELECT COUNT(*) FROM branches WHERE status = 'Active'`).Scan(&branchCount); err != nil {
		return nil, wrapSQL(err)
	}
	err := s.q().QueryRow(`
		SELECT COUNT(*) FROM entries e
		WHERE kind != 'event' AND deleted = 0
		  AND version = (
			SELECT MAX(version) FROM entries
			WHERE branch = e.branch AND space = e.space AND kind = e.kind AND key = e.key
		  )`).Scan(&totalKeys)
	if err != nil {
		return nil, wrapSQL(err)
	}
	return DatabaseInfo{Info: DatabaseInfoData{
		Version:     EngineVersion,
		UptimeSecs:  uint64(time.Since(s.openedAt).Seconds()),
		BranchCount: branchCount,
		TotalKeys:   totalKeys,
	}}, nil
}

func (s *Strata) timeRange(c TimeRange) (Output, error) {
	var oldest, latest sql.NullInt64
	err := s.q().QueryRow(
		`SELECT MIN(ts), MAX(ts) FROM entries WHERE branch = ?`, c.Branch,
	).Scan(&oldest, &latest)
	if err != nil {
		return nil, wrapSQL(err)
	}
	out := TimeRangeOut{}
	if oldest.Valid {
		v := uint64(oldest.Int64)
		out.OldestTs = &v
	}
	if latest.Valid {
		v := uint64(latest.Int64)
		out.LatestTs = &v
	}
	return out, nil
}

func wrapSQL(err error) error {
	if err == nil {
		return nil
	}
	if se, ok := err.(*StoreError); ok {
		return se
	}
	return &StoreError{Code: CodeIO, Message: err.Error()}
}
