package stratadb

// Command is the typed request algebra executed against the store.
// Every command knows its wire name and whether it mutates state; the
// write predicate is what the session's read-only guard keys off.
type Command interface {
	Name() string
	IsWrite() bool
}

// ── Database ─────────────────────────────────────────────────────────────

// Info requests database-level introspection.
type Info struct{}

// Ping is a liveness check.
type Ping struct{}

// TimeRange requests the oldest and latest write timestamps on a branch.
type TimeRange struct {
	Branch string
}

func (Info) Name() string       { return "Info" }
func (Info) IsWrite() bool      { return false }
func (Ping) Name() string       { return "Ping" }
func (Ping) IsWrite() bool      { return false }
func (TimeRange) Name() string  { return "TimeRange" }
func (TimeRange) IsWrite() bool { return false }

// ── Key-value ────────────────────────────────────────────────────────────

// KvPut stores a value under a key, producing a new version.
type KvPut struct {
	Branch, Space, Key string
	Value              Value
}

// KvGet reads the latest value for a key, or its value as of a timestamp.
type KvGet struct {
	Branch, Space, Key string
	AsOf               *uint64
}

// KvGetVersioned reads the latest value with version metadata.
type KvGetVersioned struct {
	Branch, Space, Key string
	AsOf               *uint64
}

// KvDelete writes a tombstone for a key. History survives deletion.
type KvDelete struct {
	Branch, Space, Key string
}

// KvHistory lists every recorded version of a key.
type KvHistory struct {
	Branch, Space, Key string
	AsOf               *uint64
}

// KvKeys lists live keys, optionally filtered by prefix.
type KvKeys struct {
	Branch, Space, Prefix string
}

// BatchEntry is one key/value pair in a batch put.
type BatchEntry struct {
	Key   string
	Value Value
}

// KvBatchPut stores several keys in one call. Items succeed or fail
// independently; the result reports a version or error per item.
type KvBatchPut struct {
	Branch, Space string
	Entries       []BatchEntry
}

func (KvPut) Name() string            { return "KvPut" }
func (KvPut) IsWrite() bool           { return true }
func (KvGet) Name() string            { return "KvGet" }
func (KvGet) IsWrite() bool           { return false }
func (KvGetVersioned) Name() string   { return "KvGetVersioned" }
func (KvGetVersioned) IsWrite() bool  { return false }
func (KvDelete) Name() string         { return "KvDelete" }
func (KvDelete) IsWrite() bool        { return true }
func (KvHistory) Name() string        { return "KvHistory" }
func (KvHistory) IsWrite() bool       { return false }
func (KvKeys) Name() string           { return "KvKeys" }
func (KvKeys) IsWrite() bool          { return false }
func (KvBatchPut) Name() string       { return "KvBatchPut" }
func (KvBatchPut) IsWrite() bool      { return true }

// ── State cells ──────────────────────────────────────────────────────────

// StateSet writes a state cell. Same versioning as KV, separate namespace.
type StateSet struct {
	Branch, Space, Key string
	Value              Value
}

// StateGet reads the current state cell value.
type StateGet struct {
	Branch, Space, Key string
	AsOf               *uint64
}

// StateHistory lists every recorded version of a state cell.
type StateHistory struct {
	Branch, Space, Key string
}

func (StateSet) Name() string      { return "StateSet" }
func (StateSet) IsWrite() bool     { return true }
func (StateGet) Name() string      { return "StateGet" }
func (StateGet) IsWrite() bool     { return false }
func (StateHistory) Name() string  { return "StateHistory" }
func (StateHistory) IsWrite() bool { return false }

// ── Events ───────────────────────────────────────────────────────────────

// EventAppend appends an immutable event under a type tag. Events have a
// per-type sequence number and can never be overwritten or deleted.
type EventAppend struct {
	Branch, Space, EventType string
	Payload                  Value
}

// EventList reads events for a type, oldest first.
type EventList struct {
	Branch, Space, EventType string
	Limit                    uint64
}

func (EventAppend) Name() string  { return "EventAppend" }
func (EventAppend) IsWrite() bool { return true }
func (EventList) Name() string    { return "EventList" }
func (EventList) IsWrite() bool   { return false }

// ── JSON documents ───────────────────────────────────────────────────────

// JsonSet stores a JSON document, or updates a nested field when Path
// targets one ("$" replaces the whole document).
type JsonSet struct {
	Branch, Space, Key, Path string
	Value                    Value
}

// JsonGet reads a document or a nested field, optionally as of a
// past timestamp.
type JsonGet struct {
	Branch, Space, Key, Path string
	AsOf                     *uint64
}

// JsonGetv lists the full version history of a document.
type JsonGetv struct {
	Branch, Space, Key string
	AsOf               *uint64
}

// JsonDelete deletes a document ("$") or removes a nested field.
type JsonDelete struct {
	Branch, Space, Key, Path string
}

// JsonList pages through document keys with an opaque cursor.
type JsonList struct {
	Branch, Space, Prefix string
	Limit                 uint64
	Cursor                string
}

func (JsonSet) Name() string     { return "JsonSet" }
func (JsonSet) IsWrite() bool    { return true }
func (JsonGet) Name() string     { return "JsonGet" }
func (JsonGet) IsWrite() bool    { return false }
func (JsonGetv) Name() string    { return "JsonGetv" }
func (JsonGetv) IsWrite() bool   { return false }
func (JsonDelete) Name() string  { return "JsonDelete" }
func (JsonDelete) IsWrite() bool { return true }
func (JsonList) Name() string    { return "JsonList" }
func (JsonList) IsWrite() bool   { return false }

// ── Spaces ───────────────────────────────────────────────────────────────

// SpaceList lists the spaces that hold data on a branch.
type SpaceList struct {
	Branch string
}

// SpaceClear deletes all live keys in a space (tombstones, not erasure).
type SpaceClear struct {
	Branch, Space string
}

func (SpaceList) Name() string    { return "SpaceList" }
func (SpaceList) IsWrite() bool   { return false }
func (SpaceClear) Name() string   { return "SpaceClear" }
func (SpaceClear) IsWrite() bool  { return true }

// ── Branches ─────────────────────────────────────────────────────────────

// BranchCreate creates an empty branch. An empty BranchID asks the store
// to generate one.
type BranchCreate struct {
	BranchID string
}

// BranchExists checks whether a branch exists. Never mutates.
type BranchExists struct {
	Branch string
}

// BranchGet reads one branch's info.
type BranchGet struct {
	Branch string
}

// BranchList lists branches, optionally filtered by status.
type BranchList struct {
	Status string
	Limit  uint64
}

// BranchDelete removes a branch and all of its data.
type BranchDelete struct {
	Branch string
}

func (BranchCreate) Name() string  { return "BranchCreate" }
func (BranchCreate) IsWrite() bool { return true }
func (BranchExists) Name() string  { return "BranchExists" }
func (BranchExists) IsWrite() bool { return false }
func (BranchGet) Name() string     { return "BranchGet" }
func (BranchGet) IsWrite() bool    { return false }
func (BranchList) Name() string    { return "BranchList" }
func (BranchList) IsWrite() bool   { return false }
func (BranchDelete) Name() string  { return "BranchDelete" }
func (BranchDelete) IsWrite() bool { return true }

// ── Transactions ─────────────────────────────────────────────────────────

// TxnBegin opens a transaction on the store connection.
type TxnBegin struct{}

// TxnCommit commits the open transaction.
type TxnCommit struct{}

// TxnAbort rolls back the open transaction.
type TxnAbort struct{}

// TxnStatus reports the open transaction, if any.
type TxnStatus struct{}

func (TxnBegin) Name() string    { return "TxnBegin" }
func (TxnBegin) IsWrite() bool   { return true }
func (TxnCommit) Name() string   { return "TxnCommit" }
func (TxnCommit) IsWrite() bool  { return true }
func (TxnAbort) Name() string    { return "TxnAbort" }
func (TxnAbort) IsWrite() bool   { return true }
func (TxnStatus) Name() string   { return "TxnStatus" }
func (TxnStatus) IsWrite() bool  { return false }

// ── Search ───────────────────────────────────────────────────────────────

// SearchQuery is the full-text query envelope. Primitives narrows the
// search to specific primitive kinds; empty means all.
type SearchQuery struct {
	Query      string
	K          uint64
	Primitives []string
}

// Search runs a ranked full-text search across a branch/space.
type Search struct {
	Branch, Space string
	Query         SearchQuery
}

func (Search) Name() string  { return "Search" }
func (Search) IsWrite() bool { return false }

// ── Bundles ──────────────────────────────────────────────────────────────

// BundleExport writes a branch's entries to a checksummed bundle file.
type BundleExport struct {
	Branch, Path string
}

// BundleImport applies a bundle file into a branch, creating it if needed.
type BundleImport struct {
	Branch, Path string
}

// BundleValidate verifies a bundle file without applying it.
type BundleValidate struct {
	Path string
}

func (BundleExport) Name() string    { return "BundleExport" }
func (BundleExport) IsWrite() bool   { return false }
func (BundleImport) Name() string    { return "BundleImport" }
func (BundleImport) IsWrite() bool   { return true }
func (BundleValidate) Name() string  { return "BundleValidate" }
func (BundleValidate) IsWrite() bool { return false }

// ── Retention ────────────────────────────────────────────────────────────

// RetentionApply trims old versions on a branch per the configured policy.
type RetentionApply struct {
	Branch string
}

func (RetentionApply) Name() string  { return "RetentionApply" }
func (RetentionApply) IsWrite() bool { return true }

// ── Configuration ────────────────────────────────────────────────────────

// ConfigGet reads the store's runtime configuration.
type ConfigGet struct{}

// ConfigSetDurability selects the durability mode ("full" or "relaxed").
type ConfigSetDurability struct {
	Mode string
}

// ConfigSetAutoEmbed toggles automatic embedding of written text.
type ConfigSetAutoEmbed struct {
	Enabled bool
}

// ConfigSetModel points generation at an OpenAI-compatible endpoint.
type ConfigSetModel struct {
	Endpoint, Model, APIKey string
	TimeoutMs               uint64
}

func (ConfigGet) Name() string            { return "ConfigGet" }
func (ConfigGet) IsWrite() bool           { return false }
func (ConfigSetDurability) Name() string  { return "ConfigSetDurability" }
func (ConfigSetDurability) IsWrite() bool { return true }
func (ConfigSetAutoEmbed) Name() string   { return "ConfigSetAutoEmbed" }
func (ConfigSetAutoEmbed) IsWrite() bool  { return true }
func (ConfigSetModel) Name() string       { return "ConfigSetModel" }
func (ConfigSetModel) IsWrite() bool      { return true }

// ── Embedding ────────────────────────────────────────────────────────────

// Embed turns one text into a dense vector.
type Embed struct {
	Text string
}

// EmbedBatch turns several texts into dense vectors.
type EmbedBatch struct {
	Texts []string
}

// EmbedStatus reports the embedding pipeline counters.
type EmbedStatus struct{}

func (Embed) Name() string        { return "Embed" }
func (Embed) IsWrite() bool       { return false }
func (EmbedBatch) Name() string   { return "EmbedBatch" }
func (EmbedBatch) IsWrite() bool  { return false }
func (EmbedStatus) Name() string  { return "EmbedStatus" }
func (EmbedStatus) IsWrite() bool { return false }

// ── Inference ────────────────────────────────────────────────────────────

// Generate produces text from the configured model endpoint.
type Generate struct {
	Model, Prompt string
	MaxTokens     *uint64
	Temperature   *float64
	TopK          *uint64
	TopP          *float64
	Seed          *uint64
	StopTokens    []uint32
}

// Tokenize converts text to token ids with a model's tokenizer.
// The byte-level tokenizer has no special tokens, so AddSpecialTokens
// is accepted for interface compatibility but has no effect.
type Tokenize struct {
	Model, Text      string
	AddSpecialTokens *bool
}

// Detokenize converts token ids back to text.
type Detokenize struct {
	Model string
	IDs   []uint32
}

// GenerateUnload releases a loaded model's resources.
type GenerateUnload struct {
	Model string
}

func (Generate) Name() string        { return "Generate" }
func (Generate) IsWrite() bool       { return false }
func (Tokenize) Name() string        { return "Tokenize" }
func (Tokenize) IsWrite() bool       { return false }
func (Detokenize) Name() string      { return "Detokenize" }
func (Detokenize) IsWrite() bool     { return false }
func (GenerateUnload) Name() string  { return "GenerateUnload" }
func (GenerateUnload) IsWrite() bool { return false }

// ── Models ───────────────────────────────────────────────────────────────

// ModelsList lists all models in the registry.
type ModelsList struct{}

// ModelsPull downloads a model to the local models directory.
type ModelsPull struct {
	ModelName string
}

// ModelsLocal lists models present on disk.
type ModelsLocal struct{}

func (ModelsList) Name() string   { return "ModelsList" }
func (ModelsList) IsWrite() bool  { return false }
func (ModelsPull) Name() string   { return "ModelsPull" }
func (ModelsPull) IsWrite() bool  { return true }
func (ModelsLocal) Name() string  { return "ModelsLocal" }
func (ModelsLocal) IsWrite() bool { return false }

// ── Durability ───────────────────────────────────────────────────────────

// DurabilityCounters reads the write-path counters.
type DurabilityCounters struct{}

func (DurabilityCounters) Name() string  { return "DurabilityCounters" }
func (DurabilityCounters) IsWrite() bool { return false }

// ── Vectors ──────────────────────────────────────────────────────────────

// VectorCreateCollection creates a named vector collection.
type VectorCreateCollection struct {
	Collection string
	Dimension  uint64
	Metric     string
}

// VectorCollections lists vector collections.
type VectorCollections struct{}

// VectorDropCollection removes a collection and its vectors.
type VectorDropCollection struct {
	Collection string
}

// VectorUpsert inserts or replaces a vector by key.
type VectorUpsert struct {
	Collection, Key string
	Embedding       []float32
	Metadata        Value
}

// VectorGet reads a vector by key.
type VectorGet struct {
	Collection, Key string
}

// VectorDelete removes a vector by key.
type VectorDelete struct {
	Collection, Key string
}

// VectorSearch returns the k nearest vectors to a query embedding.
type VectorSearch struct {
	Collection string
	Query      []float32
	K          uint64
}

func (VectorCreateCollection) Name() string  { return "VectorCreateCollection" }
func (VectorCreateCollection) IsWrite() bool { return true }
func (VectorCollections) Name() string       { return "VectorCollections" }
func (VectorCollections) IsWrite() bool      { return false }
func (VectorDropCollection) Name() string    { return "VectorDropCollection" }
func (VectorDropCollection) IsWrite() bool   { return true }
func (VectorUpsert) Name() string            { return "VectorUpsert" }
func (VectorUpsert) IsWrite() bool           { return true }
func (VectorGet) Name() string               { return "VectorGet" }
func (VectorGet) IsWrite() bool              { return false }
func (VectorDelete) Name() string            { return "VectorDelete" }
func (VectorDelete) IsWrite() bool           { return true }
func (VectorSearch) Name() string            { return "VectorSearch" }
func (VectorSearch) IsWrite() bool           { return false }
