package stratadb

// Output is the typed result algebra. The union is closed: every variant
// lives in this file and carries the unexported marker, so the output
// codec can enumerate them and treat anything else as an internal error.
type Output interface {
	isOutput()
}

// Unit is the empty result.
type Unit struct{}

// Maybe is an optional value; a nil Value means absent.
type Maybe struct {
	Value Value
}

// MaybeVersioned is an optional versioned value.
type MaybeVersioned struct {
	Value *VersionedValue
}

// MaybeVersion is an optional bare version number.
type MaybeVersion struct {
	Version *uint64
}

// Version is the version produced by a write.
type Version struct {
	Version uint64
}

// BoolOut is a boolean result.
type BoolOut struct {
	Value bool
}

// Uint is an unsigned count result.
type Uint struct {
	Value uint64
}

// VersionedValues is an ordered list of versioned values.
type VersionedValues struct {
	Values []VersionedValue
}

// VersionHistory is the optional full history of one key; nil means the
// key was never written.
type VersionHistory struct {
	Values []VersionedValue
	Found  bool
}

// Keys is a list of key names.
type Keys struct {
	Keys []string
}

// JsonListResult pages document keys with a continuation cursor.
type JsonListResult struct {
	Keys   []string
	Cursor string
}

// VectorMatch is one scored vector search hit.
type VectorMatch struct {
	Key      string
	Score    float64
	Metadata Value
}

// VectorMatches is a ranked list of vector hits.
type VectorMatches struct {
	Matches []VectorMatch
}

// VectorRecord is a stored vector with metadata and version info.
type VectorRecord struct {
	Key       string
	Embedding []float32
	Metadata  Value
	Version   uint64
	Timestamp uint64
}

// VectorData is an optional vector record.
type VectorData struct {
	Record *VectorRecord
}

// VectorCollectionInfo describes one vector collection.
type VectorCollectionInfo struct {
	CollectionName string
	Dimension      uint64
	Metric         string
	Count          uint64
	IndexType      string
	MemoryBytes    uint64
}

// VectorCollectionList lists vector collections.
type VectorCollectionList struct {
	Collections []VectorCollectionInfo
}

// BranchStatus enumerates branch lifecycle states.
type BranchStatus string

// Branch lifecycle states.
const (
	BranchActive   BranchStatus = "Active"
	BranchArchived BranchStatus = "Archived"
)

// BranchInfo describes one branch.
type BranchInfo struct {
	ID        string
	Status    BranchStatus
	CreatedAt uint64
	UpdatedAt uint64
	ParentID  string
	Version   uint64
	Timestamp uint64
}

// MaybeBranchInfo is an optional branch description.
type MaybeBranchInfo struct {
	Info *BranchInfo
}

// BranchInfoList lists branches.
type BranchInfoList struct {
	Branches []BranchInfo
}

// TxnInfoData describes an open transaction.
type TxnInfoData struct {
	ID        string
	Status    string
	StartedAt uint64
}

// TxnInfo is an optional transaction description.
type TxnInfo struct {
	Info *TxnInfoData
}

// TxnBegun signals a transaction opened.
type TxnBegun struct{}

// TxnCommitted signals a transaction committed at a global version.
type TxnCommitted struct {
	Version uint64
}

// TxnAborted signals a transaction rolled back.
type TxnAborted struct{}

// DatabaseInfoData is database-level introspection.
type DatabaseInfoData struct {
	Version     string
	UptimeSecs  uint64
	BranchCount uint64
	TotalKeys   uint64
}

// DatabaseInfo wraps database introspection.
type DatabaseInfo struct {
	Info DatabaseInfoData
}

// Pong answers a Ping.
type Pong struct {
	Version string
}

// SearchResult is one ranked full-text hit.
type SearchResult struct {
	Entity    string
	Primitive string
	Score     float64
	Rank      uint64
	Snippet   string
}

// SearchResults is a ranked list of full-text hits.
type SearchResults struct {
	Results []SearchResult
}

// SpaceListOut lists space names.
type SpaceListOut struct {
	Spaces []string
}

// BranchExported reports a bundle export.
type BranchExported struct {
	BranchID   string
	Path       string
	EntryCount uint64
	BundleSize uint64
}

// BranchImported reports a bundle import.
type BranchImported struct {
	BranchID            string
	TransactionsApplied uint64
	KeysWritten         uint64
}

// BundleValidated reports a bundle validation.
type BundleValidated struct {
	BranchID       string
	FormatVersion  uint64
	EntryCount     uint64
	ChecksumsValid bool
}

// TimeRangeOut is the writable-history window of a branch.
type TimeRangeOut struct {
	OldestTs *uint64
	LatestTs *uint64
}

// BatchResult is one item of a batch write: a version on success or an
// error message on failure, never both.
type BatchResult struct {
	Version *uint64
	Err     string
}

// BatchResults reports per-item outcomes of a batch write.
type BatchResults struct {
	Results []BatchResult
}

// DurabilityCountersData are the write-path counters.
type DurabilityCountersData struct {
	WalAppends   uint64
	SyncCalls    uint64
	BytesWritten uint64
	SyncNanos    uint64
}

// DurabilityCountersOut wraps the write-path counters.
type DurabilityCountersOut struct {
	Counters DurabilityCountersData
}

// EmbedStatusData are the embedding pipeline counters.
type EmbedStatusData struct {
	AutoEmbed           bool
	BatchSize           uint64
	Pending             uint64
	TotalQueued         uint64
	TotalEmbedded       uint64
	TotalFailed         uint64
	SchedulerQueueDepth uint64
	SchedulerActive     uint64
}

// EmbedStatusOut wraps the embedding pipeline counters.
type EmbedStatusOut struct {
	Info EmbedStatusData
}

// Embedding is a single dense vector.
type Embedding struct {
	Vector []float32
}

// Embeddings is a batch of dense vectors.
type Embeddings struct {
	Vectors [][]float32
}

// GeneratedData is the result of a text generation call.
type GeneratedData struct {
	Text             string
	StopReason       string
	PromptTokens     uint64
	CompletionTokens uint64
	Model            string
}

// Generated wraps a generation result.
type Generated struct {
	Result GeneratedData
}

// TokenIds is a tokenization result.
type TokenIds struct {
	IDs   []uint32
	Count uint64
	Model string
}

// Text is a bare text result (detokenization).
type Text struct {
	Text string
}

// ModelInfo describes one model in the registry.
type ModelInfo struct {
	ModelName    string
	Task         string
	Architecture string
	DefaultQuant string
	EmbeddingDim uint64
	IsLocal      bool
	SizeBytes    uint64
}

// ModelsListOut lists registry models.
type ModelsListOut struct {
	Models []ModelInfo
}

// ModelsPulled reports a completed model download.
type ModelsPulled struct {
	ModelName string
	Path      string
}

// ForkInfo reports a branch fork.
type ForkInfo struct {
	Source      string
	Destination string
	KeysCopied  uint64
}

// BranchForked wraps a fork result.
type BranchForked struct {
	Info ForkInfo
}

// DiffSummary counts key-level differences between two branches.
type DiffSummary struct {
	TotalAdded    uint64
	TotalRemoved  uint64
	TotalModified uint64
}

// BranchDiffResult compares two branches.
type BranchDiffResult struct {
	BranchA string
	BranchB string
	Summary DiffSummary
}

// BranchDiffOut wraps a diff result.
type BranchDiffOut struct {
	Diff BranchDiffResult
}

// MergeConflict is one key both branches changed.
type MergeConflict struct {
	Key   string
	Space string
}

// MergeInfo reports a branch merge.
type MergeInfo struct {
	KeysApplied  uint64
	SpacesMerged uint64
	Conflicts    []MergeConflict
}

// BranchMerged wraps a merge result.
type BranchMerged struct {
	Info MergeInfo
}

// ModelConfig is the generation endpoint configuration.
type ModelConfig struct {
	Endpoint  string
	Model     string
	APIKey    string
	TimeoutMs uint64
}

// ConfigData is the store's runtime configuration.
type ConfigData struct {
	Durability string
	AutoEmbed  bool
	Model      *ModelConfig
}

// ConfigOut wraps the runtime configuration.
type ConfigOut struct {
	Config ConfigData
}

func (Unit) isOutput()                  {}
func (Maybe) isOutput()                 {}
func (MaybeVersioned) isOutput()        {}
func (MaybeVersion) isOutput()          {}
func (Version) isOutput()               {}
func (BoolOut) isOutput()               {}
func (Uint) isOutput()                  {}
func (VersionedValues) isOutput()       {}
func (VersionHistory) isOutput()        {}
func (Keys) isOutput()                  {}
func (JsonListResult) isOutput()        {}
func (VectorMatches) isOutput()         {}
func (VectorData) isOutput()            {}
func (VectorCollectionList) isOutput()  {}
func (MaybeBranchInfo) isOutput()       {}
func (BranchInfoList) isOutput()        {}
func (TxnInfo) isOutput()               {}
func (TxnBegun) isOutput()              {}
func (TxnCommitted) isOutput()          {}
func (TxnAborted) isOutput()            {}
func (DatabaseInfo) isOutput()          {}
func (Pong) isOutput()                  {}
func (SearchResults) isOutput()         {}
func (SpaceListOut) isOutput()          {}
func (BranchExported) isOutput()        {}
func (BranchImported) isOutput()        {}
func (BundleValidated) isOutput()       {}
func (TimeRangeOut) isOutput()          {}
func (BatchResults) isOutput()          {}
func (DurabilityCountersOut) isOutput() {}
func (EmbedStatusOut) isOutput()        {}
func (Embedding) isOutput()             {}
func (Embeddings) isOutput()            {}
func (Generated) isOutput()             {}
func (TokenIds) isOutput()              {}
func (Text) isOutput()                  {}
func (ModelsListOut) isOutput()         {}
func (ModelsPulled) isOutput()          {}
func (BranchForked) isOutput()          {}
func (BranchDiffOut) isOutput()         {}
func (BranchMerged) isOutput()          {}
func (ConfigOut) isOutput()             {}
