package stratadb

import "fmt"

// Well-known StoreError codes.
const (
	CodeBranchNotFound     = "BRANCH_NOT_FOUND"
	CodeBranchExists       = "BRANCH_EXISTS"
	CodeCollectionNotFound = "COLLECTION_NOT_FOUND"
	CodeCollectionExists   = "COLLECTION_EXISTS"
	CodeDimensionMismatch  = "DIMENSION_MISMATCH"
	CodeNoTransaction      = "NO_TRANSACTION"
	CodeTxnActive          = "TXN_ACTIVE"
	CodeInvalidPath        = "INVALID_PATH"
	CodeInvalidArgument    = "INVALID_ARGUMENT"
	CodeEmbedDisabled      = "EMBED_DISABLED"
	CodeModelNotConfigured = "MODEL_NOT_CONFIGURED"
	CodeModelNotFound      = "MODEL_NOT_FOUND"
	CodeBundleCorrupt      = "BUNDLE_CORRUPT"
	CodeIO                 = "IO_ERROR"
	CodeInternal           = "INTERNAL"
)

// StoreError is the engine's error type: a stable machine code plus a
// human message. The MCP layer passes it through verbatim.
type StoreError struct {
	Code    string
	Message string
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func storeErrf(code, format string, args ...any) *StoreError {
	return &StoreError{Code: code, Message: fmt.Sprintf(format, args...)}
}
