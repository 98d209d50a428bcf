package stratadb

import (
	"strconv"

	"github.com/google/uuid"
)

func (s *Strata) txnBegin() (Output, error) {
	if s.tx != nil {
		return nil, storeErrf(CodeTxnActive, "transaction %s is already open", s.txID)
	}
	if s.mode == ReadOnly {
		return nil, storeErrf(CodeInvalidArgument, "store is read-only")
	}
	tx, err := s.db.Begin()
	if err != nil {
		return nil, wrapSQL(err)
	}
	s.tx = tx
	s.txID = uuid.NewString()
	s.txStart = nowMicros()
	return TxnBegun{}, nil
}

func (s *Strata) txnCommit() (Output, error) {
	if s.tx == nil {
		return nil, storeErrf(CodeNoTransaction, "no transaction is open")
	}

	// Bump the global commit version inside the transaction so the number
	// lands atomically with the writes it covers.
	var cur string
	if err := s.tx.QueryRow(`SELECT value FROM meta WHERE key = 'commit_version'`).Scan(&cur); err != nil {
		return nil, wrapSQL(err)
	}
	version, err := strconv.ParseUint(cur, 10, 64)
	if err != nil {
		return nil, storeErrf(CodeInternal, "corrupt commit_version %q", cur)
	}
	version++
	if _, err := s.tx.Exec(
		`UPDATE meta SET value = ? WHERE key = 'commit_version'`,
		strconv.FormatUint(version, 10),
	); err != nil {
		return nil, wrapSQL(err)
	}

	if err := s.tx.Commit(); err != nil {
		s.clearTxn()
		return nil, wrapSQL(err)
	}
	s.clearTxn()
	s.counters.SyncCalls++
	return TxnCommitted{Version: version}, nil
}

func (s *Strata) txnAbort() (Output, error) {
	if s.tx == nil {
		return nil, storeErrf(CodeNoTransaction, "no transaction is open")
	}
	err := s.tx.Rollback()
	s.clearTxn()
	if err != nil {
		return nil, wrapSQL(err)
	}
	return TxnAborted{}, nil
}

func (s *Strata) txnStatus() (Output, error) {
	if s.tx == nil {
		return TxnInfo{}, nil
	}
	return TxnInfo{Info: &TxnInfoData{
		ID:        s.txID,
		Status:    "active",
		StartedAt: s.txStart,
	}}, nil
}

func (s *Strata) clearTxn() {
	s.tx = nil
	s.txID = ""
	s.txStart = 0
}
