// Package session holds the per-connection state the tool layer acts
// on: current branch, current space, and whether a transaction is open.
package session

import (
	"github.com/strata-ai-labs/strata-mcp/internal/mcperr"
	"github.com/strata-ai-labs/strata-mcp/internal/stratadb"
)

// Session wraps a store handle with mutable branch/space context and a
// transaction flag. Access is request-at-a-time, so no locking; the
// session exclusively owns the store handle.
type Session struct {
	store *stratadb.Strata

	branch        string
	space         string
	inTransaction bool
}

// New creates a session on the default branch and space.
func New(store *stratadb.Strata) *Session {
	return &Session{
		store:  store,
		branch: "default",
		space:  "default",
	}
}

// Branch returns the current branch context.
func (s *Session) Branch() string {
	return s.branch
}

// Space returns the current space context.
func (s *Session) Space() string {
	return s.space
}

// InTransaction reports whether a transaction is open.
func (s *Session) InTransaction() bool {
	return s.inTransaction
}

// Store exposes the underlying store for read-side introspection.
func (s *Session) Store() *stratadb.Strata {
	return s.store
}

// IsReadOnly reports whether the store was opened read-only.
func (s *Session) IsReadOnly() bool {
	return s.store.AccessMode() == stratadb.ReadOnly
}

func (s *Session) checkWriteAccess(operation string) error {
	if s.IsReadOnly() {
		return mcperr.AccessDenied(operation)
	}
	return nil
}

// SwitchBranch moves the session to another branch. The branch must
// exist: the check runs first and the context only updates on success,
// so a failed switch never parks the session on an invalid branch.
func (s *Session) SwitchBranch(name string) error {
	out, err := s.store.Execute(stratadb.BranchExists{Branch: name})
	if err != nil {
		return mcperr.FromStore(err)
	}
	exists, ok := out.(stratadb.BoolOut)
	if !ok {
		return mcperr.Internal("unexpected output %T for BranchExists", out)
	}
	if !exists.Value {
		return mcperr.BranchNotFound(name)
	}
	s.branch = name
	return nil
}

// SwitchSpace moves the session to another space. Spaces are free-form
// labels, so the switch is unchecked and always succeeds.
func (s *Session) SwitchSpace(name string) {
	s.space = name
}

// Execute runs a command through the session. Write commands are
// rejected before reaching the store when the session is read-only.
// Transaction state tracks the command's output, not the command: the
// flag only flips when the store confirms the boundary. A command that
// fails mid-transaction leaves the transaction open for caller-driven
// recovery.
func (s *Session) Execute(cmd stratadb.Command) (stratadb.Output, error) {
	if cmd.IsWrite() {
		if err := s.checkWriteAccess(cmd.Name()); err != nil {
			return nil, err
		}
	}
	out, err := s.store.Execute(cmd)
	if err != nil {
		return nil, mcperr.FromStore(err)
	}

	switch out.(type) {
	case stratadb.TxnBegun:
		s.inTransaction = true
	case stratadb.TxnCommitted, stratadb.TxnAborted:
		s.inTransaction = false
	}
	return out, nil
}

// ForkBranch forks the current branch to a new destination.
func (s *Session) ForkBranch(destination string) (stratadb.ForkInfo, error) {
	if err := s.checkWriteAccess("BranchFork"); err != nil {
		return stratadb.ForkInfo{}, err
	}
	info, err := s.store.Branches().Fork(s.branch, destination)
	if err != nil {
		return stratadb.ForkInfo{}, mcperr.FromStore(err)
	}
	return info, nil
}

// DiffBranches compares two branches.
func (s *Session) DiffBranches(branchA, branchB string) (stratadb.BranchDiffResult, error) {
	diff, err := s.store.Branches().Diff(branchA, branchB)
	if err != nil {
		return stratadb.BranchDiffResult{}, mcperr.FromStore(err)
	}
	return diff, nil
}

// MergeBranch merges a source branch into the current branch.
func (s *Session) MergeBranch(source string, strategy stratadb.MergeStrategy) (stratadb.MergeInfo, error) {
	if err := s.checkWriteAccess("BranchMerge"); err != nil {
		return stratadb.MergeInfo{}, err
	}
	info, err := s.store.Branches().Merge(source, s.branch, strategy)
	if err != nil {
		return stratadb.MergeInfo{}, mcperr.FromStore(err)
	}
	return info, nil
}
