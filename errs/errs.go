// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package errs defines the tagged error kinds produced across the alignment
// and ortholog-group engines. Errors are values, not control-flow signals:
// callers use errors.As to recover a tag and inspect its fields.
package errs

import "fmt"

// FormatUnknown reports that the format probe could not classify a file.
type FormatUnknown struct {
	Path string
}

func (e *FormatUnknown) Error() string {
	return fmt.Sprintf("%s: unknown alignment format", e.Path)
}

// ParseError reports a malformed file body at a specific line.
type ParseError struct {
	Path   string
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Reason)
}

// UnequalLengthError reports that an alignment's rows are not all the same
// length. The rows remain accessible to the caller; this is a flag, not an
// abort.
type UnequalLengthError struct {
	Path string
}

func (e *UnequalLengthError) Error() string {
	return fmt.Sprintf("%s: sequences are not of equal length", e.Path)
}

// DuplicateTaxon reports a taxon name observed twice within one alignment.
type DuplicateTaxon struct {
	Path string
	Name string
}

func (e *DuplicateTaxon) Error() string {
	return fmt.Sprintf("%s: duplicate taxon %q", e.Path, e.Name)
}

// AlphabetMismatch is recorded as a warning when an alignment joining a set
// has an alphabet that disagrees with the set's existing alphabet. The
// alignment is still added.
type AlphabetMismatch struct {
	Path     string
	Expected string
	Got      string
}

func (e *AlphabetMismatch) Error() string {
	return fmt.Sprintf("%s: alphabet mismatch: expected %s, got %s", e.Path, e.Expected, e.Got)
}

// PartitionConflict reports overlapping partition ranges or a codon span
// that is not divisible by 3. The operation that produced it is aborted and
// the receiver is left unchanged.
type PartitionConflict struct {
	Reason string
}

func (e *PartitionConflict) Error() string {
	return fmt.Sprintf("partition conflict: %s", e.Reason)
}

// InvalidPartitionFile reports that a partitions file is inconsistent with
// the alignment it is meant to describe.
type InvalidPartitionFile struct {
	Reason string
}

func (e *InvalidPartitionFile) Error() string {
	return fmt.Sprintf("invalid partition file: %s", e.Reason)
}

// WriteBlocked reports that a gap-coded alignment was asked to write in a
// format other than Nexus.
type WriteBlocked struct {
	Reason string
}

func (e *WriteBlocked) Error() string {
	return fmt.Sprintf("write blocked: %s", e.Reason)
}

// MissingSequence reports that the sequence-DB join could not resolve an
// identifier. It is counted by the caller, not fatal to the cluster.
type MissingSequence struct {
	SeqID string
}

func (e *MissingSequence) Error() string {
	return fmt.Sprintf("missing sequence: %s", e.SeqID)
}

// Cancelled reports cooperative cancellation via a ProgressSink.
type Cancelled struct{}

func (e *Cancelled) Error() string { return "operation cancelled" }
