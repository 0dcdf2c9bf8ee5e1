// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package progress defines the capability a long-running core operation uses
// to report its status to an enclosing host without sharing mutable state
// with it. It replaces a shared mutable namespace (act/progress/cancelled
// fields written from both sides) with a narrow, write-mostly interface.
package progress

// Sink is supplied by the host to a long-running operation (file loading,
// concatenation, group parsing, sequence-DB join). The core writes to it;
// it never reads anything back except Cancelled.
type Sink interface {
	// SetStage names the current phase of work, e.g. "parsing", "concatenating".
	SetStage(name string)
	// SetTotal records the number of units the operation expects to process.
	SetTotal(n int)
	// SetProgress records how many units have been processed so far.
	SetProgress(n int)
	// Cancelled reports whether the host has asked the operation to stop.
	// Implementations must be safe to call after every unit of work.
	Cancelled() bool
}

// Discard is a Sink that reports no cancellation and discards all updates.
// It is the default used where a caller supplies no sink.
var Discard Sink = discard{}

type discard struct{}

func (discard) SetStage(string) {}
func (discard) SetTotal(int)    {}
func (discard) SetProgress(int) {}
func (discard) Cancelled() bool { return false }

// Counter is a simple in-process Sink that a cmd/ binary or test can use
// directly: it logs nothing itself, but callers may read Stage/Total/Done
// after the fact, and set Cancel to stop cooperatively mid-operation.
type Counter struct {
	Stage  string
	Total  int
	Done   int
	Cancel bool
}

func (c *Counter) SetStage(name string) { c.Stage = name }
func (c *Counter) SetTotal(n int)       { c.Total = n }
func (c *Counter) SetProgress(n int)    { c.Done = n }
func (c *Counter) Cancelled() bool      { return c.Cancel }

// OrDiscard returns sink if non-nil, otherwise Discard. Operations that
// accept an optional Sink parameter use this to avoid nil checks at every
// call site.
func OrDiscard(sink Sink) Sink {
	if sink == nil {
		return Discard
	}
	return sink
}
