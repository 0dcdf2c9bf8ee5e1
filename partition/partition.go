// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package partition implements the partition model shared by the alignment
// engine: an ordered mapping of name to coordinate range, with optional
// codon sub-positions and substitution-model metadata, and a running
// counter used to validate coverage and drive concatenation.
package partition

import (
	"fmt"

	"github.com/biogo/store/interval"

	"github.com/kortschak/msatools/errs"
	"github.com/kortschak/msatools/internal/omap"
)

// Range is an inclusive-start, exclusive-end coordinate range over the
// concatenated alignment space.
type Range struct {
	Start, End int // [Start, End)
}

// Len reports the number of columns the range spans.
func (r Range) Len() int { return r.End - r.Start }

// SubstModel describes a substitution model assignment, as parsed from
// MrBayes lset/prset directives. It is opaque to the partition model
// itself; writers decide how to render it.
type SubstModel struct {
	Name  string // e.g. "GTR", "LG"
	Extra string // any further lset/prset text, kept verbatim
}

// Partition is one named contiguous range, optionally split into up to
// three codon sub-positions.
type Partition struct {
	Name         string
	Range        Range
	CodonOffsets []int // offsets in {0,1,2}, ordered; nil if not codon-partitioned
	Model        *SubstModel
	SourceFile   string
}

// Positions returns the column indices (relative to the concatenated
// coordinate space) belonging to codon offset off, assuming the partition
// length is a multiple of 3.
func (p Partition) Positions(off int) []int {
	n := p.Range.Len()
	var out []int
	for i := off; i < n; i += 3 {
		out = append(out, p.Range.Start+i)
	}
	return out
}

// Model is an ordered mapping name -> Partition plus a running coordinate
// counter. Insertion order is observable: it determines the order
// partitions are written out in.
type Model struct {
	partitions *omap.Map[*Partition]
	counter    int
	tree       interval.IntTree
	dirty      bool
}

// New returns an empty partition model.
func New() *Model {
	return &Model{partitions: omap.New[*Partition]()}
}

// Counter is the sum of the lengths of all partitions currently held; it is
// the expected locus_length of the alignment this model describes.
func (m *Model) Counter() int { return m.counter }

// IsSingle reports whether the model holds exactly one partition.
func (m *Model) IsSingle() bool { return m.partitions.Len() == 1 }

// Names returns the partition names in insertion order.
func (m *Model) Names() []string { return m.partitions.Keys() }

// partitionInterval adapts a *Partition to the interval tree's element
// interface for overlap queries against the rest of the model.
type partitionInterval struct {
	uid uintptr
	r   Range
}

func (p partitionInterval) Overlap(b interval.IntRange) bool {
	return p.r.Start < b.End && b.Start < p.r.End
}
func (p partitionInterval) ID() uintptr { return p.uid }
func (p partitionInterval) Range() interval.IntRange {
	return interval.IntRange{Start: p.r.Start, End: p.r.End}
}

func (m *Model) rebuildTree() {
	m.tree = interval.IntTree{}
	var i uintptr
	m.partitions.Each(func(_ string, p *Partition) bool {
		// Insert errors only occur for degenerate (empty) ranges, which
		// AddRange already rejects before a partition reaches the tree.
		_ = m.tree.Insert(partitionInterval{uid: i, r: p.Range}, true)
		i++
		return true
	})
	m.tree.AdjustRanges()
	m.dirty = false
}

func (m *Model) overlaps(r Range) bool {
	if m.partitions.Len() == 0 {
		return false
	}
	if m.dirty {
		m.rebuildTree()
	}
	return len(m.tree.Get(partitionInterval{r: r})) > 0
}

// Add appends a partition of the given length at [counter, counter+length),
// advancing counter by length. codonOffsets and model may be nil.
func (m *Model) Add(name string, length int, codonOffsets []int, model *SubstModel, file string) error {
	return m.AddRange(name, Range{m.counter, m.counter + length}, codonOffsets, model, file)
}

// AddRange adds a partition with an explicit range. Unlike Add, it does not
// advance counter by the partition's length; instead counter becomes
// max(counter, range.End). Overlapping ranges are rejected with
// PartitionConflict and the model is left unchanged.
func (m *Model) AddRange(name string, r Range, codonOffsets []int, model *SubstModel, file string) error {
	if r.End <= r.Start {
		return &errs.PartitionConflict{Reason: fmt.Sprintf("empty or inverted range for %q", name)}
	}
	if len(codonOffsets) > 0 && r.Len()%3 != 0 {
		return &errs.PartitionConflict{Reason: fmt.Sprintf("codon partition %q length %d is not a multiple of 3", name, r.Len())}
	}
	if m.overlaps(r) {
		return &errs.PartitionConflict{Reason: fmt.Sprintf("range [%d,%d) for %q overlaps an existing partition", r.Start, r.End, name)}
	}
	p := &Partition{Name: name, Range: r, CodonOffsets: codonOffsets, SourceFile: file, Model: model}
	m.partitions.Set(name, p)
	if r.End > m.counter {
		m.counter = r.End
	}
	m.dirty = true
	return nil
}

// Get returns the partition named name.
func (m *Model) Get(name string) (*Partition, bool) {
	return m.partitions.Get(name)
}

// Remove deletes the partition named name and rebuilds counter from the
// remaining partitions' maximum End.
func (m *Model) Remove(name string) {
	m.partitions.Delete(name)
	m.rebuildCounter()
	m.dirty = true
}

// RemoveFile deletes every partition whose SourceFile equals file, then
// rebuilds counter.
func (m *Model) RemoveFile(file string) {
	for _, name := range append([]string(nil), m.partitions.Keys()...) {
		p, _ := m.partitions.Get(name)
		if p.SourceFile == file {
			m.partitions.Delete(name)
		}
	}
	m.rebuildCounter()
	m.dirty = true
}

func (m *Model) rebuildCounter() {
	max := 0
	m.partitions.Each(func(_ string, p *Partition) bool {
		if p.Range.End > max {
			max = p.Range.End
		}
		return true
	})
	m.counter = max
}

// Iter calls fn for every partition in insertion order. fn returning false
// stops iteration early.
func (m *Model) Iter(fn func(name string, p *Partition) bool) {
	m.partitions.Each(func(name string, p *Partition) bool {
		return fn(name, p)
	})
}

// Ranges returns the partitions' ranges sorted by Start.
func (m *Model) Ranges() []Range {
	out := make([]Range, 0, m.partitions.Len())
	m.partitions.Each(func(_ string, p *Partition) bool {
		out = append(out, p.Range)
		return true
	})
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1].Start > out[j].Start; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// CoversContiguously reports whether the sorted ranges are disjoint and
// their union is exactly [0, Counter()).
func (m *Model) CoversContiguously() bool {
	next := 0
	for _, r := range m.Ranges() {
		if r.Start != next {
			return false
		}
		next = r.End
	}
	return next == m.counter
}

// SetLength is used when an alignment has no partition structure of its
// own: it resets the model to a single partition [0, n) named name.
func (m *Model) SetLength(name string, n int, file string) {
	m.partitions = omap.New[*Partition]()
	m.counter = 0
	m.dirty = true
	// A fresh single full-length partition cannot conflict with anything.
	_ = m.Add(name, n, nil, nil, file)
}
