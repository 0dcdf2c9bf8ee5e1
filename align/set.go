// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package align

import (
	"math"
	"strings"

	"github.com/kortschak/msatools/errs"
	"github.com/kortschak/msatools/internal/omap"
	"github.com/kortschak/msatools/partition"
	"github.com/kortschak/msatools/progress"
	"github.com/kortschak/msatools/seqalpha"
)

// Set is a collection of alignments with cross-alignment filters,
// concatenation, and statistics.
type Set struct {
	active  *omap.Map[*Alignment]
	shelved *omap.Map[*Alignment]

	Bad           []string // paths that failed to parse
	UnequalLength []string // paths that failed the equal-length check
	Duplicates    []string // alignment names observed twice

	Alpha      seqalpha.Kind
	alphaSet   bool
	Partitions *partition.Model
}

// NewSet returns an empty AlignmentSet.
func NewSet() *Set {
	return &Set{
		active:     omap.New[*Alignment](),
		shelved:    omap.New[*Alignment](),
		Partitions: partition.New(),
	}
}

// Active returns the alignment names currently active, in insertion order.
func (s *Set) Active() []string { return s.active.Keys() }

// Shelved returns the alignment names currently shelved, in insertion order.
func (s *Set) Shelved() []string { return s.shelved.Keys() }

// Get returns an active or shelved alignment by name.
func (s *Set) Get(name string) (*Alignment, bool) {
	if a, ok := s.active.Get(name); ok {
		return a, true
	}
	return s.shelved.Get(name)
}

// TaxaNames returns the union of active alignments' taxa, insertion-ordered
// by first appearance.
func (s *Set) TaxaNames() []string {
	seen := make(map[string]bool)
	var out []string
	s.active.Each(func(_ string, a *Alignment) bool {
		a.Rows.Each(func(t string, _ string) bool {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
			return true
		})
		return true
	})
	return out
}

// AddFile parses path and adds the result to active. Per-file parse
// failures are recorded in Bad; unequal-length alignments are still added
// but also recorded in UnequalLength; duplicate alignment names are
// recorded in Duplicates and the new alignment is not added.
func (s *Set) AddFile(path string) error {
	a, err := ParseFile(path)
	if err != nil {
		if _, ok := err.(*errs.UnequalLengthError); ok {
			// a is still usable (its rows are kept as parsed, unequal
			// lengths included); record the warning and fall through to
			// add it.
			s.UnequalLength = append(s.UnequalLength, path)
		} else {
			s.Bad = append(s.Bad, path)
			return err
		}
	}
	return s.Add(a)
}

// Add inserts an already-parsed alignment into active. An alphabet that
// disagrees with the set's established alphabet is recorded as a warning
// (returned) but the alignment is still added.
func (s *Set) Add(a *Alignment) error {
	if a == nil {
		return nil
	}
	if s.active.Has(a.Name) || s.shelved.Has(a.Name) {
		s.Duplicates = append(s.Duplicates, a.Name)
		return nil
	}
	var warn error
	if !s.alphaSet {
		s.Alpha = a.Alpha
		s.alphaSet = true
	} else if a.Alpha != s.Alpha {
		warn = &errs.AlphabetMismatch{Path: a.Path, Expected: s.Alpha.String(), Got: a.Alpha.String()}
	}
	s.active.Set(a.Name, a)
	if a.LocusLength > 0 {
		// Appended at the set counter, so a conflict cannot arise.
		_ = s.Partitions.Add(a.Name, a.LocusLength, nil, nil, a.Path)
	}
	return warn
}

// Remove deletes the named alignment from the set, whether active or
// shelved, dropping its contribution to the set's partition model.
func (s *Set) Remove(name string) {
	if !s.active.Delete(name) {
		s.shelved.Delete(name)
	}
	s.Partitions.Remove(name)
}

// UpdateActive moves alignments between active and shelved so that exactly
// the named alignments end up active.
func (s *Set) UpdateActive(names []string) {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	newActive := omap.New[*Alignment]()
	newShelved := omap.New[*Alignment]()
	move := func(m *omap.Map[*Alignment]) {
		m.Each(func(name string, a *Alignment) bool {
			if want[name] {
				newActive.Set(name, a)
			} else {
				newShelved.Set(name, a)
			}
			return true
		})
	}
	move(s.active)
	move(s.shelved)
	s.active, s.shelved = newActive, newShelved
}

// Concatenate builds the single concatenated Alignment over all active
// alignments. Each taxon present in an alignment contributes its sequence
// verbatim; an absent taxon contributes a run of the missing symbol of
// that alignment's length. Partitions are appended in active order.
func (s *Set) Concatenate(sink progress.Sink) (*Alignment, error) {
	sink = progress.OrDiscard(sink)
	sink.SetStage("concatenating")

	taxa := s.TaxaNames()
	bufs := make(map[string]*strings.Builder, len(taxa))
	for _, t := range taxa {
		bufs[t] = &strings.Builder{}
	}

	parts := partition.New()
	names := s.active.Keys()
	sink.SetTotal(len(names))
	for i, name := range names {
		if sink.Cancelled() {
			return nil, &errs.Cancelled{}
		}
		a, _ := s.active.Get(name)
		if err := parts.Add(name, a.LocusLength, nil, nil, a.Path); err != nil {
			return nil, err
		}
		missing := strings.Repeat(string(a.Alpha.MissingSymbol()), a.LocusLength)
		for _, t := range taxa {
			if seq, ok := a.Rows.Get(t); ok {
				bufs[t].WriteString(seq)
			} else {
				bufs[t].WriteString(missing)
			}
		}
		sink.SetProgress(i + 1)
	}

	rows := omap.New[string]()
	for _, t := range taxa {
		rows.Set(t, bufs[t].String())
	}
	alpha := s.Alpha
	return New("concatenated", alpha, rows, parts), nil
}

// ReverseConcatenate splits a concatenated alignment (typically the sole
// active member) back into one Set entry per partition.
func (s *Set) ReverseConcatenate() (*Set, error) {
	if s.active.Len() != 1 {
		return nil, &errs.InvalidPartitionFile{Reason: "reverse_concatenate requires exactly one active alignment"}
	}
	var only *Alignment
	s.active.Each(func(_ string, a *Alignment) bool { only = a; return false })

	out := NewSet()
	out.Alpha, out.alphaSet = only.Alpha, true
	for _, sub := range only.ReverseConcatenate() {
		out.active.Set(sub.Name, sub)
	}
	return out, nil
}

// FilterMinTaxa removes (fully deletes, including its partition
// contribution) every active alignment whose row count is below
// ceil(pct/100 * |TaxaNames|).
func (s *Set) FilterMinTaxa(pct float64) {
	total := len(s.TaxaNames())
	min := int(math.Ceil(pct / 100 * float64(total)))
	kept := omap.New[*Alignment]()
	s.active.Each(func(name string, a *Alignment) bool {
		if a.Rows.Len() >= min {
			kept.Set(name, a)
		} else {
			s.Partitions.Remove(name)
		}
		return true
	})
	s.active = kept
}

// FilterByTaxa keeps ("contain") or drops ("exclude") active alignments
// based on whether they contain any of the listed taxa.
func (s *Set) FilterByTaxa(taxa []string, mode string) {
	want := make(map[string]bool, len(taxa))
	for _, t := range taxa {
		want[t] = true
	}
	kept := omap.New[*Alignment]()
	s.active.Each(func(name string, a *Alignment) bool {
		has := false
		a.Rows.Each(func(t string, _ string) bool {
			if want[t] {
				has = true
				return false
			}
			return true
		})
		keep := has
		if mode == "exclude" {
			keep = !has
		}
		if keep {
			kept.Set(name, a)
		} else {
			s.Partitions.Remove(name)
		}
		return true
	})
	s.active = kept
}

// FilterCodonPositions keeps, in every active alignment, the columns whose
// position mod 3 is flagged true in mask, and rebuilds each alignment's
// partitions as a single partition.
func (s *Set) FilterCodonPositions(mask [3]bool) {
	s.active.Each(func(name string, a *Alignment) bool {
		newRows := omap.New[string]()
		a.Rows.Each(func(t string, seq string) bool {
			buf := make([]byte, 0, len(seq))
			for i := 0; i < len(seq); i++ {
				if mask[i%3] {
					buf = append(buf, seq[i])
				}
			}
			newRows.Set(t, string(buf))
			return true
		})
		a.Rows = newRows
		if a.Rows.Len() > 0 {
			first, _ := a.Rows.Get(a.Rows.Keys()[0])
			a.LocusLength = len(first)
		} else {
			a.LocusLength = 0
		}
		a.Partitions = partition.New()
		a.Partitions.SetLength(name, a.LocusLength, a.Path)
		return true
	})
}

// FilterMissing applies FilterMissing to every active alignment.
func (s *Set) FilterMissing(gapPct, missingPct float64) {
	s.active.Each(func(_ string, a *Alignment) bool {
		a.FilterMissing(gapPct, missingPct)
		return true
	})
}

// RemoveTaxa applies RemoveTaxa to every active alignment.
func (s *Set) RemoveTaxa(taxa []string, mode string) {
	s.active.Each(func(_ string, a *Alignment) bool {
		a.RemoveTaxa(taxa, mode)
		return true
	})
}

// Collapse applies Collapse to every active alignment, returning the
// per-alignment haplotype mappings keyed by alignment name.
func (s *Set) Collapse(prefix string) map[string][]Haplotype {
	out := make(map[string][]Haplotype, s.active.Len())
	s.active.Each(func(name string, a *Alignment) bool {
		out[name] = a.Collapse(prefix)
		return true
	})
	return out
}

// CodeGaps applies CodeGaps to every active alignment.
func (s *Set) CodeGaps() {
	s.active.Each(func(_ string, a *Alignment) bool {
		a.CodeGaps()
		return true
	})
}
