// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package align

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kortschak/msatools/errs"
	"github.com/kortschak/msatools/internal/omap"
	"github.com/kortschak/msatools/partition"
	"github.com/kortschak/msatools/seqalpha"
)

// illegalTaxonChars are stripped silently from taxon names on parse.
const illegalTaxonChars = " \t\r\n:,();'"

// Alignment is one parsed alignment: an ordered taxon -> sequence map plus
// its partition model. Alignment holds no back-reference to any
// AlignmentSet that may contain it.
type Alignment struct {
	Name   string
	Path   string
	Format Format
	Alpha  seqalpha.Kind

	LocusLength int
	Rows        *omap.Map[string]
	Partitions  *partition.Model

	// RestrictionRange is set by CodeGaps; once non-nil, only Nexus output
	// is permitted.
	RestrictionRange *partition.Range

	// IsAlignment is false when rows were not all of equal length after
	// parsing; the rows remain accessible regardless.
	IsAlignment bool
}

// New builds an Alignment from an explicit rows map and partition model,
// the construction path used by reverse-concatenation and by hosts that
// already have in-memory data rather than a file.
func New(name string, alpha seqalpha.Kind, rows *omap.Map[string], parts *partition.Model) *Alignment {
	a := &Alignment{
		Name:        name,
		Alpha:       alpha,
		Rows:        rows,
		Partitions:  parts,
		LocusLength: parts.Counter(),
	}
	a.IsAlignment = a.checkEqualLength()
	return a
}

func cleanTaxon(name string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(illegalTaxonChars, r) {
			return -1
		}
		return r
	}, name)
}

func (a *Alignment) checkEqualLength() bool {
	ok := true
	a.Rows.Each(func(_ string, seq string) bool {
		if len(seq) != a.LocusLength {
			ok = false
		}
		return true
	})
	return ok
}

// ParseFile reads path, probes its format, and parses it into an
// Alignment. Per-file errors (FormatUnknown, ParseError, DuplicateTaxon)
// are returned for the caller to route into AlignmentSet's bad/
// unequal_length lists; UnequalLengthError is returned alongside a non-nil
// Alignment whose IsAlignment field is false.
func ParseFile(path string) (*Alignment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	format, err := ProbeFormat(path, f)
	if err != nil {
		return nil, err
	}
	if _, err := f.Seek(0, 0); err != nil {
		return nil, err
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	var a *Alignment
	switch format {
	case FASTA:
		a, err = parseFASTA(f, name, path)
	case PHYLIP:
		a, err = parsePHYLIP(f, name, path)
	case NEXUS:
		a, err = parseNEXUS(f, name, path)
	case LOCI:
		a, err = parseLOCI(f, name, path)
	default:
		return nil, &errs.FormatUnknown{Path: path}
	}
	if err != nil {
		return nil, err
	}
	a.Path = path
	a.Format = format

	if !a.checkEqualLength() {
		a.IsAlignment = false
		return a, &errs.UnequalLengthError{Path: path}
	}
	a.IsAlignment = true
	return a, nil
}

// RemoveTaxa filters Rows in place. mode "remove" drops the listed taxa;
// mode "inverse" keeps only the listed taxa.
func (a *Alignment) RemoveTaxa(taxa []string, mode string) {
	want := make(map[string]bool, len(taxa))
	for _, t := range taxa {
		want[t] = true
	}
	kept := omap.New[string]()
	a.Rows.Each(func(name string, seq string) bool {
		in := want[name]
		switch mode {
		case "inverse":
			if in {
				kept.Set(name, seq)
			}
		default: // "remove"
			if !in {
				kept.Set(name, seq)
			}
		}
		return true
	})
	a.Rows = kept
}

// FilterMissing applies the missing-data column filter and rebuilds
// Partitions as a single partition covering the new length; any previous
// multi-partition layout is dropped.
func (a *Alignment) FilterMissing(gapPct, missingPct float64) {
	newRows, newLen := filterMissingColumns(a.Rows, a.LocusLength, gapPct, missingPct, a.Alpha.GapSymbol(), a.Alpha.MissingSymbol())
	a.Rows = newRows
	a.LocusLength = newLen
	a.Partitions = partition.New()
	a.Partitions.SetLength(a.Name, newLen, a.Path)
	a.IsAlignment = a.checkEqualLength()
}

// Collapse groups taxa with identical sequences into haplotypes named
// prefix_i (1-based, in the order the distinct sequence is first seen). It
// returns the haplotype -> source-taxa mapping in the same order.
func (a *Alignment) Collapse(prefix string) []Haplotype {
	type entry struct {
		hapName string
		seq     string
	}
	seqToHap := make(map[string]string)
	var order []entry
	mapping := omap.New[[]string]()

	a.Rows.Each(func(taxon, seq string) bool {
		hap, ok := seqToHap[seq]
		if !ok {
			hap = fmt.Sprintf("%s_%d", prefix, len(order)+1)
			seqToHap[seq] = hap
			order = append(order, entry{hap, seq})
		}
		taxa, _ := mapping.Get(hap)
		mapping.Set(hap, append(taxa, taxon))
		return true
	})

	newRows := omap.New[string]()
	for _, e := range order {
		newRows.Set(e.hapName, e.seq)
	}
	a.Rows = newRows

	out := make([]Haplotype, 0, len(order))
	for _, e := range order {
		taxa, _ := mapping.Get(e.hapName)
		out = append(out, Haplotype{Name: e.hapName, Taxa: taxa})
	}
	return out
}

// Haplotype names the taxa collapsed into one representative row.
type Haplotype struct {
	Name string
	Taxa []string
}

// WriteHaplotypesSidecar writes the ".haplotypes" sidecar format, one
// "HAP_i: tx1; tx2; ..." line per haplotype.
func WriteHaplotypesSidecar(w io.Writer, haps []Haplotype) error {
	for _, h := range haps {
		if _, err := fmt.Fprintf(w, "%s: %s\n", h.Name, strings.Join(h.Taxa, "; ")); err != nil {
			return err
		}
	}
	return nil
}

// ReverseConcatenate splits a into one sub-alignment per partition, using
// Partitions to locate each slice. A taxon whose slice, after stripping the
// missing symbol, is empty is dropped from that sub-alignment.
func (a *Alignment) ReverseConcatenate() []*Alignment {
	var out []*Alignment
	a.Partitions.Iter(func(name string, p *partition.Partition) bool {
		rows := omap.New[string]()
		a.Rows.Each(func(taxon, seq string) bool {
			if p.Range.End > len(seq) {
				return true
			}
			slice := seq[p.Range.Start:p.Range.End]
			stripped := strings.ReplaceAll(slice, string(a.Alpha.MissingSymbol()), "")
			if stripped == "" {
				return true
			}
			rows.Set(taxon, slice)
			return true
		})
		parts := partition.New()
		parts.SetLength(name, p.Range.Len(), a.Path)
		out = append(out, New(name, a.Alpha, rows, parts))
		return true
	})
	return out
}

// CodeGaps appends the Simmons & Ochoterena binary indel-coding matrix to
// every row and sets RestrictionRange. After this call only Nexus output is
// legal (enforced by writer.Write).
func (a *Alignment) CodeGaps() {
	type run struct{ start, end int } // [start, end), over original LocusLength

	runsOf := func(seq string) []run {
		var out []run
		i := 0
		for i < len(seq) {
			if seq[i] != '-' {
				i++
				continue
			}
			j := i
			for j < len(seq) && seq[j] == '-' {
				j++
			}
			out = append(out, run{i, j})
			i = j
		}
		return out
	}

	var events []run
	seen := make(map[run]bool)
	taxa := a.Rows.Keys()
	perTaxonRuns := make(map[string][]run, len(taxa))
	for _, t := range taxa {
		seq, _ := a.Rows.Get(t)
		rs := runsOf(seq)
		perTaxonRuns[t] = rs
		for _, r := range rs {
			if !seen[r] {
				seen[r] = true
				events = append(events, r)
			}
		}
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].start != events[j].start {
			return events[i].start < events[j].start
		}
		return events[i].end < events[j].end
	})

	overlaps := func(x, y run) bool { return x.start < y.end && y.start < x.end }

	newRows := omap.New[string]()
	for _, t := range taxa {
		seq, _ := a.Rows.Get(t)
		rs := perTaxonRuns[t]
		var code strings.Builder
		for _, ev := range events {
			matched := false
			ambiguous := false
			for _, r := range rs {
				if r == ev {
					matched = true
					break
				}
				if overlaps(r, ev) {
					ambiguous = true
				}
			}
			switch {
			case matched:
				code.WriteByte('1')
			case ambiguous:
				code.WriteByte('-')
			default:
				code.WriteByte('0')
			}
		}
		newRows.Set(t, seq+code.String())
	}

	oldLen := a.LocusLength
	newLen := oldLen + len(events)
	a.Rows = newRows
	a.LocusLength = newLen
	// RestrictionRange spans [oldLen, newLen), i.e. columns oldLen..newLen-1
	// inclusive.
	a.RestrictionRange = &partition.Range{Start: oldLen, End: newLen}
}
