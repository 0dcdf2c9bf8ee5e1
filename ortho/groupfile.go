// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ortho

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/kortschak/msatools/errs"
	"github.com/kortschak/msatools/progress"
)

// GroupFile is a memory-frugal representation of one OrthoMCL groups file:
// the raw cluster text is never held in memory, only the per-cluster
// species-frequency map, which is what every filter and statistic actually
// needs. A second pass that needs the raw tokens (IterClusters, ClusterAt,
// the sequence-DB join) re-reads Path and advances line by line in lockstep with Frequency.
type GroupFile struct {
	Path string

	// GeneThreshold and SpeciesThreshold are nil until set; see
	// Compliance for the "undefined" semantics of a nil threshold.
	GeneThreshold    *int
	SpeciesThreshold *int

	// Names holds the cluster name of line i, aligned with Frequency.
	Names []string
	// Frequency holds the species-frequency map of line i.
	Frequency []map[string]int

	// SpeciesList is the distinct taxa observed, in first-appearance
	// order.
	SpeciesList []string

	TotalSeqs    int
	MaxExtraCopy int

	ExcludedTaxa []string

	numGeneCompliant    int
	numSpeciesCompliant int
	numAllCompliant     int
}

// Open parses path once, populating Frequency, TotalSeqs, MaxExtraCopy and
// SpeciesList. If both thresholds are non-nil, per-cluster compliance
// counters are also populated in the same pass.
func Open(path string, geneThreshold, speciesThreshold *int, sink progress.Sink) (*GroupFile, error) {
	sink = progress.OrDiscard(sink)
	sink.SetStage("parsing groups file")

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	gf := &GroupFile{
		Path:             path,
		GeneThreshold:    geneThreshold,
		SpeciesThreshold: speciesThreshold,
	}
	seenSpecies := make(map[string]bool)

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	lineNo := 0
	for sc.Scan() {
		if sink.Cancelled() {
			return nil, &errs.Cancelled{}
		}
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		name, tokens, err := splitClusterLine(line)
		if err != nil {
			return nil, &errs.ParseError{Path: path, Line: lineNo, Reason: err.Error()}
		}
		freq := frequency(tokens)

		gf.Names = append(gf.Names, name)
		gf.Frequency = append(gf.Frequency, freq)
		gf.TotalSeqs += len(tokens)

		if max, ok := maxFreq(freq); ok && max > gf.MaxExtraCopy {
			gf.MaxExtraCopy = max
		}
		for _, tok := range tokens {
			sp := taxonOf(tok)
			if !seenSpecies[sp] {
				seenSpecies[sp] = true
				gf.SpeciesList = append(gf.SpeciesList, sp)
			}
		}
		sink.SetProgress(lineNo)
	}
	if err := sc.Err(); err != nil {
		return nil, &errs.ParseError{Path: path, Line: lineNo, Reason: err.Error()}
	}

	if geneThreshold != nil && speciesThreshold != nil {
		gf.recount()
	}
	return gf, nil
}

// Len reports the number of clusters.
func (gf *GroupFile) Len() int { return len(gf.Frequency) }

// recount sweeps every cluster's frequency map and refreshes the
// compliance counters from scratch. Counters are never adjusted
// incrementally: ExcludeTaxa always ends with a full re-sweep, and
// UpdateFilters does when recompute is true. After UpdateFilters with
// recompute false the counters still reflect the previous thresholds.
func (gf *GroupFile) recount() {
	gf.numGeneCompliant, gf.numSpeciesCompliant, gf.numAllCompliant = 0, 0, 0
	for _, freq := range gf.Frequency {
		gene, species, all := Compliance(freq, gf.GeneThreshold, gf.SpeciesThreshold)
		if gene {
			gf.numGeneCompliant++
		}
		if species {
			gf.numSpeciesCompliant++
		}
		if all {
			gf.numAllCompliant++
		}
	}
}

// Counters returns the current (gene-compliant, species-compliant,
// all-compliant) cluster counts.
func (gf *GroupFile) Counters() (geneCompliant, speciesCompliant, allCompliant int) {
	return gf.numGeneCompliant, gf.numSpeciesCompliant, gf.numAllCompliant
}

// ExcludeTaxa deletes each listed taxon from every cluster's frequency map,
// drops it from SpeciesList, and recomputes the compliance counters by a
// full re-sweep. An emptied cluster contributes zero to all counters.
func (gf *GroupFile) ExcludeTaxa(taxa []string) {
	gf.ExcludedTaxa = append(gf.ExcludedTaxa, taxa...)
	drop := make(map[string]bool, len(taxa))
	for _, t := range taxa {
		drop[t] = true
	}
	for _, freq := range gf.Frequency {
		for t := range drop {
			delete(freq, t)
		}
	}
	kept := gf.SpeciesList[:0:0]
	for _, sp := range gf.SpeciesList {
		if !drop[sp] {
			kept = append(kept, sp)
		}
	}
	gf.SpeciesList = kept
	gf.recount()
}

// UpdateFilters sets new thresholds. If recompute is true, the compliance
// counters are refreshed by a full re-sweep; otherwise the stale counters
// are left as they were until the next recounting operation.
func (gf *GroupFile) UpdateFilters(geneThreshold, speciesThreshold int, recompute bool) {
	gf.GeneThreshold = &geneThreshold
	gf.SpeciesThreshold = &speciesThreshold
	if recompute {
		gf.recount()
	}
}

// IterClusters re-opens Path and walks it line by line in lockstep with
// Frequency, calling fn with each cluster's index, name, raw tokens and
// frequency map. It stops and returns fn's error if fn returns one.
func (gf *GroupFile) IterClusters(fn func(i int, name string, tokens []string, freq map[string]int) error) error {
	f, err := os.Open(gf.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	i := 0
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if i >= len(gf.Frequency) {
			return fmt.Errorf("ortho: groups file %s has more clusters than recorded frequencies", gf.Path)
		}
		_, tokens, err := splitClusterLine(line)
		if err != nil {
			return &errs.ParseError{Path: gf.Path, Reason: err.Error()}
		}
		if err := fn(i, gf.Names[i], tokens, gf.Frequency[i]); err != nil {
			return err
		}
		i++
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return nil
}

var errStopIter = fmt.Errorf("ortho: stop iteration")

// ClusterAt materializes the strict, fully in-memory Cluster at index i by
// re-reading Path up to that line, for callers (the sequence-DB join) that
// need the raw token list rather than just the frequency map.
func (gf *GroupFile) ClusterAt(i int) (*Cluster, error) {
	if i < 0 || i >= gf.Len() {
		return nil, fmt.Errorf("ortho: cluster index %d out of range [0,%d)", i, gf.Len())
	}
	var found *Cluster
	err := gf.IterClusters(func(j int, name string, tokens []string, freq map[string]int) error {
		if j != i {
			return nil
		}
		found = &Cluster{Name: name, Sequences: tokens, SpeciesFrequency: freq}
		return errStopIter
	})
	if err != nil && err != errStopIter {
		return nil, err
	}
	return found, nil
}

// Statistics is the shape of GroupFile.BasicStatistics and of the
// aggregated statistics a GroupSet accumulates across members.
type Statistics struct {
	TotalClusters    int
	TotalSeqs        int
	GeneCompliant    int
	SpeciesCompliant int
	AllCompliant     int
}

// BasicStatistics returns the total cluster, total sequence, and
// per-predicate compliant cluster counts. If update is true, the counters
// are refreshed by a full re-sweep first.
func (gf *GroupFile) BasicStatistics(update bool) Statistics {
	if update {
		gf.recount()
	}
	return Statistics{
		TotalClusters:    gf.Len(),
		TotalSeqs:        gf.TotalSeqs,
		GeneCompliant:    gf.numGeneCompliant,
		SpeciesCompliant: gf.numSpeciesCompliant,
		AllCompliant:     gf.numAllCompliant,
	}
}
