// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ortho implements the ortholog group engine: a streaming parser
// for OrthoMCL-style groups files, per-cluster species-frequency tracking,
// gene- and species-presence threshold filters, and a collection type
// fanning the same operations out over many group files.
package ortho

import "strings"

// Cluster is the strict, fully in-memory representation of one ortholog
// cluster: a name, its raw "TAXON|GENE" sequence identifiers, and a
// species-frequency map derived from them. GroupFile keeps only the
// frequency map of each cluster resident in memory (see groupfile.go); a
// Cluster is materialized on demand by callers that need the raw tokens,
// e.g. the sequence-DB join.
type Cluster struct {
	Name             string
	Sequences        []string
	SpeciesFrequency map[string]int

	// GeneCompliant and SpeciesCompliant are tri-state: nil until
	// ApplyFilter is called, then compliant or non-compliant.
	GeneCompliant    *bool
	SpeciesCompliant *bool
}

// ParseClusterLine parses one non-blank line of a groups file: "NAME: tok1
// tok2 ...", each token "TAXON|GENE".
func ParseClusterLine(line string) (*Cluster, error) {
	name, tokens, err := splitClusterLine(line)
	if err != nil {
		return nil, err
	}
	return &Cluster{
		Name:             name,
		Sequences:        tokens,
		SpeciesFrequency: frequency(tokens),
	}, nil
}

// splitClusterLine splits "NAME: tok1 tok2 ..." into its name and
// whitespace-separated tokens.
func splitClusterLine(line string) (name string, tokens []string, err error) {
	i := strings.IndexByte(line, ':')
	if i < 0 {
		return "", nil, &parseError{line: line, reason: "missing ':' separator"}
	}
	name = strings.TrimSpace(line[:i])
	tokens = strings.Fields(line[i+1:])
	return name, tokens, nil
}

// taxonOf returns the taxon portion of a "TAXON|GENE" token: everything
// before the first '|'.
func taxonOf(token string) string {
	if i := strings.IndexByte(token, '|'); i >= 0 {
		return token[:i]
	}
	return token
}

// frequency counts the taxa named by tokens.
func frequency(tokens []string) map[string]int {
	f := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		f[taxonOf(tok)]++
	}
	return f
}

// RemoveTaxa drops every token belonging to a taxon in taxa from
// Sequences and SpeciesFrequency.
func (c *Cluster) RemoveTaxa(taxa []string) {
	drop := make(map[string]bool, len(taxa))
	for _, t := range taxa {
		drop[t] = true
	}
	kept := c.Sequences[:0:0]
	for _, tok := range c.Sequences {
		if !drop[taxonOf(tok)] {
			kept = append(kept, tok)
		}
	}
	c.Sequences = kept
	for t := range drop {
		delete(c.SpeciesFrequency, t)
	}
}

// ApplyFilter sets GeneCompliant and SpeciesCompliant against the given
// thresholds.
func (c *Cluster) ApplyFilter(geneThreshold, speciesThreshold *int) {
	gene, species, _ := Compliance(c.SpeciesFrequency, geneThreshold, speciesThreshold)
	c.GeneCompliant = &gene
	c.SpeciesCompliant = &species
}

// maxFreq returns the largest value in f, and whether f is non-empty.
func maxFreq(f map[string]int) (int, bool) {
	max := 0
	ok := false
	for _, v := range f {
		if !ok || v > max {
			max = v
			ok = true
		}
	}
	return max, ok
}

// Compliance evaluates the species-compliant, gene-compliant, and overall
// predicates over a cluster's species-frequency map: species-compliant
// iff the map has at least speciesThreshold distinct taxa, gene-compliant
// iff no taxon exceeds geneThreshold copies. A nil threshold leaves its
// predicate (and so the overall predicate) false. An empty frequency map
// (all taxa excluded) is never compliant.
func Compliance(freq map[string]int, geneThreshold, speciesThreshold *int) (gene, species, all bool) {
	if len(freq) == 0 {
		return false, false, false
	}
	if speciesThreshold != nil && len(freq) >= *speciesThreshold {
		species = true
	}
	if max, ok := maxFreq(freq); ok && geneThreshold != nil && max <= *geneThreshold {
		gene = true
	}
	all = gene && species
	return gene, species, all
}

// parseError is ortho's minimal line-level parse failure; it is wrapped
// into errs.ParseError by the caller, which knows the file path and line
// number that splitClusterLine itself does not.
type parseError struct {
	line   string
	reason string
}

func (e *parseError) Error() string { return e.reason + ": " + e.line }
