// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package align

import (
	"sort"

	"github.com/armon/go-radix"
	"gonum.org/v1/gonum/stat"

	"github.com/kortschak/msatools/errs"
	"github.com/kortschak/msatools/progress"
)

// GeneOccupancy returns, for every taxon seen across active, the fraction
// of active alignments in which that taxon appears.
func (s *Set) GeneOccupancy() map[string]float64 {
	n := s.active.Len()
	counts := make(map[string]int)
	s.active.Each(func(_ string, a *Alignment) bool {
		a.Rows.Each(func(t string, _ string) bool {
			counts[t]++
			return true
		})
		return true
	})
	out := make(map[string]float64, len(counts))
	for t, c := range counts {
		out[t] = float64(c) / float64(n)
	}
	return out
}

// MissingGenesPerSpecies returns, per taxon, the number of active
// alignments from which that taxon is absent.
func (s *Set) MissingGenesPerSpecies() map[string]int {
	n := s.active.Len()
	present := make(map[string]int)
	s.active.Each(func(_ string, a *Alignment) bool {
		a.Rows.Each(func(t string, _ string) bool {
			present[t]++
			return true
		})
		return true
	})
	out := make(map[string]int, len(present))
	for _, t := range s.TaxaNames() {
		out[t] = n - present[t]
	}
	return out
}

// MissingGenesAverage returns the mean and standard deviation, across all
// taxa, of MissingGenesPerSpecies.
func (s *Set) MissingGenesAverage() (mean, stddev float64) {
	per := s.MissingGenesPerSpecies()
	if len(per) == 0 {
		return 0, 0
	}
	vals := make([]float64, 0, len(per))
	for _, n := range per {
		vals = append(vals, float64(n))
	}
	mean = stat.Mean(vals, nil)
	stddev = stat.StdDev(vals, nil)
	return mean, stddev
}

// MissingDataPerSpecies returns, per taxon, the proportion of gap/missing
// symbols across the taxon's concatenated presence in active alignments.
func (s *Set) MissingDataPerSpecies() map[string]float64 {
	total := make(map[string]int)
	miss := make(map[string]int)
	s.active.Each(func(_ string, a *Alignment) bool {
		gap, mis := a.Alpha.GapSymbol(), a.Alpha.MissingSymbol()
		a.Rows.Each(func(t string, seq string) bool {
			total[t] += len(seq)
			for i := 0; i < len(seq); i++ {
				if seq[i] == gap || seq[i] == mis {
					miss[t]++
				}
			}
			return true
		})
		return true
	})
	out := make(map[string]float64, len(total))
	for t, n := range total {
		if n == 0 {
			out[t] = 0
			continue
		}
		out[t] = float64(miss[t]) / float64(n)
	}
	return out
}

// AverageSeqsize returns the mean and standard deviation of LocusLength
// across active alignments.
func (s *Set) AverageSeqsize() (mean, stddev float64) {
	var vals []float64
	s.active.Each(func(_ string, a *Alignment) bool {
		vals = append(vals, float64(a.LocusLength))
		return true
	})
	if len(vals) == 0 {
		return 0, 0
	}
	return stat.Mean(vals, nil), stat.StdDev(vals, nil)
}

// AverageSeqsizePerSpecies returns, per taxon, the mean and standard
// deviation of the ungapped residue count across the alignments the taxon
// appears in.
func (s *Set) AverageSeqsizePerSpecies() map[string][2]float64 {
	sizes := make(map[string][]float64)
	s.active.Each(func(_ string, a *Alignment) bool {
		gap, mis := a.Alpha.GapSymbol(), a.Alpha.MissingSymbol()
		a.Rows.Each(func(t string, seq string) bool {
			n := 0
			for i := 0; i < len(seq); i++ {
				if seq[i] != gap && seq[i] != mis {
					n++
				}
			}
			sizes[t] = append(sizes[t], float64(n))
			return true
		})
		return true
	})
	out := make(map[string][2]float64, len(sizes))
	for t, vals := range sizes {
		out[t] = [2]float64{stat.Mean(vals, nil), stat.StdDev(vals, nil)}
	}
	return out
}

// CharactersProportion returns the overall frequency of each alphabet
// character (residues plus gap/missing symbols) across active alignments.
func (s *Set) CharactersProportion() map[byte]float64 {
	counts := make(map[byte]int)
	total := 0
	s.active.Each(func(_ string, a *Alignment) bool {
		a.Rows.Each(func(_ string, seq string) bool {
			for i := 0; i < len(seq); i++ {
				counts[seq[i]]++
				total++
			}
			return true
		})
		return true
	})
	out := make(map[byte]float64, len(counts))
	if total == 0 {
		return out
	}
	for c, n := range counts {
		out[c] = float64(n) / float64(total)
	}
	return out
}

// CharactersProportionPerSpecies is CharactersProportion broken down per
// taxon.
func (s *Set) CharactersProportionPerSpecies() map[string]map[byte]float64 {
	counts := make(map[string]map[byte]int)
	totals := make(map[string]int)
	s.active.Each(func(_ string, a *Alignment) bool {
		a.Rows.Each(func(t string, seq string) bool {
			m, ok := counts[t]
			if !ok {
				m = make(map[byte]int)
				counts[t] = m
			}
			for i := 0; i < len(seq); i++ {
				m[seq[i]]++
				totals[t]++
			}
			return true
		})
		return true
	})
	out := make(map[string]map[byte]float64, len(counts))
	for t, m := range counts {
		n := totals[t]
		pm := make(map[byte]float64, len(m))
		for c, k := range m {
			pm[c] = float64(k) / float64(n)
		}
		out[t] = pm
	}
	return out
}

// VariableSiteCount returns the number of variable (non-constant) columns
// and the total column count across a concatenated view of active, using a
// radix tree to deduplicate repeated column patterns instead of an O(n^2)
// pairwise scan.
func (s *Set) VariableSiteCount(sink progress.Sink) (variable, total int, err error) {
	sink = progress.OrDiscard(sink)
	sink.SetStage("variable_site_count")

	concat, cerr := s.Concatenate(progress.Discard)
	if cerr != nil {
		return 0, 0, cerr
	}

	taxa := concat.Rows.Keys()
	seqs := make([]string, len(taxa))
	for i, t := range taxa {
		seqs[i], _ = concat.Rows.Get(t)
	}
	if len(seqs) == 0 {
		return 0, 0, nil
	}

	tree := radix.New()
	sink.SetTotal(concat.LocusLength)
	col := make([]byte, len(seqs))
	for i := 0; i < concat.LocusLength; i++ {
		if sink.Cancelled() {
			return 0, 0, &errs.Cancelled{}
		}
		for j, seq := range seqs {
			if i < len(seq) {
				col[j] = seq[i]
			} else {
				col[j] = concat.Alpha.MissingSymbol()
			}
		}
		key := string(col)
		isVar, seen := tree.Get(key)
		if !seen {
			isVar = !isConstantColumn(col)
			tree.Insert(key, isVar)
		}
		if isVar.(bool) {
			variable++
		}
		total++
		sink.SetProgress(i + 1)
	}
	return variable, total, nil
}

func isConstantColumn(col []byte) bool {
	if len(col) == 0 {
		return true
	}
	first := col[0]
	for _, c := range col[1:] {
		if c != first {
			return false
		}
	}
	return true
}

// sortedKeys is a small helper used by callers that want a stable iteration
// order over the byte-keyed maps above.
func sortedKeys(m map[byte]float64) []byte {
	out := make([]byte, 0, len(m))
	for c := range m {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
