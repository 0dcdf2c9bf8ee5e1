// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package align

import (
	"math"
	"testing"
)

func buildStatsSet(t *testing.T) *Set {
	t.Helper()
	dir := t.TempDir()
	p1 := writeFile(t, dir, "locusA.fasta", ">alpha\nACGT\n>beta\nACGA\n")
	p2 := writeFile(t, dir, "locusB.fasta", ">alpha\nTTTT\n>gamma\nGGGG\n")

	s := NewSet()
	if err := s.AddFile(p1); err != nil {
		t.Fatalf("AddFile a: %v", err)
	}
	if err := s.AddFile(p2); err != nil {
		t.Fatalf("AddFile b: %v", err)
	}
	return s
}

func TestGeneOccupancy(t *testing.T) {
	s := buildStatsSet(t)
	occ := s.GeneOccupancy()
	if occ["alpha"] != 1.0 {
		t.Fatalf("occupancy[alpha] = %v, want 1.0", occ["alpha"])
	}
	if occ["beta"] != 0.5 {
		t.Fatalf("occupancy[beta] = %v, want 0.5", occ["beta"])
	}
	if occ["gamma"] != 0.5 {
		t.Fatalf("occupancy[gamma] = %v, want 0.5", occ["gamma"])
	}
}

func TestMissingGenesPerSpecies(t *testing.T) {
	s := buildStatsSet(t)
	missing := s.MissingGenesPerSpecies()
	if missing["alpha"] != 0 {
		t.Fatalf("missing[alpha] = %d, want 0", missing["alpha"])
	}
	if missing["beta"] != 1 {
		t.Fatalf("missing[beta] = %d, want 1", missing["beta"])
	}
	if missing["gamma"] != 1 {
		t.Fatalf("missing[gamma] = %d, want 1", missing["gamma"])
	}
}

func TestMissingGenesAverage(t *testing.T) {
	s := buildStatsSet(t)
	mean, stddev := s.MissingGenesAverage()
	// per-taxon missing counts: alpha=0, beta=1, gamma=1 -> mean = 2/3.
	if math.Abs(mean-2.0/3.0) > 1e-9 {
		t.Fatalf("mean = %v, want %v", mean, 2.0/3.0)
	}
	if stddev < 0 {
		t.Fatalf("stddev = %v, want >= 0", stddev)
	}
}

func TestMissingDataPerSpecies(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "x.fasta", ">alpha\nAC-T\n>beta\nACGT\n")
	s := NewSet()
	if err := s.AddFile(p); err != nil {
		t.Fatalf("AddFile: %v", err)
	}
	miss := s.MissingDataPerSpecies()
	if miss["alpha"] != 0.25 {
		t.Fatalf("miss[alpha] = %v, want 0.25", miss["alpha"])
	}
	if miss["beta"] != 0 {
		t.Fatalf("miss[beta] = %v, want 0", miss["beta"])
	}
}

func TestAverageSeqsize(t *testing.T) {
	s := buildStatsSet(t)
	mean, _ := s.AverageSeqsize()
	if mean != 4 {
		t.Fatalf("mean locus length = %v, want 4", mean)
	}
}

func TestAverageSeqsizePerSpecies(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "x.fasta", ">alpha\nAC-T\n")
	s := NewSet()
	if err := s.AddFile(p); err != nil {
		t.Fatalf("AddFile: %v", err)
	}
	per := s.AverageSeqsizePerSpecies()
	mean := per["alpha"][0]
	if mean != 3 {
		t.Fatalf("mean ungapped size = %v, want 3", mean)
	}
}

func TestCharactersProportion(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "x.fasta", ">alpha\nAAAA\n")
	s := NewSet()
	if err := s.AddFile(p); err != nil {
		t.Fatalf("AddFile: %v", err)
	}
	prop := s.CharactersProportion()
	if prop['a'] != 1.0 {
		t.Fatalf("prop['a'] = %v, want 1.0", prop['a'])
	}
}

func TestVariableSiteCount(t *testing.T) {
	dir := t.TempDir()
	// Column 0: A,A constant. Column 1: C,G variable. Column 2: G,G
	// constant. Column 3: T,A variable.
	p := writeFile(t, dir, "x.fasta", ">alpha\nACGT\n>beta\nAGGA\n")
	s := NewSet()
	if err := s.AddFile(p); err != nil {
		t.Fatalf("AddFile: %v", err)
	}
	variable, total, err := s.VariableSiteCount(nil)
	if err != nil {
		t.Fatalf("VariableSiteCount: %v", err)
	}
	if total != 4 {
		t.Fatalf("total = %d, want 4", total)
	}
	if variable != 2 {
		t.Fatalf("variable = %d, want 2", variable)
	}
}

func TestSortedKeys(t *testing.T) {
	m := map[byte]float64{'c': 1, 'a': 2, 'b': 3}
	got := sortedKeys(m)
	want := []byte{'a', 'b', 'c'}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sortedKeys() = %v, want %v", got, want)
		}
	}
}
