// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package align

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"

	"github.com/kortschak/msatools/errs"
	"github.com/kortschak/msatools/progress"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestSetAddFileAndTaxaNames(t *testing.T) {
	dir := t.TempDir()
	p1 := writeFile(t, dir, "a.fasta", ">alpha\nACGT\n>beta\nACGA\n")
	p2 := writeFile(t, dir, "b.fasta", ">beta\nTTTT\n>gamma\nGGGG\n")

	s := NewSet()
	if err := s.AddFile(p1); err != nil {
		t.Fatalf("AddFile a: %v", err)
	}
	if err := s.AddFile(p2); err != nil {
		t.Fatalf("AddFile b: %v", err)
	}

	want := []string{"alpha", "beta", "gamma"}
	if !reflect.DeepEqual(s.TaxaNames(), want) {
		t.Fatalf("TaxaNames() = %v, want %v", s.TaxaNames(), want)
	}
	if len(s.Active()) != 2 {
		t.Fatalf("Active() = %v, want 2 entries", s.Active())
	}
}

func TestSetAddDuplicateName(t *testing.T) {
	dir := t.TempDir()
	p1 := writeFile(t, dir, "a.fasta", ">alpha\nACGT\n")

	s := NewSet()
	if err := s.AddFile(p1); err != nil {
		t.Fatalf("AddFile: %v", err)
	}
	a2, err := ParseFile(p1)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	a2.Name = "a" // same derived name as the first add (basename without ext)
	if err := s.Add(a2); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if len(s.Duplicates) != 1 {
		t.Fatalf("Duplicates = %v, want 1 entry", s.Duplicates)
	}
}

func TestSetConcatenatePadsMissingTaxa(t *testing.T) {
	dir := t.TempDir()
	p1 := writeFile(t, dir, "locusA.fasta", ">alpha\nACGT\n>beta\nACGA\n")
	p2 := writeFile(t, dir, "locusB.fasta", ">alpha\nTTTT\n")

	s := NewSet()
	if err := s.AddFile(p1); err != nil {
		t.Fatalf("AddFile a: %v", err)
	}
	if err := s.AddFile(p2); err != nil {
		t.Fatalf("AddFile b: %v", err)
	}

	cat, err := s.Concatenate(nil)
	if err != nil {
		t.Fatalf("Concatenate: %v", err)
	}
	alpha, _ := cat.Rows.Get("alpha")
	beta, _ := cat.Rows.Get("beta")
	if alpha != "acgttttt" {
		t.Fatalf("alpha = %q, want acgttttt", alpha)
	}
	missing := string(cat.Alpha.MissingSymbol())
	wantBeta := "acga" + missing + missing + missing + missing
	if beta != wantBeta {
		t.Fatalf("beta = %q, want %q", beta, wantBeta)
	}
	if cat.Partitions.Counter() != 8 {
		t.Fatalf("Partitions.Counter() = %d, want 8", cat.Partitions.Counter())
	}
	if got, want := cat.Partitions.Names(), []string{"locusA", "locusB"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("partition names = %v, want %v", got, want)
	}
}

func TestSetFilterMinTaxa(t *testing.T) {
	dir := t.TempDir()
	// Locus "small" has only 1 of 3 total taxa (33%); locus "full" has all 3.
	small := writeFile(t, dir, "small.fasta", ">alpha\nACGT\n")
	full := writeFile(t, dir, "full.fasta", ">alpha\nACGT\n>beta\nACGA\n>gamma\nTTTT\n")

	s := NewSet()
	if err := s.AddFile(small); err != nil {
		t.Fatalf("AddFile small: %v", err)
	}
	if err := s.AddFile(full); err != nil {
		t.Fatalf("AddFile full: %v", err)
	}

	s.FilterMinTaxa(50) // ceil(0.5*3) = 2 minimum rows
	active := s.Active()
	sort.Strings(active)
	if !reflect.DeepEqual(active, []string{"full"}) {
		t.Fatalf("Active() after FilterMinTaxa = %v, want [full]", active)
	}
}

func TestSetFilterByTaxaContainExclude(t *testing.T) {
	dir := t.TempDir()
	p1 := writeFile(t, dir, "withAlpha.fasta", ">alpha\nACGT\n>beta\nACGA\n")
	p2 := writeFile(t, dir, "withoutAlpha.fasta", ">gamma\nTTTT\n>delta\nGGGG\n")

	newSet := func() *Set {
		s := NewSet()
		if err := s.AddFile(p1); err != nil {
			t.Fatalf("AddFile: %v", err)
		}
		if err := s.AddFile(p2); err != nil {
			t.Fatalf("AddFile: %v", err)
		}
		return s
	}

	contain := newSet()
	contain.FilterByTaxa([]string{"alpha"}, "contain")
	if got := contain.Active(); !reflect.DeepEqual(got, []string{"withAlpha"}) {
		t.Fatalf("contain mode Active() = %v, want [withAlpha]", got)
	}

	exclude := newSet()
	exclude.FilterByTaxa([]string{"alpha"}, "exclude")
	if got := exclude.Active(); !reflect.DeepEqual(got, []string{"withoutAlpha"}) {
		t.Fatalf("exclude mode Active() = %v, want [withoutAlpha]", got)
	}
}

func TestSetFilterCodonPositions(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "cds.fasta", ">alpha\nACGACGACG\n>beta\nTTTTTTTTT\n")

	s := NewSet()
	if err := s.AddFile(p); err != nil {
		t.Fatalf("AddFile: %v", err)
	}
	s.FilterCodonPositions([3]bool{true, false, false})

	a, ok := s.Get("cds")
	if !ok {
		t.Fatal("Get(cds) missing")
	}
	alpha, _ := a.Rows.Get("alpha")
	if alpha != "aaa" {
		t.Fatalf("alpha (1st codon positions) = %q, want aaa", alpha)
	}
	if a.LocusLength != 3 {
		t.Fatalf("LocusLength = %d, want 3", a.LocusLength)
	}
	if a.Partitions.Counter() != 3 {
		t.Fatalf("Partitions.Counter() = %d, want 3", a.Partitions.Counter())
	}
	if !a.Partitions.IsSingle() {
		t.Fatal("expected a single rebuilt partition after codon filtering")
	}
}

func TestSetUpdateActiveShelvesAndRestores(t *testing.T) {
	dir := t.TempDir()
	p1 := writeFile(t, dir, "a.fasta", ">alpha\nACGT\n")
	p2 := writeFile(t, dir, "b.fasta", ">alpha\nACGT\n")

	s := NewSet()
	if err := s.AddFile(p1); err != nil {
		t.Fatalf("AddFile a: %v", err)
	}
	if err := s.AddFile(p2); err != nil {
		t.Fatalf("AddFile b: %v", err)
	}

	s.UpdateActive([]string{"a"})
	if got := s.Active(); !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatalf("Active() = %v, want [a]", got)
	}
	if got := s.Shelved(); !reflect.DeepEqual(got, []string{"b"}) {
		t.Fatalf("Shelved() = %v, want [b]", got)
	}

	s.UpdateActive([]string{"a", "b"})
	active := s.Active()
	sort.Strings(active)
	if !reflect.DeepEqual(active, []string{"a", "b"}) {
		t.Fatalf("Active() after restoring b = %v, want [a b]", active)
	}
	if len(s.Shelved()) != 0 {
		t.Fatalf("Shelved() = %v, want empty", s.Shelved())
	}
}

func TestSetRemoveDropsPartitionContribution(t *testing.T) {
	dir := t.TempDir()
	p1 := writeFile(t, dir, "a.fasta", ">alpha\nACGT\n")
	p2 := writeFile(t, dir, "b.fasta", ">alpha\nTTTT\n")

	s := NewSet()
	if err := s.AddFile(p1); err != nil {
		t.Fatalf("AddFile a: %v", err)
	}
	if err := s.AddFile(p2); err != nil {
		t.Fatalf("AddFile b: %v", err)
	}
	if got, want := s.Partitions.Names(), []string{"a", "b"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Partitions.Names() = %v, want %v", got, want)
	}

	s.Remove("a")
	if _, ok := s.Get("a"); ok {
		t.Fatal("alignment a still retrievable after Remove")
	}
	if got, want := s.Partitions.Names(), []string{"b"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Partitions.Names() after Remove = %v, want %v", got, want)
	}
}

func TestSetConcatenateCancellation(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "a.fasta", ">alpha\nACGT\n")

	s := NewSet()
	if err := s.AddFile(p); err != nil {
		t.Fatalf("AddFile: %v", err)
	}

	sink := &progress.Counter{Cancel: true}
	_, err := s.Concatenate(sink)
	var cancelled *errs.Cancelled
	if !errors.As(err, &cancelled) {
		t.Fatalf("Concatenate with cancelled sink = %v, want errs.Cancelled", err)
	}
}
