// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ortho

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGroupSetAddGetPersistRoundTrip(t *testing.T) {
	scratch := t.TempDir()
	set, err := NewGroupSet(scratch)
	if err != nil {
		t.Fatalf("NewGroupSet: %v", err)
	}

	path := writeGroupsFile(t, sampleGroups)
	if err := set.AddFile(path, nil); err != nil {
		t.Fatalf("AddFile: %v", err)
	}
	if len(set.Names()) != 1 || set.Names()[0] != path {
		t.Fatalf("Names() = %v, want [%s]", set.Names(), path)
	}

	gf, err := set.Get(path)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if gf.Len() != 3 {
		t.Fatalf("Len() after round trip = %d, want 3", gf.Len())
	}
	if gf.TotalSeqs != 10 {
		t.Fatalf("TotalSeqs after round trip = %d, want 10", gf.TotalSeqs)
	}

	entries, err := os.ReadDir(scratch)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly one scratch blob, got %d", len(entries))
	}
}

func TestGroupSetDuplicateDetection(t *testing.T) {
	scratch := t.TempDir()
	set, err := NewGroupSet(scratch)
	if err != nil {
		t.Fatalf("NewGroupSet: %v", err)
	}
	path := writeGroupsFile(t, sampleGroups)
	if err := set.AddFile(path, nil); err != nil {
		t.Fatalf("AddFile: %v", err)
	}
	if err := set.AddFile(path, nil); err != nil {
		t.Fatalf("AddFile (duplicate): %v", err)
	}
	if len(set.Duplicates) != 1 || set.Duplicates[0] != path {
		t.Fatalf("Duplicates = %v, want [%s]", set.Duplicates, path)
	}
	if len(set.Names()) != 1 {
		t.Fatalf("Names() should still have one entry, got %v", set.Names())
	}
}

func TestGroupSetUpdateFiltersFanOut(t *testing.T) {
	scratch := t.TempDir()
	set, err := NewGroupSet(scratch)
	if err != nil {
		t.Fatalf("NewGroupSet: %v", err)
	}
	pathA := writeGroupsFile(t, sampleGroups)
	pathB := filepath.Join(t.TempDir(), "groups2.txt")
	if err := os.WriteFile(pathB, []byte(sampleGroups), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := set.AddFile(pathA, nil); err != nil {
		t.Fatalf("AddFile A: %v", err)
	}
	if err := set.AddFile(pathB, nil); err != nil {
		t.Fatalf("AddFile B: %v", err)
	}

	if err := set.UpdateFilters(2, 3, nil, true); err != nil {
		t.Fatalf("UpdateFilters: %v", err)
	}
	for _, name := range set.Names() {
		st, ok := set.Statistics(name)
		if !ok {
			t.Fatalf("Statistics(%s) missing", name)
		}
		if st.SpeciesCompliant != 1 {
			t.Fatalf("member %s: SpeciesCompliant = %d, want 1", name, st.SpeciesCompliant)
		}
	}
}

func TestGroupSetExcludeTaxaFanOut(t *testing.T) {
	scratch := t.TempDir()
	set, err := NewGroupSet(scratch)
	if err != nil {
		t.Fatalf("NewGroupSet: %v", err)
	}
	path := writeGroupsFile(t, sampleGroups)
	if err := set.AddFile(path, nil); err != nil {
		t.Fatalf("AddFile: %v", err)
	}

	if err := set.ExcludeTaxa([]string{"sp3"}); err != nil {
		t.Fatalf("ExcludeTaxa: %v", err)
	}
	gf, err := set.Get(path)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	for _, sp := range gf.SpeciesList {
		if sp == "sp3" {
			t.Fatal("sp3 still present after GroupSet.ExcludeTaxa")
		}
	}
}

func TestGroupSetRemove(t *testing.T) {
	scratch := t.TempDir()
	set, err := NewGroupSet(scratch)
	if err != nil {
		t.Fatalf("NewGroupSet: %v", err)
	}
	path := writeGroupsFile(t, sampleGroups)
	if err := set.AddFile(path, nil); err != nil {
		t.Fatalf("AddFile: %v", err)
	}
	set.Remove(path)
	if len(set.Names()) != 0 {
		t.Fatalf("Names() after Remove = %v, want empty", set.Names())
	}
	if _, err := set.Get(path); err == nil {
		t.Fatal("Get after Remove should fail")
	}
	entries, err := os.ReadDir(scratch)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected scratch blob removed, found %d entries", len(entries))
	}
}

func TestGroupSetBasicMultigroupStatistics(t *testing.T) {
	scratch := t.TempDir()
	set, err := NewGroupSet(scratch)
	if err != nil {
		t.Fatalf("NewGroupSet: %v", err)
	}
	path := writeGroupsFile(t, sampleGroups)
	if err := set.AddFile(path, nil); err != nil {
		t.Fatalf("AddFile: %v", err)
	}
	all := set.BasicMultigroupStatistics()
	st, ok := all[path]
	if !ok {
		t.Fatalf("BasicMultigroupStatistics missing %s", path)
	}
	if st.TotalClusters != 3 {
		t.Fatalf("TotalClusters = %d, want 3", st.TotalClusters)
	}
}

func TestRandomIDLength(t *testing.T) {
	id := randomID(15)
	if len(id) != 15 {
		t.Fatalf("randomID(15) length = %d, want 15", len(id))
	}
	for _, c := range id {
		if c < 'A' || c > 'Z' {
			t.Fatalf("randomID produced non-uppercase character %q", c)
		}
	}
}
