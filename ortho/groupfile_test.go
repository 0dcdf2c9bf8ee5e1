// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ortho

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

const sampleGroups = `cluster1: sp1|g1 sp1|g2 sp2|g3 sp3|g4
cluster2: sp1|g5 sp2|g6
cluster3: sp1|g7 sp1|g8 sp1|g9 sp2|g10
`

func writeGroupsFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "groups.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestOpenPopulatesFrequency(t *testing.T) {
	path := writeGroupsFile(t, sampleGroups)
	gf, err := Open(path, nil, nil, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if gf.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", gf.Len())
	}
	if gf.TotalSeqs != 4+2+4 {
		t.Fatalf("TotalSeqs = %d, want 10", gf.TotalSeqs)
	}
	want := map[string]int{"sp1": 2, "sp2": 1, "sp3": 1}
	if !reflect.DeepEqual(gf.Frequency[0], want) {
		t.Fatalf("Frequency[0] = %v, want %v", gf.Frequency[0], want)
	}
	wantSpecies := []string{"sp1", "sp2", "sp3"}
	if !reflect.DeepEqual(gf.SpeciesList, wantSpecies) {
		t.Fatalf("SpeciesList = %v, want %v", gf.SpeciesList, wantSpecies)
	}
	// cluster3 has sp1 with 3 copies, the largest max frequency observed.
	if gf.MaxExtraCopy != 3 {
		t.Fatalf("MaxExtraCopy = %d, want 3", gf.MaxExtraCopy)
	}
}

func TestOpenWithThresholdsPopulatesCounters(t *testing.T) {
	path := writeGroupsFile(t, sampleGroups)
	gene, species := 2, 3
	gf, err := Open(path, &gene, &species, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	geneC, speciesC, allC := gf.Counters()
	// cluster1: species={sp1,sp2,sp3}=3>=3 species-compliant; max=2<=2
	// gene-compliant; all-compliant.
	// cluster2: species={sp1,sp2}=2<3 not species-compliant.
	// cluster3: species={sp1,sp2}=2<3 not species-compliant; max=3>2 not
	// gene-compliant either.
	if speciesC != 1 {
		t.Fatalf("speciesCompliant = %d, want 1", speciesC)
	}
	if geneC != 2 {
		t.Fatalf("geneCompliant = %d, want 2 (cluster1, cluster2)", geneC)
	}
	if allC != 1 {
		t.Fatalf("allCompliant = %d, want 1", allC)
	}
}

func TestExcludeTaxaRecounts(t *testing.T) {
	path := writeGroupsFile(t, sampleGroups)
	gene, species := 2, 2
	gf, err := Open(path, &gene, &species, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	_, before, _ := gf.Counters()
	if before != 3 {
		t.Fatalf("speciesCompliant before exclusion = %d, want 3", before)
	}

	// Removing sp2 leaves cluster2 with one species and cluster3 with one
	// species, so only cluster1 remains species-compliant.
	gf.ExcludeTaxa([]string{"sp2"})
	_, after, _ := gf.Counters()
	if after != 1 {
		t.Fatalf("speciesCompliant after excluding sp2 = %d, want 1", after)
	}
	for _, sp := range gf.SpeciesList {
		if sp == "sp2" {
			t.Fatal("sp2 still present in SpeciesList after ExcludeTaxa")
		}
	}
	for i, freq := range gf.Frequency {
		if _, ok := freq["sp2"]; ok {
			t.Fatalf("cluster %d frequency still has sp2", i)
		}
	}
}

func TestUpdateFiltersRecompute(t *testing.T) {
	path := writeGroupsFile(t, sampleGroups)
	gf, err := Open(path, nil, nil, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	gf.UpdateFilters(2, 3, true)
	_, speciesC, _ := gf.Counters()
	if speciesC != 1 {
		t.Fatalf("speciesCompliant after UpdateFilters = %d, want 1", speciesC)
	}
}

// Group streaming fidelity: iterating (raw_line, Frequency[i]) in
// lockstep yields matching cluster indices for every cluster.
func TestIterClustersLockstep(t *testing.T) {
	path := writeGroupsFile(t, sampleGroups)
	gf, err := Open(path, nil, nil, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	seen := 0
	err = gf.IterClusters(func(i int, name string, tokens []string, freq map[string]int) error {
		if name != gf.Names[i] {
			t.Errorf("cluster %d: name %q != gf.Names[%d] %q", i, name, i, gf.Names[i])
		}
		if !reflect.DeepEqual(freq, gf.Frequency[i]) {
			t.Errorf("cluster %d: freq %v != gf.Frequency[%d] %v", i, freq, i, gf.Frequency[i])
		}
		seen++
		return nil
	})
	if err != nil {
		t.Fatalf("IterClusters: %v", err)
	}
	if seen != gf.Len() {
		t.Fatalf("IterClusters visited %d clusters, want %d", seen, gf.Len())
	}
}

func TestClusterAt(t *testing.T) {
	path := writeGroupsFile(t, sampleGroups)
	gf, err := Open(path, nil, nil, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	c, err := gf.ClusterAt(1)
	if err != nil {
		t.Fatalf("ClusterAt: %v", err)
	}
	if c.Name != "cluster2" {
		t.Fatalf("Name = %q, want cluster2", c.Name)
	}
	want := []string{"sp1|g5", "sp2|g6"}
	if !reflect.DeepEqual(c.Sequences, want) {
		t.Fatalf("Sequences = %v, want %v", c.Sequences, want)
	}
}

func TestBasicStatistics(t *testing.T) {
	path := writeGroupsFile(t, sampleGroups)
	gene, species := 2, 3
	gf, err := Open(path, &gene, &species, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	stats := gf.BasicStatistics(false)
	if stats.TotalClusters != 3 {
		t.Fatalf("TotalClusters = %d, want 3", stats.TotalClusters)
	}
	if stats.TotalSeqs != 10 {
		t.Fatalf("TotalSeqs = %d, want 10", stats.TotalSeqs)
	}
}

func TestOpenRejectsMalformedLine(t *testing.T) {
	path := writeGroupsFile(t, "not a valid cluster line without colon\n")
	_, err := Open(path, nil, nil, nil)
	if err == nil {
		t.Fatal("expected ParseError for malformed groups file")
	}
}
