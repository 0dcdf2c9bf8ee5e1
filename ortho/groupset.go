// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ortho

import (
	"encoding/gob"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/kortschak/msatools/internal/omap"
	"github.com/kortschak/msatools/progress"
)

// GroupSet is a collection of GroupFiles that keeps only aggregate stats
// and the per-group threshold mapping resident in memory; each parsed
// GroupFile itself is gob-encoded to a scratch file under a random name
// and reloaded on demand.
type GroupSet struct {
	dir string

	blobs      *omap.Map[string]        // group name -> blob path
	thresholds *omap.Map[[2]int]        // group name -> (gene, species)
	stats      *omap.Map[Statistics]
	maxExtra   *omap.Map[int]

	Duplicates []string // group names observed twice
	Bad        []string // paths that failed to parse
}

// NewGroupSet returns an empty GroupSet whose member blobs are written
// under scratchDir, which must exist or be creatable.
func NewGroupSet(scratchDir string) (*GroupSet, error) {
	if err := os.MkdirAll(scratchDir, 0o755); err != nil {
		return nil, err
	}
	return &GroupSet{
		dir:        scratchDir,
		blobs:      omap.New[string](),
		thresholds: omap.New[[2]int](),
		stats:      omap.New[Statistics](),
		maxExtra:   omap.New[int](),
	}, nil
}

// Names returns the member group names in insertion order.
func (s *GroupSet) Names() []string { return s.blobs.Keys() }

// AddFile parses path as a groups file and adds it to the set under the
// name path. Parse failures are recorded in Bad; a name already present is
// recorded in Duplicates and the new file is not added.
func (s *GroupSet) AddFile(path string, sink progress.Sink) error {
	if s.blobs.Has(path) {
		s.Duplicates = append(s.Duplicates, path)
		return nil
	}
	gf, err := Open(path, nil, nil, sink)
	if err != nil {
		s.Bad = append(s.Bad, path)
		return err
	}
	return s.Add(path, gf)
}

// Add inserts an already-parsed GroupFile under name. A name already
// present is recorded in Duplicates and gf is not added.
func (s *GroupSet) Add(name string, gf *GroupFile) error {
	if s.blobs.Has(name) {
		s.Duplicates = append(s.Duplicates, name)
		return nil
	}
	if gf.GeneThreshold == nil || gf.SpeciesThreshold == nil {
		// Default to single-copy clusters spanning every observed species
		// until the caller relaxes the thresholds.
		gf.UpdateFilters(1, len(gf.SpeciesList), true)
	}
	blobPath, err := s.persist(gf)
	if err != nil {
		return err
	}
	s.blobs.Set(name, blobPath)
	s.thresholds.Set(name, [2]int{*gf.GeneThreshold, *gf.SpeciesThreshold})
	s.maxExtra.Set(name, gf.MaxExtraCopy)
	s.stats.Set(name, gf.BasicStatistics(true))
	return nil
}

// Remove deletes the member named name, removing its scratch blob.
func (s *GroupSet) Remove(name string) {
	if p, ok := s.blobs.Get(name); ok {
		os.Remove(p)
	}
	s.blobs.Delete(name)
	s.thresholds.Delete(name)
	s.stats.Delete(name)
	s.maxExtra.Delete(name)
}

// Get loads and returns the member named name.
func (s *GroupSet) Get(name string) (*GroupFile, error) {
	p, ok := s.blobs.Get(name)
	if !ok {
		return nil, os.ErrNotExist
	}
	return s.load(p)
}

// UpdateFilters sets new thresholds for the named members (or every member,
// if names is nil), persists the updated GroupFile, and refreshes its
// aggregated statistics.
func (s *GroupSet) UpdateFilters(gene, species int, names []string, recompute bool) error {
	if names == nil {
		names = s.blobs.Keys()
	}
	for _, name := range names {
		gf, err := s.Get(name)
		if err != nil {
			return err
		}
		gf.UpdateFilters(gene, species, recompute)
		blobPath, err := s.persist(gf)
		if err != nil {
			return err
		}
		old, _ := s.blobs.Get(name)
		os.Remove(old)
		s.blobs.Set(name, blobPath)
		s.thresholds.Set(name, [2]int{gene, species})
		s.stats.Set(name, gf.BasicStatistics(true))
	}
	return nil
}

// ExcludeTaxa applies ExcludeTaxa to every member, persisting the result
// and refreshing aggregated statistics.
func (s *GroupSet) ExcludeTaxa(taxa []string) error {
	for _, name := range s.blobs.Keys() {
		gf, err := s.Get(name)
		if err != nil {
			return err
		}
		gf.ExcludeTaxa(taxa)
		blobPath, err := s.persist(gf)
		if err != nil {
			return err
		}
		old, _ := s.blobs.Get(name)
		os.Remove(old)
		s.blobs.Set(name, blobPath)
		s.stats.Set(name, gf.BasicStatistics(true))
	}
	return nil
}

// Statistics returns the last-computed Statistics for the named member.
func (s *GroupSet) Statistics(name string) (Statistics, bool) {
	return s.stats.Get(name)
}

// BasicMultigroupStatistics returns every member's Statistics snapshot,
// shaped for the plotting-adapter contract.
func (s *GroupSet) BasicMultigroupStatistics() map[string]Statistics {
	out := make(map[string]Statistics, s.stats.Len())
	s.stats.Each(func(name string, st Statistics) bool {
		out[name] = st
		return true
	})
	return out
}

// persist gob-encodes gf to a freshly-named scratch file and returns its
// path.
func (s *GroupSet) persist(gf *GroupFile) (string, error) {
	path := filepath.Join(s.dir, randomID(15))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := gob.NewEncoder(f).Encode(gf); err != nil {
		return "", err
	}
	return path, nil
}

// load gob-decodes a GroupFile previously written by persist.
func (s *GroupSet) load(path string) (*GroupFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	gf := &GroupFile{}
	if err := gob.NewDecoder(f).Decode(gf); err != nil {
		return nil, err
	}
	// The compliance counters are unexported and so do not survive gob
	// round-tripping; recompute them rather than serialize derived state.
	if gf.GeneThreshold != nil && gf.SpeciesThreshold != nil {
		gf.recount()
	}
	return gf, nil
}

const idAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// randomID returns a random n-character uppercase identifier for a
// scratch blob name.
func randomID(n int) string {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = idAlphabet[rand.Intn(len(idAlphabet))]
	}
	return string(buf)
}
