// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package seqdb implements the sequence-database join: an indexed
// key-value store over a FASTA protein database, reused across runs
// against the same database path, used to emit one FASTA file per
// compliant ortholog cluster.
package seqdb

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"modernc.org/kv"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"

	"github.com/kortschak/msatools/errs"
	"github.com/kortschak/msatools/internal/store"
	"github.com/kortschak/msatools/ortho"
	"github.com/kortschak/msatools/progress"
)

// Index is a persisted key-value store mapping a protein sequence
// identifier to its residues. It is built once from a FASTA protein
// database and, on later calls against the same database path, the
// existing index file is opened rather than rebuilt.
type Index struct {
	db   *kv.DB
	path string
}

// IndexPath derives the index file path for a protein database path by
// stripping the dots from the database file name, so repeated runs against
// the same database resolve to the same index.
func IndexPath(proteinDB string) string {
	dir := filepath.Dir(proteinDB)
	base := filepath.Base(proteinDB)
	name := strings.ReplaceAll(base, string(filepath.Separator), "")
	name = strings.ReplaceAll(name, ".", "")
	return filepath.Join(dir, name+".kvdb")
}

// Open returns the Index for proteinDB, reusing the on-disk index at
// IndexPath(proteinDB) if it already exists, or building it from scratch
// otherwise. Populating the index streams the FASTA file without buffering
// more than one record at a time.
func Open(proteinDB string, sink progress.Sink) (*Index, error) {
	sink = progress.OrDiscard(sink)
	idxPath := IndexPath(proteinDB)

	if _, err := os.Stat(idxPath); err == nil {
		db, err := kv.Open(idxPath, &kv.Options{})
		if err != nil {
			return nil, err
		}
		return &Index{db: db, path: idxPath}, nil
	}

	sink.SetStage("creating sequence database")
	log.Printf("creating sequence index %s", idxPath)
	db, err := kv.Create(idxPath, &kv.Options{})
	if err != nil {
		return nil, err
	}
	idx := &Index{db: db, path: idxPath}
	if err := idx.populate(proteinDB, sink); err != nil {
		db.Close()
		os.Remove(idxPath)
		return nil, err
	}
	return idx, nil
}

// Close closes the underlying kv.DB.
func (idx *Index) Close() error { return idx.db.Close() }

// populate streams proteinDB's FASTA records into idx, one record at a
// time, batching writes into transactions of 100 records.
func (idx *Index) populate(proteinDB string, sink progress.Sink) error {
	f, err := os.Open(proteinDB)
	if err != nil {
		return err
	}
	defer f.Close()

	sc := seqio.NewScanner(fasta.NewReader(f, linear.NewSeq("", nil, alphabet.Protein)))

	const batch = 100
	i, inTx := 0, false
	for sc.Next() {
		if sink.Cancelled() {
			if inTx {
				idx.db.Commit()
			}
			return &errs.Cancelled{}
		}
		s := sc.Seq().(*linear.Seq)

		if i%batch == 0 {
			log.Printf("begin tx for %d", i)
			if err := idx.db.BeginTransaction(); err != nil {
				return err
			}
			inTx = true
		}

		seq := make([]byte, s.Len())
		for j, l := range s.Seq {
			seq[j] = byte(l)
		}
		if err := idx.db.Set(store.MarshalSeqKey(s.ID), seq); err != nil {
			return err
		}

		i++
		if i%batch == 0 {
			log.Printf("commit tx for %d", i)
			if err := idx.db.Commit(); err != nil {
				return err
			}
			inTx = false
		}
		sink.SetProgress(i)
	}
	if err := sc.Error(); err != nil && err != io.EOF {
		return fmt.Errorf("error during sequence read: %w", err)
	}
	if inTx {
		log.Printf("commit tx for %d (final)", i)
		if err := idx.db.Commit(); err != nil {
			return err
		}
	}
	return nil
}

// Lookup returns the residues for seqID, and whether it was found.
func (idx *Index) Lookup(seqID string) (string, bool, error) {
	v, err := idx.db.Get(nil, store.MarshalSeqKey(seqID))
	if err != nil {
		return "", false, err
	}
	if v == nil {
		return "", false, nil
	}
	return string(v), true, nil
}

// Join emits one "<cluster>.fas" file under outDir per gene-and-species
// compliant cluster in gf, with one ">{seq_id}\n{sequence}\n" record per
// token resolvable against idx, in input token order. Tokens that cannot
// be resolved are counted in missed, not fatal to the cluster.
func Join(idx *Index, gf *ortho.GroupFile, outDir string, sink progress.Sink) (missed int, err error) {
	sink = progress.OrDiscard(sink)
	sink.SetStage("joining sequence database")

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return 0, err
	}

	sink.SetTotal(gf.Len())
	err = gf.IterClusters(func(i int, name string, tokens []string, freq map[string]int) error {
		if sink.Cancelled() {
			return &errs.Cancelled{}
		}
		sink.SetProgress(i + 1)

		_, _, all := ortho.Compliance(freq, gf.GeneThreshold, gf.SpeciesThreshold)
		if !all {
			return nil
		}

		out, err := os.Create(filepath.Join(outDir, name+".fas"))
		if err != nil {
			return err
		}
		defer out.Close()

		for _, tok := range tokens {
			seq, ok, err := idx.Lookup(tok)
			if err != nil {
				return err
			}
			if !ok {
				missed++
				log.Printf("%s: %v", name, &errs.MissingSequence{SeqID: tok})
				continue
			}
			fmt.Fprintf(out, ">%s\n%s\n", tok, seq)
		}
		return nil
	})
	return missed, err
}
