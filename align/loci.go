// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package align

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/kortschak/msatools/errs"
	"github.com/kortschak/msatools/internal/omap"
	"github.com/kortschak/msatools/partition"
	"github.com/kortschak/msatools/seqalpha"
)

// parseLOCI reads a pyRAD-style .loci file: a run of ">taxon seq" lines per
// locus terminated by a line starting with "//". Concatenated across loci,
// taxa absent from a locus are padded with that locus's missing symbol
// repeated to the locus length; each locus becomes its own partition named
// "locus_N" (1-based).
func parseLOCI(r io.Reader, name, path string) (*Alignment, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	type locusSeqs struct {
		taxa []string
		seqs map[string]string
		len  int
	}
	var loci []locusSeqs
	cur := locusSeqs{seqs: make(map[string]string)}
	lineNo := 0
	var allSeqs [][]byte

	flush := func() error {
		if len(cur.taxa) == 0 {
			return nil
		}
		loci = append(loci, cur)
		cur = locusSeqs{seqs: make(map[string]string)}
		return nil
	}

	for sc.Scan() {
		lineNo++
		line := sc.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "//") {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		if !strings.HasPrefix(trimmed, ">") {
			return nil, &errs.ParseError{Path: path, Line: lineNo, Reason: "expected '>' record or '//' locus marker"}
		}
		fields := strings.Fields(trimmed[1:])
		if len(fields) < 2 {
			return nil, &errs.ParseError{Path: path, Line: lineNo, Reason: "malformed loci record"}
		}
		taxon := cleanTaxon(fields[0])
		seq := buf2lower([]byte(fields[len(fields)-1]))
		if _, ok := cur.seqs[taxon]; ok {
			return nil, &errs.ParseError{Path: path, Line: lineNo, Reason: "duplicate taxon within locus"}
		}
		cur.taxa = append(cur.taxa, taxon)
		cur.seqs[taxon] = seq
		if n := len(seq); n > cur.len {
			cur.len = n
		}
		allSeqs = append(allSeqs, []byte(seq))
	}
	if err := flush(); err != nil {
		return nil, err
	}
	if len(loci) == 0 {
		return nil, &errs.ParseError{Path: path, Reason: "no loci found"}
	}

	alpha := seqalpha.Detect(seqalpha.Sample(allSeqs))
	missing := string(alpha.MissingSymbol())

	// Collect the full taxon set across all loci, in first-seen order.
	taxonOrder := omap.New[bool]()
	for _, l := range loci {
		for _, t := range l.taxa {
			if !taxonOrder.Has(t) {
				taxonOrder.Set(t, true)
			}
		}
	}

	rows := omap.New[string]()
	for _, t := range taxonOrder.Keys() {
		rows.Set(t, "")
	}
	parts := partition.New()
	for i, l := range loci {
		locusName := "locus_" + strconv.Itoa(i+1)
		for _, t := range taxonOrder.Keys() {
			prev, _ := rows.Get(t)
			seq, ok := l.seqs[t]
			if !ok {
				seq = strings.Repeat(missing, l.len)
			} else if len(seq) < l.len {
				seq += strings.Repeat(missing, l.len-len(seq))
			}
			rows.Set(t, prev+seq)
		}
		if err := parts.Add(locusName, l.len, nil, nil, path); err != nil {
			return nil, err
		}
	}

	return &Alignment{
		Name:        name,
		Alpha:       alpha,
		Rows:        rows,
		Partitions:  parts,
		LocusLength: parts.Counter(),
	}, nil
}
