// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package align

import (
	"bufio"
	"io"
	"strings"

	"github.com/kortschak/msatools/errs"
	"github.com/kortschak/msatools/internal/omap"
	"github.com/kortschak/msatools/partition"
	"github.com/kortschak/msatools/seqalpha"
)

// parseNEXUS reads the DATA/CHARACTERS block's matrix (handling interleave
// by appending successive blocks to each taxon's accumulated sequence) and
// any mrbayes charset/lset/prset directives, which are delegated to
// package partition. Falls back to a single whole-alignment partition when
// no charset is declared.
func parseNEXUS(r io.Reader, name, path string) (*Alignment, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	rows := omap.New[string]()
	var taxonOrder []string
	var directives []string
	inMatrix := false
	inMrBayes := false
	lineNo := 0

	for sc.Scan() {
		lineNo++
		raw := sc.Text()
		trimmed := strings.TrimSpace(raw)
		lower := strings.ToLower(trimmed)

		switch {
		case lower == "":
			continue
		case strings.HasPrefix(lower, "begin mrbayes"):
			inMrBayes = true
			continue
		case strings.HasPrefix(lower, "end;") || lower == "end":
			inMrBayes = false
			inMatrix = false
			continue
		case strings.HasPrefix(lower, "matrix"):
			inMatrix = true
			continue
		}

		if inMrBayes {
			if strings.HasPrefix(lower, "charset") || strings.HasPrefix(lower, "lset") || strings.HasPrefix(lower, "prset") {
				directives = append(directives, trimmed)
			}
			continue
		}

		if inMatrix {
			body := trimmed
			if body == ";" {
				inMatrix = false
				continue
			}
			body = strings.TrimSuffix(body, ";")
			if strings.TrimSpace(body) == "" {
				continue
			}
			fields := strings.Fields(body)
			if len(fields) < 2 {
				return nil, &errs.ParseError{Path: path, Line: lineNo, Reason: "malformed matrix row"}
			}
			taxon := cleanTaxon(fields[0])
			seg := buf2lower([]byte(strings.Join(fields[1:], "")))
			if !rows.Has(taxon) {
				taxonOrder = append(taxonOrder, taxon)
				rows.Set(taxon, seg)
			} else {
				prev, _ := rows.Get(taxon)
				rows.Set(taxon, prev+seg)
			}
		}
	}
	if rows.Len() == 0 {
		return nil, &errs.ParseError{Path: path, Reason: "no matrix block found"}
	}

	locusLength := 0
	var allSeqs [][]byte
	for _, t := range taxonOrder {
		seq, _ := rows.Get(t)
		if len(seq) > locusLength {
			locusLength = len(seq)
		}
		allSeqs = append(allSeqs, []byte(seq))
	}
	alpha := seqalpha.Detect(seqalpha.Sample(allSeqs))

	parts := partition.New()
	haveCharset := false
	for _, d := range directives {
		if strings.HasPrefix(strings.ToLower(d), "charset") {
			haveCharset = true
			if err := parts.ReadFromNexusString(d, path); err != nil {
				return nil, err
			}
		}
	}
	if !haveCharset {
		parts.SetLength(name, locusLength, path)
	} else {
		names := parts.Names()
		for _, d := range directives {
			low := strings.ToLower(d)
			if !strings.HasPrefix(low, "lset") && !strings.HasPrefix(low, "prset") {
				continue
			}
			idx, model, err := partition.ParseNexusModel(d)
			if err != nil || idx < 1 || idx > len(names) {
				continue
			}
			if p, ok := parts.Get(names[idx-1]); ok {
				p.Model = &model
			}
		}
	}

	return &Alignment{
		Name:        name,
		Alpha:       alpha,
		Rows:        rows,
		Partitions:  parts,
		LocusLength: locusLength,
	}, nil
}
