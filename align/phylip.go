// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package align

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kortschak/msatools/errs"
	"github.com/kortschak/msatools/internal/omap"
	"github.com/kortschak/msatools/partition"
	"github.com/kortschak/msatools/seqalpha"
)

// parsePHYLIP reads sequential PHYLIP: header "N L" then exactly N lines of
// "taxon sequence". Interleaved PHYLIP is not supported and is rejected
// with ParseError: any data row whose sequence does not reach the declared
// length L triggers it.
func parsePHYLIP(r io.Reader, name, path string) (*Alignment, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNo := 0
	var header string
	for sc.Scan() {
		lineNo++
		header = strings.TrimSpace(sc.Text())
		if header != "" {
			break
		}
	}
	fields := strings.Fields(header)
	if len(fields) != 2 {
		return nil, &errs.ParseError{Path: path, Line: lineNo, Reason: "malformed PHYLIP header"}
	}
	ntax, err1 := strconv.Atoi(fields[0])
	nchar, err2 := strconv.Atoi(fields[1])
	if err1 != nil || err2 != nil || ntax <= 0 || nchar <= 0 {
		return nil, &errs.ParseError{Path: path, Line: lineNo, Reason: "malformed PHYLIP header"}
	}

	rows := omap.New[string]()
	var allSeqs [][]byte
	for i := 0; i < ntax; i++ {
		if !sc.Scan() {
			return nil, &errs.ParseError{Path: path, Line: lineNo + i + 1, Reason: fmt.Sprintf("expected %d taxa, found %d", ntax, i)}
		}
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r\n")
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, &errs.ParseError{Path: path, Line: lineNo, Reason: "malformed PHYLIP data row"}
		}
		taxon := cleanTaxon(fields[0])
		seq := buf2lower([]byte(strings.Join(fields[1:], "")))
		if len(seq) != nchar {
			return nil, &errs.ParseError{Path: path, Line: lineNo, Reason: "sequence length does not match header; interleaved PHYLIP is not supported"}
		}
		if rows.Has(taxon) {
			return nil, &errs.DuplicateTaxon{Path: path, Name: taxon}
		}
		rows.Set(taxon, seq)
		allSeqs = append(allSeqs, []byte(seq))
	}

	alpha := seqalpha.Detect(seqalpha.Sample(allSeqs))
	parts := partition.New()
	parts.SetLength(name, nchar, path)

	return &Alignment{
		Name:        name,
		Alpha:       alpha,
		Rows:        rows,
		Partitions:  parts,
		LocusLength: nchar,
	}, nil
}
