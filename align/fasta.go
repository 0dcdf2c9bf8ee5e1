// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package align

import (
	"io"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"

	"github.com/kortschak/msatools/errs"
	"github.com/kortschak/msatools/internal/omap"
	"github.com/kortschak/msatools/partition"
	"github.com/kortschak/msatools/seqalpha"
)

func lettersToString(letters []alphabet.Letter) string {
	buf := make([]byte, len(letters))
	for i, l := range letters {
		buf[i] = byte(l)
	}
	return buf2lower(buf)
}

func buf2lower(buf []byte) string {
	out := make([]byte, 0, len(buf))
	for _, c := range buf {
		if c == ' ' || c == '*' {
			continue
		}
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out = append(out, c)
	}
	return string(out)
}

// parseFASTA reads FASTA records with biogo's seqio/fasta reader, lowercases
// residues (stripping '*' and spaces), and strips illegal characters from
// taxon names.
func parseFASTA(r io.Reader, name, path string) (*Alignment, error) {
	sc := seqio.NewScanner(fasta.NewReader(r, linear.NewSeq("", nil, alphabet.DNAredundant)))

	rows := omap.New[string]()
	var allSeqs [][]byte
	for sc.Next() {
		s := sc.Seq().(*linear.Seq)
		// The reader splits the header at the first blank into ID and
		// Desc; both are part of the taxon name before cleaning.
		taxon := cleanTaxon(s.ID + s.Desc)
		if rows.Has(taxon) {
			return nil, &errs.DuplicateTaxon{Path: path, Name: taxon}
		}
		seqStr := lettersToString(s.Seq)
		rows.Set(taxon, seqStr)
		allSeqs = append(allSeqs, []byte(seqStr))
	}
	if err := sc.Error(); err != nil && err != io.EOF {
		return nil, &errs.ParseError{Path: path, Reason: err.Error()}
	}
	if rows.Len() == 0 {
		return nil, &errs.ParseError{Path: path, Reason: "no records found"}
	}

	alpha := seqalpha.Detect(seqalpha.Sample(allSeqs))
	locusLength := len(allSeqs[0])

	parts := partition.New()
	parts.SetLength(name, locusLength, path)

	return &Alignment{
		Name:        name,
		Alpha:       alpha,
		Rows:        rows,
		Partitions:  parts,
		LocusLength: locusLength,
	}, nil
}
