// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package writer

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/kortschak/msatools/align"
	"github.com/kortschak/msatools/partition"
)

// writeNEXUS emits a standard DATA block plus, when requested, a MrBayes
// block carrying charset/outgroup directives. A gap-coded alignment
// (RestrictionRange set) is written with a mixed datatype splitting the
// original residues from the appended indel-coding columns.
func writeNEXUS(w io.Writer, a *align.Alignment, opt Options) error {
	bw := bufio.NewWriter(w)

	datatype := "dna"
	if a.Alpha.String() == "protein" {
		datatype = "protein"
	}
	if a.RestrictionRange != nil {
		k := a.RestrictionRange.Start
		m := a.RestrictionRange.End
		datatype = fmt.Sprintf("mixed(%s:1-%d, restriction:%d-%d)", datatype, k, k+1, m)
	}

	taxa := a.Rows.Keys()
	if _, err := fmt.Fprintf(bw, "#NEXUS\n\nbegin data;\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(bw, "\tdimensions ntax=%d nchar=%d;\n", len(taxa), a.LocusLength); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(bw, "\tformat datatype=%s missing=%c gap=%c interleave=%s;\n",
		datatype, missingOf(opt, a), gapOf(opt, a), boolWord(opt.Interleave)); err != nil {
		return err
	}
	if _, err := bw.WriteString("matrix\n"); err != nil {
		return err
	}

	writeRows := func(start, end int) error {
		for _, t := range taxa {
			seq, _ := a.Rows.Get(t)
			if end > len(seq) {
				end = len(seq)
			}
			if _, err := fmt.Fprintf(bw, "%s%s\n", padTaxon(t, false), strings.ToUpper(seq[start:end])); err != nil {
				return err
			}
		}
		return nil
	}

	if !opt.Interleave {
		if err := writeRows(0, a.LocusLength); err != nil {
			return err
		}
	} else {
		const blockWidth = 90
		for start := 0; start < a.LocusLength; start += blockWidth {
			end := start + blockWidth
			if end > a.LocusLength {
				end = a.LocusLength
			}
			if err := writeRows(start, end); err != nil {
				return err
			}
			if _, err := bw.WriteString("\n"); err != nil {
				return err
			}
		}
	}
	if _, err := bw.WriteString(";\nend;\n"); err != nil {
		return err
	}

	if opt.UseCharset || len(opt.OutgroupList) > 0 {
		if _, err := bw.WriteString("\nbegin mrbayes;\n"); err != nil {
			return err
		}
		if opt.UseCharset {
			if err := writeNexusCharsets(bw, a.Partitions); err != nil {
				return err
			}
		}
		if len(opt.OutgroupList) > 0 {
			if _, err := fmt.Fprintf(bw, "\toutgroup %s;\n", strings.Join(opt.OutgroupList, " ")); err != nil {
				return err
			}
		}
		if _, err := bw.WriteString("end;\n"); err != nil {
			return err
		}
	}

	return bw.Flush()
}

func boolWord(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// writeNexusCharsets emits one charset line per partition (1-based
// inclusive), splitting codon sub-partitions into per-offset lines
// "NAME_i = i+1-end\3", the convention this module's NEXUS reader expects
// back (see partition.ReadFromNexusString).
func writeNexusCharsets(w io.Writer, parts *partition.Model) error {
	var err error
	parts.Iter(func(name string, p *partition.Partition) bool {
		if len(p.CodonOffsets) == 0 {
			_, err = fmt.Fprintf(w, "\tcharset %s = %d-%d;\n", name, p.Range.Start+1, p.Range.End)
			return err == nil
		}
		for _, off := range p.CodonOffsets {
			_, err = fmt.Fprintf(w, "\tcharset %s_%d = %d-%d\\3;\n", name, off+1, p.Range.Start+1+off, p.Range.End)
			if err != nil {
				return false
			}
		}
		return true
	})
	return err
}
