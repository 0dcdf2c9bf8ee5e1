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

func padTaxon(name string, truncate bool) string {
	width := 30
	if truncate {
		width = 10
		if len(name) > width {
			name = name[:width]
		}
	}
	if len(name) >= width {
		return name + "  "
	}
	return name + strings.Repeat(" ", width-len(name))
}

// writePHYLIP emits sequential or interleaved PHYLIP. Interleave splits
// every 90 columns with a blank line between blocks; the header row is
// repeated only on the first block.
func writePHYLIP(w io.Writer, a *align.Alignment, opt Options) error {
	bw := bufio.NewWriter(w)
	taxa := a.Rows.Keys()
	if _, err := fmt.Fprintf(bw, "%d %d\n", len(taxa), a.LocusLength); err != nil {
		return err
	}

	const blockWidth = 90
	if !opt.Interleave {
		for _, t := range taxa {
			seq, _ := a.Rows.Get(t)
			if _, err := bw.WriteString(padTaxon(t, opt.PhylipTruncateNames) + strings.ToUpper(seq) + "\n"); err != nil {
				return err
			}
		}
	} else {
		for start := 0; start < a.LocusLength; start += blockWidth {
			end := start + blockWidth
			if end > a.LocusLength {
				end = a.LocusLength
			}
			if start > 0 {
				if _, err := bw.WriteString("\n"); err != nil {
					return err
				}
			}
			for _, t := range taxa {
				seq, _ := a.Rows.Get(t)
				block := strings.ToUpper(seq[start:end])
				prefix := ""
				if start == 0 {
					prefix = padTaxon(t, opt.PhylipTruncateNames)
				}
				if _, err := bw.WriteString(prefix + block + "\n"); err != nil {
					return err
				}
			}
		}
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	if opt.PartitionFile != nil {
		return writePhylipPartitions(opt.PartitionFile, a.Partitions, defaultModel(a))
	}
	return nil
}

// defaultModel is the substitution model used for a partition with no
// model of its own: GTR for nucleotide data, LG for protein.
func defaultModel(a *align.Alignment) string {
	if a.Alpha.String() == "protein" {
		return "LG"
	}
	return "GTR"
}

// writePhylipPartitions emits the RAxML-style sidecar, one line per
// partition: "MODEL, NAME = S1-E1[, S2-E2 …]" with 1-based inclusive,
// comma-joined ranges for codon sub-partitions.
func writePhylipPartitions(w io.Writer, parts *partition.Model, fallbackModel string) error {
	bw := bufio.NewWriter(w)
	var err error
	parts.Iter(func(name string, p *partition.Partition) bool {
		model := fallbackModel
		if p.Model != nil && p.Model.Name != "" {
			model = p.Model.Name
		}
		var ranges []string
		if len(p.CodonOffsets) == 0 {
			ranges = append(ranges, fmt.Sprintf("%d-%d", p.Range.Start+1, p.Range.End))
		} else {
			for _, off := range p.CodonOffsets {
				ranges = append(ranges, fmt.Sprintf("%d-%d\\3", p.Range.Start+1+off, p.Range.End))
			}
		}
		_, err = fmt.Fprintf(bw, "%s, %s = %s\n", model, name, strings.Join(ranges, ", "))
		return err == nil
	})
	if err != nil {
		return err
	}
	return bw.Flush()
}
