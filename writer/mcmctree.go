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
)

// writeMCMCTree emits one sequential PHYLIP block per partition when the
// alignment has more than one, else a single PHYLIP block over the whole
// alignment.
func writeMCMCTree(w io.Writer, a *align.Alignment, opt Options) error {
	bw := bufio.NewWriter(w)
	taxa := a.Rows.Keys()

	writeBlock := func(start, end int) error {
		if _, err := fmt.Fprintf(bw, "%d %d\n", len(taxa), end-start); err != nil {
			return err
		}
		for _, t := range taxa {
			seq, _ := a.Rows.Get(t)
			if _, err := bw.WriteString(padTaxon(t, opt.PhylipTruncateNames) + strings.ToUpper(seq[start:end]) + "\n"); err != nil {
				return err
			}
		}
		_, err := bw.WriteString("\n")
		return err
	}

	if a.Partitions.IsSingle() {
		if err := writeBlock(0, a.LocusLength); err != nil {
			return err
		}
	} else {
		for _, r := range a.Partitions.Ranges() {
			if err := writeBlock(r.Start, r.End); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}
