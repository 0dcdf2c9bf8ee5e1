// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package writer

import (
	"bufio"
	"io"
	"strings"

	"github.com/kortschak/msatools/align"
)

// writeFASTA emits ">taxon\n<UPPERCASE seq>\n" per taxon, insertion order.
func writeFASTA(w io.Writer, a *align.Alignment, opt Options) error {
	bw := bufio.NewWriter(w)
	for _, t := range a.Rows.Keys() {
		seq, _ := a.Rows.Get(t)
		if _, err := bw.WriteString(">" + t + "\n"); err != nil {
			return err
		}
		if _, err := bw.WriteString(strings.ToUpper(seq) + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
