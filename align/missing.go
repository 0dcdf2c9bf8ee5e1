// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package align

import "github.com/kortschak/msatools/internal/omap"

// filterMissingColumns drops column c iff
// g/n*100 > gapPct or (g+m)/n*100 > missingPct, where g and m are the
// per-column counts of the gap and missing symbols and n is the number of
// rows. Both thresholds at 100 is a no-op.
func filterMissingColumns(rows *omap.Map[string], locusLength int, gapPct, missingPct float64, gap, missing byte) (*omap.Map[string], int) {
	n := rows.Len()
	if n == 0 {
		return rows, locusLength
	}
	keep := make([]bool, locusLength)
	keptCount := 0
	for c := 0; c < locusLength; c++ {
		g, m := 0, 0
		rows.Each(func(_ string, seq string) bool {
			if c >= len(seq) {
				return true
			}
			switch seq[c] {
			case gap:
				g++
			case missing:
				m++
			}
			return true
		})
		gapFrac := float64(g) / float64(n) * 100
		missFrac := float64(g+m) / float64(n) * 100
		if gapFrac > gapPct || missFrac > missingPct {
			continue
		}
		keep[c] = true
		keptCount++
	}

	out := omap.New[string]()
	rows.Each(func(taxon, seq string) bool {
		buf := make([]byte, 0, keptCount)
		for c := 0; c < locusLength && c < len(seq); c++ {
			if keep[c] {
				buf = append(buf, seq[c])
			}
		}
		out.Set(taxon, string(buf))
		return true
	})
	return out, keptCount
}
