// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package partition

import (
	"strconv"
	"strings"

	"github.com/kortschak/msatools/errs"
)

// ReadFromNexusString parses one MrBayes charset directive of the form
//
//	charset NAME = START-END;
//	charset NAME_K = START-END\3;
//
// (1-based, inclusive ranges, as MrBayes writes them) and adds the
// resulting partition to m. Multiple "_K" charsets (K in 1..3) sharing a
// base NAME fold into a single partition with multiple codon offsets rather
// than three independent partitions.
func (m *Model) ReadFromNexusString(line, file string) error {
	s := strings.TrimSpace(line)
	// Strip an optional leading "charset" keyword case-insensitively, and a
	// trailing ';'.
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "charset") {
		s = strings.TrimSpace(s[len("charset"):])
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), ";")

	codon := false
	if i := strings.Index(s, `\3`); i >= 0 {
		codon = true
		s = s[:i]
	}

	eq := strings.Index(s, "=")
	if eq < 0 {
		return &errs.InvalidPartitionFile{Reason: "charset line has no '='"}
	}
	name := strings.TrimSpace(s[:eq])
	rangeStr := strings.TrimSpace(s[eq+1:])
	dash := strings.Index(rangeStr, "-")
	if dash < 0 {
		return &errs.InvalidPartitionFile{Reason: "charset range has no '-'"}
	}
	start, err1 := strconv.Atoi(strings.TrimSpace(rangeStr[:dash]))
	end, err2 := strconv.Atoi(strings.TrimSpace(rangeStr[dash+1:]))
	if err1 != nil || err2 != nil {
		return &errs.InvalidPartitionFile{Reason: "charset range is not numeric"}
	}
	// Convert 1-based inclusive to 0-based exclusive.
	r := Range{Start: start - 1, End: end}

	baseName := name
	offset := -1
	if codon {
		us := strings.LastIndex(name, "_")
		if us < 0 {
			return &errs.InvalidPartitionFile{Reason: "codon charset name missing _K suffix"}
		}
		k, err := strconv.Atoi(name[us+1:])
		if err != nil || k < 1 || k > 3 {
			return &errs.InvalidPartitionFile{Reason: "codon charset suffix must be 1, 2 or 3"}
		}
		baseName = name[:us]
		offset = k - 1
		// The codon charset's range in the 1-based form is
		// (partitionStart+offset+1)-(partitionEnd); recover partitionStart.
		r.Start -= offset
	}

	if p, ok := m.Get(baseName); ok && codon {
		// Fold into the existing partition's codon offsets.
		found := false
		for _, o := range p.CodonOffsets {
			if o == offset {
				found = true
				break
			}
		}
		if !found {
			p.CodonOffsets = append(p.CodonOffsets, offset)
		}
		return nil
	}

	var offsets []int
	if codon {
		offsets = []int{offset}
	}
	return m.AddRange(baseName, r, offsets, nil, file)
}

// ParseNexusModel parses a single MrBayes lset/prset directive of the form
//
//	lset applyto=(N) nst=MODEL;
//	prset applyto=(N) MODEL;
//
// binding the named model to the Nth partition in insertion order
// (1-based, as MrBayes numbers partitions). It returns the 1-based index
// and the parsed model, or an error if the line cannot be parsed.
func ParseNexusModel(line string) (index int, model SubstModel, err error) {
	s := strings.TrimSpace(line)
	lower := strings.ToLower(s)
	if !strings.HasPrefix(lower, "lset") && !strings.HasPrefix(lower, "prset") {
		return 0, SubstModel{}, &errs.InvalidPartitionFile{Reason: "not an lset/prset directive"}
	}
	s = strings.TrimSuffix(s, ";")

	open := strings.Index(s, "applyto=(")
	if open < 0 {
		return 0, SubstModel{}, &errs.InvalidPartitionFile{Reason: "lset/prset missing applyto=(...)"}
	}
	rest := s[open+len("applyto=("):]
	close := strings.Index(rest, ")")
	if close < 0 {
		return 0, SubstModel{}, &errs.InvalidPartitionFile{Reason: "lset/prset applyto missing closing paren"}
	}
	idx, err2 := strconv.Atoi(strings.TrimSpace(rest[:close]))
	if err2 != nil {
		return 0, SubstModel{}, &errs.InvalidPartitionFile{Reason: "lset/prset applyto index is not numeric"}
	}

	var name, extra string
	if strings.HasPrefix(lower, "lset") {
		if i := strings.Index(lower, "nst="); i >= 0 {
			field := s[i+len("nst="):]
			name = strings.Fields(field)[0]
		}
	} else {
		name = strings.TrimSpace(rest[close+1:])
	}
	extra = strings.TrimSpace(s)

	return idx, SubstModel{Name: name, Extra: extra}, nil
}
