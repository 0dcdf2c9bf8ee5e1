// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package writer serializes an align.Alignment into FASTA, PHYLIP, NEXUS,
// MCMCTree, or IMa2 text.
package writer

import (
	"io"

	"github.com/kortschak/msatools/align"
	"github.com/kortschak/msatools/errs"
)

// Format selects the output serialization.
type Format int

const (
	FASTA Format = iota
	PHYLIP
	NEXUS
	MCMCTree
	IMa2
)

// Options carries the writer knobs recognized across formats; fields that
// do not apply to a given format are ignored.
type Options struct {
	Interleave          bool
	GapChar             byte
	MissingChar         byte
	PhylipTruncateNames bool
	UseCharset          bool              // NEXUS: emit a mrbayes charset block
	OutgroupList        []string          // NEXUS: emit an outgroup block
	PartitionFile       io.Writer         // PHYLIP: RAxML-style sidecar, nil to skip
	PopulationMap       map[string]string // IMa2: taxon -> population
	PopTree             string            // IMa2: newick population tree
	IMa2                *IMa2Params       // IMa2: per-run model parameters, nil for defaults
}

// Write serializes a to w in the given format. A gap-coded alignment
// (a.RestrictionRange != nil) may only be written as NEXUS; any other
// format returns WriteBlocked and writes nothing.
func Write(w io.Writer, a *align.Alignment, format Format, opt Options) error {
	if a.RestrictionRange != nil && format != NEXUS {
		return &errs.WriteBlocked{Reason: "gap-coded alignment can only be written as NEXUS"}
	}
	switch format {
	case FASTA:
		return writeFASTA(w, a, opt)
	case PHYLIP:
		return writePHYLIP(w, a, opt)
	case NEXUS:
		return writeNEXUS(w, a, opt)
	case MCMCTree:
		return writeMCMCTree(w, a, opt)
	case IMa2:
		return writeIMa2(w, a, opt)
	default:
		return &errs.FormatUnknown{Path: ""}
	}
}

func gapOf(opt Options, a *align.Alignment) byte {
	if opt.GapChar != 0 {
		return opt.GapChar
	}
	return a.Alpha.GapSymbol()
}

func missingOf(opt Options, a *align.Alignment) byte {
	if opt.MissingChar != 0 {
		return opt.MissingChar
	}
	return a.Alpha.MissingSymbol()
}
