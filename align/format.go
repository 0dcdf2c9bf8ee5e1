// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package align implements the alignment engine: the multi-format
// parser/serializer, the in-memory Alignment and AlignmentSet models, and
// the column/row filter pipeline built on top of package partition.
package align

import (
	"bufio"
	"bytes"
	"io"
	"regexp"
	"strings"

	"github.com/kortschak/msatools/errs"
)

// Format identifies one of the recognised textual alignment formats.
type Format int

const (
	FASTA Format = iota
	PHYLIP
	NEXUS
	LOCI
)

func (f Format) String() string {
	switch f {
	case FASTA:
		return "fasta"
	case PHYLIP:
		return "phylip"
	case NEXUS:
		return "nexus"
	case LOCI:
		return "loci"
	default:
		return "unknown"
	}
}

var phylipHeader = regexp.MustCompile(`^\s*\d+\s+\d+\s*$`)

// probeBytes is the amount of leading file content the probe samples before
// giving up on classification.
const probeBytes = 8192

// ProbeFormat reads the first probeBytes of r and classifies the file
// format. It returns FormatUnknown if no rule matches.
func ProbeFormat(path string, r io.Reader) (Format, error) {
	head := make([]byte, probeBytes)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return 0, err
	}
	head = head[:n]

	sc := bufio.NewScanner(bytes.NewReader(head))
	var firstNonBlank string
	sawFasta, sawLociMarker := false, false
	for sc.Scan() {
		line := sc.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if firstNonBlank == "" {
			firstNonBlank = trimmed
		}
		if strings.HasPrefix(trimmed, ">") {
			sawFasta = true
		}
		if trimmed == "//" || strings.HasPrefix(trimmed, "//") {
			sawLociMarker = true
		}
	}

	switch {
	case len(head) >= 6 && strings.EqualFold(string(head[:6]), "#NEXUS"):
		return NEXUS, nil
	case sawFasta && sawLociMarker:
		return LOCI, nil
	case strings.HasPrefix(firstNonBlank, ">"):
		return FASTA, nil
	case phylipHeader.MatchString(firstNonBlank):
		return PHYLIP, nil
	default:
		return 0, &errs.FormatUnknown{Path: path}
	}
}
