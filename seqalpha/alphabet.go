// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package seqalpha holds the two alphabets the alignment engine recognises
// and the residue-sampling rule the format probe uses to pick between them.
package seqalpha

import (
	"bytes"

	"github.com/biogo/biogo/alphabet"
)

// Kind is the alphabet of an alignment's residues.
type Kind int

const (
	DNA Kind = iota
	Protein
)

// String names the alphabet the way writers and the NEXUS datatype line
// expect ("dna" / "protein").
func (k Kind) String() string {
	if k == DNA {
		return "dna"
	}
	return "protein"
}

// MissingSymbol is the character used for unresolved residues: n for DNA,
// x for Protein. Lowercase, matching the lowercase residue convention every
// parser in package align normalizes sequences to; writers uppercase
// entire rows, including this symbol, at serialization time.
func (k Kind) MissingSymbol() byte {
	if k == DNA {
		return 'n'
	}
	return 'x'
}

// GapSymbol is always '-' regardless of alphabet.
func (Kind) GapSymbol() byte { return '-' }

// Biogo returns the biogo/biogo alphabet.Alphabet corresponding to k, for
// use with biogo's FASTA scanner and linear.Seq construction.
func (k Kind) Biogo() alphabet.Alphabet {
	if k == DNA {
		return alphabet.DNAredundant
	}
	return alphabet.Protein
}

// dnaSet is the set of bytes (case-insensitive) that keep a sample
// classified as DNA: nucleotide codes plus ambiguity code N.
var dnaSet = [256]bool{}

func init() {
	for _, c := range []byte("acgtun") {
		dnaSet[c] = true
		dnaSet[c-('a'-'A')] = true
	}
}

// maxSample is the number of non-gap, non-missing residues the probe
// inspects before deciding DNA vs. Protein.
const maxSample = 500

// Detect samples residues and returns DNA if every sampled character is in
// {a,c,g,t,u,n} (case-insensitive), else Protein. Gap ('-') and missing
// ('N'/'X') characters are skipped by the caller before residues reach
// Detect; Sample does that filtering for raw per-record sequence bytes.
func Detect(residues []byte) Kind {
	if len(residues) == 0 {
		return DNA
	}
	for _, c := range residues {
		if !dnaSet[c] {
			return Protein
		}
	}
	return DNA
}

// Sample collects up to maxSample non-gap, non-missing residues from seqs,
// in order, stopping as soon as the cap is reached. It is used by the format
// probe to build the byte slice passed to Detect.
func Sample(seqs [][]byte) []byte {
	buf := make([]byte, 0, maxSample)
	for _, s := range seqs {
		for _, c := range s {
			if IsGap(c) || IsMissing(c) {
				continue
			}
			buf = append(buf, c)
			if len(buf) >= maxSample {
				return buf
			}
		}
	}
	return buf
}

// IsGap reports whether c is the gap character.
func IsGap(c byte) bool { return c == '-' }

// IsMissing reports whether c is either alphabet's missing symbol,
// case-insensitively.
func IsMissing(c byte) bool {
	return bytes.IndexByte([]byte("NnXx"), c) >= 0
}
