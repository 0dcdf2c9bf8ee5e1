// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package writer

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kortschak/msatools/align"
	"github.com/kortschak/msatools/errs"
	"github.com/kortschak/msatools/partition"
)

// IMa2Params carries the per-run IMa2 parameters: a mutation model name
// and an inheritance scalar, shared by every locus.
type IMa2Params struct {
	MutationModel     string
	InheritanceScalar string
}

// ReadPopulationMap parses a population-mapping file with one
// "taxon<sep>population" pair per non-blank line, where <sep> is a tab,
// semicolon or comma.
func ReadPopulationMap(r io.Reader) (map[string]string, error) {
	out := make(map[string]string)
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.FieldsFunc(line, func(r rune) bool {
			return r == '\t' || r == ';' || r == ','
		})
		if len(fields) < 2 {
			return nil, &errs.ParseError{Line: lineNo, Reason: "population map line needs taxon and population"}
		}
		out[strings.TrimSpace(fields[0])] = strings.TrimSpace(fields[1])
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// writeIMa2 emits an IMa2 input file: a header naming the loci and
// populations, then per locus a header line and the rows of taxa that
// carry at least one non-missing residue in that locus, ordered by the
// population mapping. opt.PopulationMap must be set; opt.PopTree is used
// verbatim as the population string tree.
func writeIMa2(w io.Writer, a *align.Alignment, opt Options) error {
	bw := bufio.NewWriter(w)

	var taxonOrder []string
	a.Rows.Each(func(k, _ string) bool {
		taxonOrder = append(taxonOrder, k)
		return true
	})
	populations, order := groupByPopulation(opt.PopulationMap, taxonOrder)

	nloci := a.Partitions.Names()
	if len(nloci) == 0 {
		nloci = []string{a.Name}
	}
	if _, err := fmt.Fprintf(bw, "Input file for IMa2\n%d\n%d\n%s\n%s\n",
		len(nloci), len(order), strings.Join(order, " "), opt.PopTree); err != nil {
		return err
	}

	mutModel, scalar := "HKY", "1"
	if opt.IMa2 != nil {
		if opt.IMa2.MutationModel != "" {
			mutModel = opt.IMa2.MutationModel
		}
		if opt.IMa2.InheritanceScalar != "" {
			scalar = opt.IMa2.InheritanceScalar
		}
	}
	if a.Partitions.IsSingle() {
		if err := writeIMa2Locus(bw, a, a.Name, 0, a.LocusLength, populations, order, mutModel, scalar); err != nil {
			return err
		}
		return bw.Flush()
	}

	var err error
	a.Partitions.Iter(func(name string, p *partition.Partition) bool {
		err = writeIMa2Locus(bw, a, name, p.Range.Start, p.Range.End, populations, order, mutModel, scalar)
		return err == nil
	})
	if err != nil {
		return err
	}
	return bw.Flush()
}

func writeIMa2Locus(bw *bufio.Writer, a *align.Alignment, name string, start, end int, populations map[string][]string, order []string, mutModel, scalar string) error {
	missing := a.Alpha.MissingSymbol()

	type row struct {
		taxon string
		seq   string
	}
	var rows []row
	counts := make([]int, len(order))
	for i, pop := range order {
		for _, taxon := range populations[pop] {
			seq, ok := a.Rows.Get(taxon)
			if !ok {
				continue
			}
			if end > len(seq) {
				end = len(seq)
			}
			raw := seq[start:end]
			slice := strings.ToUpper(raw)
			if strings.Trim(raw, string(missing)) == "" {
				continue
			}
			rows = append(rows, row{taxon, slice})
			counts[i]++
		}
	}

	countsStr := make([]string, len(counts))
	for i, c := range counts {
		countsStr[i] = strconv.Itoa(c)
	}
	if _, err := fmt.Fprintf(bw, "%s %s %d %s %s\n", name, strings.Join(countsStr, " "), end-start, mutModel, scalar); err != nil {
		return err
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(bw, "%s%s\n", padTaxon(r.taxon, true), r.seq); err != nil {
			return err
		}
	}
	return nil
}

// groupByPopulation inverts a taxon->population map into population->taxa,
// walking taxa in taxonOrder (the alignment's row insertion order) so that
// both the population order and each population's taxon order are
// deterministic and independent of Go's map iteration order.
func groupByPopulation(m map[string]string, taxonOrder []string) (populations map[string][]string, order []string) {
	populations = make(map[string][]string)
	seen := make(map[string]bool)
	for _, taxon := range taxonOrder {
		pop, ok := m[taxon]
		if !ok {
			continue
		}
		if !seen[pop] {
			seen[pop] = true
			order = append(order, pop)
		}
		populations[pop] = append(populations[pop], taxon)
	}
	return populations, order
}
