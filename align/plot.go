// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package align

import (
	"sort"
	"strconv"
)

// PlotAdapter is the narrow boundary between the core and a GUI host's
// plotting widgets. The core builds plain data structs describing a chart
// and hands them to a PlotAdapter; it never renders anything itself and
// imports no plotting library.
type PlotAdapter interface {
	Bar(PlotData) error
	Table(TableData) error
}

// PlotData is the shape promised to a bar/histogram-style plot: a series of
// named values with optional axis labels, legend entries, and title.
type PlotData struct {
	Title    string
	AxNames  [2]string // [x, y]
	Labels   []string
	Legend   []string
	Data     [][]float64 // one slice per series, aligned with Labels
}

// TableData is the shape promised to a tabular widget: a header row plus
// the data rows.
type TableData struct {
	Title       string
	TableHeader []string
	Rows        [][]string
}

// GeneOccupancyPlot builds the PlotData for GeneOccupancy, sorted by
// descending occupancy then taxon name for a stable presentation order.
func (s *Set) GeneOccupancyPlot() PlotData {
	occ := s.GeneOccupancy()
	labels := make([]string, 0, len(occ))
	for t := range occ {
		labels = append(labels, t)
	}
	sortTaxaByValueDesc(labels, occ)

	vals := make([]float64, len(labels))
	for i, t := range labels {
		vals[i] = occ[t]
	}
	return PlotData{
		Title:   "Gene occupancy",
		AxNames: [2]string{"Taxon", "Fraction of alignments present"},
		Labels:  labels,
		Data:    [][]float64{vals},
	}
}

// CharactersProportionTable builds the TableData for
// CharactersProportionPerSpecies, with one column per observed alphabet
// character in ascending byte order.
func (s *Set) CharactersProportionTable() TableData {
	perSpecies := s.CharactersProportionPerSpecies()

	chars := make(map[byte]float64)
	for _, m := range perSpecies {
		for c := range m {
			chars[c] = 0
		}
	}
	cols := sortedKeys(chars)

	header := make([]string, 0, len(cols)+1)
	header = append(header, "taxon")
	for _, c := range cols {
		header = append(header, string(c))
	}

	taxa := make([]string, 0, len(perSpecies))
	for t := range perSpecies {
		taxa = append(taxa, t)
	}
	sortStrings(taxa)

	rows := make([][]string, 0, len(taxa))
	for _, t := range taxa {
		row := make([]string, 0, len(cols)+1)
		row = append(row, t)
		for _, c := range cols {
			row = append(row, formatFrac(perSpecies[t][c]))
		}
		rows = append(rows, row)
	}

	return TableData{
		Title:       "Character proportions per species",
		TableHeader: header,
		Rows:        rows,
	}
}

func sortTaxaByValueDesc(taxa []string, vals map[string]float64) {
	sort.Slice(taxa, func(i, j int) bool {
		if vals[taxa[i]] != vals[taxa[j]] {
			return vals[taxa[i]] > vals[taxa[j]]
		}
		return taxa[i] < taxa[j]
	})
}

func sortStrings(s []string) { sort.Strings(s) }

func formatFrac(f float64) string { return strconv.FormatFloat(f, 'f', 6, 64) }
