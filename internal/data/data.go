// Package data parses the tab-separated input files: the network edge
// list, per-patient expression series, the time sequence and the optional
// perturbation matrix.
package data

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

// ParseError reports a malformed input file.
type ParseError struct {
	File   string
	Reason string
}

func (e *ParseError) Error() string {
	return "parse error in " + e.File + ": " + e.Reason
}

func readRecords(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = '\t'
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, &ParseError{File: path, Reason: "file is empty"}
	}
	return records, nil
}

// ParseNetwork reads an edge list with "source" and "target" headers and
// returns the regulator -> targets map. Duplicate edges collapse; targets
// are returned sorted.
func ParseNetwork(path string) (map[string][]string, error) {
	records, err := readRecords(path)
	if err != nil {
		return nil, err
	}

	sourceCol, targetCol := -1, -1
	for i, header := range records[0] {
		switch header {
		case "source":
			sourceCol = i
		case "target":
			targetCol = i
		}
	}
	if sourceCol < 0 || targetCol < 0 {
		return nil, &ParseError{File: path, Reason: `missing "source" or "target" header`}
	}

	edges := make(map[string]map[string]bool)
	for _, record := range records[1:] {
		source := record[sourceCol]
		target := record[targetCol]
		if source == "" || target == "" {
			return nil, &ParseError{File: path, Reason: "empty node name"}
		}
		if edges[source] == nil {
			edges[source] = make(map[string]bool)
		}
		edges[source][target] = true
	}

	network := make(map[string][]string, len(edges))
	for source, targets := range edges {
		list := make([]string, 0, len(targets))
		for target := range targets {
			list = append(list, target)
		}
		sort.Strings(list)
		network[source] = list
	}
	return network, nil
}

// ParseTimes reads the time-sequence file: a header row naming the time
// points followed by one row of values, returned in column order.
func ParseTimes(path string) ([]float64, error) {
	records, err := readRecords(path)
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, &ParseError{File: path, Reason: "no time values after header"}
	}

	var times []float64
	for _, record := range records[1:] {
		for i, field := range record {
			value, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, &ParseError{File: path, Reason: fmt.Sprintf(
					"time value %q in column %d is not a number", field, i)}
			}
			times = append(times, value)
		}
	}
	return times, nil
}

// ParseSeries reads one expression data file: a "source" column naming the
// node plus one column per time point. Returns node -> series in file
// column order.
func ParseSeries(path string) (map[string][]float64, error) {
	records, err := readRecords(path)
	if err != nil {
		return nil, err
	}

	sourceCol := -1
	for i, header := range records[0] {
		if header == "source" {
			sourceCol = i
		}
	}
	if sourceCol < 0 {
		return nil, &ParseError{File: path, Reason: `missing "source" header`}
	}

	series := make(map[string][]float64)
	for _, record := range records[1:] {
		name := record[sourceCol]
		if name == "" {
			return nil, &ParseError{File: path, Reason: "empty node name"}
		}
		if _, ok := series[name]; ok {
			return nil, &ParseError{File: path, Reason: "duplicate node " + name}
		}
		values := make([]float64, 0, len(record)-1)
		for i, field := range record {
			if i == sourceCol {
				continue
			}
			value, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, &ParseError{File: path, Reason: fmt.Sprintf(
					"value %q for node %s is not a number", field, name)}
			}
			values = append(values, value)
		}
		series[name] = values
	}
	if len(series) == 0 {
		return nil, &ParseError{File: path, Reason: "no data rows"}
	}
	return series, nil
}

// ParsePerturbations reads the perturbation matrix for n nodes. The file
// may carry a non-numeric header row and extra trailing columns; the first
// n columns of the n data rows are used. Returns ok=false without error
// when the matrix does not cover n x n, matching the tolerant handling of
// optional perturbation data.
func ParsePerturbations(path string, n int) (*mat.Dense, bool, error) {
	records, err := readRecords(path)
	if err != nil {
		return nil, false, err
	}

	// A header row is detected by its first field not parsing as a number.
	rows := records
	if _, err := strconv.ParseFloat(records[0][0], 64); err != nil {
		rows = records[1:]
	}

	if len(rows) != n || len(rows[0]) < n {
		return nil, false, nil
	}

	matrix := mat.NewDense(n, n, nil)
	for r, record := range rows {
		for c := 0; c < n; c++ {
			value, err := strconv.ParseFloat(record[c], 64)
			if err != nil {
				return nil, false, &ParseError{File: path, Reason: fmt.Sprintf(
					"value %q at row %d, column %d is not a number", record[c], r, c)}
			}
			matrix.Set(r, c, value)
		}
	}
	return matrix, true, nil
}
