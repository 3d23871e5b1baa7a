package store

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"github.com/cwbudde/regfit/internal/infer"
)

// CSVStore persists ranked solution lists as tab-separated files, one file
// per hand-off. Each solution is written as a header line, one row per
// node (lambda, vmax, then the dense edge-weight row) and a trailing
// `Cost\t<value>` line; the top solutions of a list are concatenated into
// the same file.
//
// Writes use the temp file + rename pattern, so a crash never leaves a
// half-written result behind.
type CSVStore struct {
	dir     string
	headers []string
	topK    int
}

// NewCSVStore creates a store writing into a fresh run directory under
// baseDir, named by a random run ID. nodeNames become the edge-weight
// column headers; topK bounds how many solutions of a ranked list are
// written.
func NewCSVStore(baseDir string, nodeNames []string, topK int) (*CSVStore, error) {
	if topK < 1 {
		return nil, fmt.Errorf("topK must be positive, got %d", topK)
	}
	runID := uuid.New().String()
	dir := filepath.Join(baseDir, "runs", runID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create run directory: %w", err)
	}

	headers := append([]string{"lambda", "vmax"}, nodeNames...)
	slog.Info("Created run directory", "run_id", runID, "dir", dir)
	return &CSVStore{dir: dir, headers: headers, topK: topK}, nil
}

// Dir returns the run directory results are written into.
func (s *CSVStore) Dir() string {
	return s.dir
}

// HandleSolutions writes the top solutions of the ranked list. An empty
// name selects the default per-round filename, which encodes how many
// solutions are printed and the round's variable count.
func (s *CSVStore) HandleSolutions(solutions []*infer.Solution, name string) error {
	if len(solutions) == 0 {
		return fmt.Errorf("no solutions to persist")
	}
	if name == "" {
		name = fmt.Sprintf("top%dsolutions_%dvariables", s.topK, solutions[0].NumVariables())
	}
	path := filepath.Join(s.dir, name+".csv")

	tempPath := path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temp result file: %w", err)
	}

	writer := csv.NewWriter(file)
	writer.Comma = '\t'
	if err := s.writeSolutions(writer, solutions); err != nil {
		file.Close()
		os.Remove(tempPath)
		return err
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to write results: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close temp result file: %w", err)
	}

	// Atomic rename to final location
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename result file: %w", err)
	}

	slog.Info("Solutions written", "file", path, "solutions", min(s.topK, len(solutions)))
	return nil
}

func (s *CSVStore) writeSolutions(writer *csv.Writer, solutions []*infer.Solution) error {
	count := min(s.topK, len(solutions))
	for i := 0; i < count; i++ {
		solution := solutions[i]
		if err := writer.Write(s.headers); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		matrix := solution.Matrix()
		rows, cols := matrix.Dims()
		record := make([]string, cols)
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				record[c] = strconv.FormatFloat(matrix.At(r, c), 'g', -1, 64)
			}
			if err := writer.Write(record); err != nil {
				return fmt.Errorf("failed to write solution row: %w", err)
			}
		}
		cost := []string{"Cost", strconv.FormatFloat(solution.Cost, 'g', -1, 64)}
		if err := writer.Write(cost); err != nil {
			return fmt.Errorf("failed to write cost row: %w", err)
		}
	}
	return nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
