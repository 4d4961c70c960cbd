// Package stats renders run artifacts: per-generation histories as CSV, JSON
// and XLSX files, and a plain-text run report.
package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/xuri/excelize/v2"

	"auxesis/internal/model"
)

// WriteFitnessHistoryCSV writes one row per generation: index and best
// fitness.
func WriteFitnessHistoryCSV(w io.Writer, history []float64) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"generation", "best_fitness"}); err != nil {
		return err
	}
	for i, fitness := range history {
		if err := cw.Write([]string{
			strconv.Itoa(i),
			strconv.FormatFloat(fitness, 'g', -1, 64),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

var diagnosticsHeader = []string{
	"generation", "best_fitness", "mean_fitness", "min_fitness",
	"species_count", "mean_complexity", "max_complexity",
	"regulation_mode", "evaluations", "non_viable",
}

func diagnosticsRow(d model.GenerationDiagnostics) []string {
	return []string{
		strconv.Itoa(d.Generation),
		strconv.FormatFloat(d.BestFitness, 'g', -1, 64),
		strconv.FormatFloat(d.MeanFitness, 'g', -1, 64),
		strconv.FormatFloat(d.MinFitness, 'g', -1, 64),
		strconv.Itoa(d.SpeciesCount),
		strconv.FormatFloat(d.MeanComplexity, 'g', -1, 64),
		strconv.Itoa(d.MaxComplexity),
		d.RegulationMode,
		strconv.Itoa(d.Evaluations),
		strconv.Itoa(d.NonViable),
	}
}

// WriteDiagnosticsCSV writes the generation diagnostics table.
func WriteDiagnosticsCSV(w io.Writer, diagnostics []model.GenerationDiagnostics) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(diagnosticsHeader); err != nil {
		return err
	}
	for _, d := range diagnostics {
		if err := cw.Write(diagnosticsRow(d)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ExportDiagnosticsXLSX writes the fitness history and diagnostics as a
// two-sheet workbook.
func ExportDiagnosticsXLSX(path string, history []float64, diagnostics []model.GenerationDiagnostics) error {
	f := excelize.NewFile()
	defer f.Close()

	const fitnessSheet = "Fitness"
	if err := f.SetSheetName("Sheet1", fitnessSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(fitnessSheet, "A1", &[]any{"generation", "best_fitness"}); err != nil {
		return err
	}
	for i, fitness := range history {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(fitnessSheet, cell, &[]any{i, fitness}); err != nil {
			return err
		}
	}

	const diagSheet = "Diagnostics"
	if _, err := f.NewSheet(diagSheet); err != nil {
		return err
	}
	header := make([]any, len(diagnosticsHeader))
	for i, h := range diagnosticsHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(diagSheet, "A1", &header); err != nil {
		return err
	}
	for i, d := range diagnostics {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			d.Generation, d.BestFitness, d.MeanFitness, d.MinFitness,
			d.SpeciesCount, d.MeanComplexity, d.MaxComplexity,
			d.RegulationMode, d.Evaluations, d.NonViable,
		}
		if err := f.SetSheetRow(diagSheet, cell, &row); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}

// WriteRunArtifacts drops the standard artifact set for a run into dir:
// fitness CSV, diagnostics CSV, and species history JSON.
func WriteRunArtifacts(dir, runID string, history []float64, diagnostics []model.GenerationDiagnostics, species []model.SpeciesGeneration) error {
	runDir := filepath.Join(dir, runID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return err
	}

	write := func(name string, fn func(io.Writer) error) error {
		f, err := os.Create(filepath.Join(runDir, name))
		if err != nil {
			return err
		}
		if err := fn(f); err != nil {
			_ = f.Close()
			return err
		}
		return f.Close()
	}

	if err := write("fitness.csv", func(w io.Writer) error {
		return WriteFitnessHistoryCSV(w, history)
	}); err != nil {
		return err
	}
	if err := write("diagnostics.csv", func(w io.Writer) error {
		return WriteDiagnosticsCSV(w, diagnostics)
	}); err != nil {
		return err
	}
	return write("species.json", func(w io.Writer) error {
		return WriteJSON(w, species)
	})
}

// RenderRunReport writes a short human-readable summary of a finished run.
func RenderRunReport(w io.Writer, runID string, diagnostics []model.GenerationDiagnostics, solved bool) error {
	if len(diagnostics) == 0 {
		_, err := fmt.Fprintf(w, "run %s: no generations executed\n", runID)
		return err
	}
	last := diagnostics[len(diagnostics)-1]
	evaluations := 0
	for _, d := range diagnostics {
		evaluations += d.Evaluations
	}

	status := "stopped"
	if solved {
		status = "solved"
	}
	_, err := fmt.Fprintf(w,
		"run %s: %s after %s generations, %s evaluations\n"+
			"  best fitness %.4f, mean complexity %.1f, %d species, %s mode\n",
		runID, status,
		humanize.Comma(int64(len(diagnostics))),
		humanize.Comma(int64(evaluations)),
		last.BestFitness, last.MeanComplexity, last.SpeciesCount, last.RegulationMode,
	)
	return err
}
