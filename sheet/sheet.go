// Package sheet reads office workbooks and writes filtered reports with
// excelize.
package sheet

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/unicode/norm"

	"github.com/jalad-shrimali/bureaux-filter/bureau"
)

var ErrNoSheet = errors.New("workbook has no sheet")

// ReportHeader is the column order of the exported table.
var ReportHeader = []string{"Titre", "Lieu", "Ville", "Tél", "Fax", "D", "Matricule"}

const (
	reportSheet  = "Bureaux"
	compositeCol = 1
)

// ReadRows returns every row of the first sheet. The composite column is NFC
// normalised so that a decomposed "Tél" reads the same as the composed one;
// every other cell is returned as stored.
func ReadRows(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheet
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	for _, row := range rows {
		if len(row) > compositeCol {
			row[compositeCol] = norm.NFC.String(row[compositeCol])
		}
	}
	return rows, nil
}

// ReadFile is ReadRows on a workbook stored on disk.
func ReadFile(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadRows(f)
}

func reportRow(r bureau.Record) []string {
	return []string{r.Title, r.Location, r.City, r.Phone, r.Fax, r.CategoryRaw, r.Identifier}
}

// WriteReport writes recs as a single-sheet workbook, one row per record,
// with the raw category cell in column D.
func WriteReport(w io.Writer, recs []bureau.Record) error {
	x := excelize.NewFile()
	defer x.Close()

	if err := x.SetSheetName("Sheet1", reportSheet); err != nil {
		return err
	}

	header := append([]string(nil), ReportHeader...)
	if err := x.SetSheetRow(reportSheet, "A1", &header); err != nil {
		return err
	}
	for i, r := range recs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := reportRow(r)
		if err := x.SetSheetRow(reportSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	bold, err := x.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(ReportHeader), 1)
	if err := x.SetCellStyle(reportSheet, "A1", last, bold); err != nil {
		return err
	}
	if err := x.SetColWidth(reportSheet, "A", "B", 36); err != nil {
		return err
	}
	if err := x.SetColWidth(reportSheet, "C", "G", 18); err != nil {
		return err
	}

	return x.Write(w)
}

// WriteReportFile is WriteReport into a new file at path.
func WriteReportFile(path string, recs []bureau.Record) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteReport(out, recs); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
