// Package xlsx extracts text from XLSX spreadsheets.
package xlsx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Extractor handles XLSX spreadsheets. Legacy XLS is declared too since the
// binary format is routinely resaved as XLSX; a genuine binary workbook is
// detected by its OLE2 header and rejected with a message naming the fix.
type Extractor struct{}

// ole2Signature is the compound-file header of legacy binary Office files.
var ole2Signature = []byte{0xd0, 0xcf, 0x11, 0xe0, 0xa1, 0xb1, 0x1a, 0xe1}

// New creates a new XLSX extractor.
func New() *Extractor {
	return &Extractor{}
}

// Formats returns the formats this extractor handles.
func (e *Extractor) Formats() []domain.Format {
	return []domain.Format{domain.FormatXLSX, domain.FormatXLS}
}

// Extract converts XLSX bytes to plain text.
// Each worksheet row becomes one line with cells joined by commas; sheets
// are separated by a blank line.
func (e *Extractor) Extract(_ context.Context, content []byte) (string, error) {
	if bytes.HasPrefix(content, ole2Signature) {
		return "", fmt.Errorf("%w: legacy binary .xls workbook; resave it as .xlsx", domain.ErrUnsupportedFormat)
	}

	reader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("%w: open spreadsheet archive: %v", domain.ErrInvalidInput, err)
	}

	shared, err := readSharedStrings(reader)
	if err != nil {
		return "", err
	}

	var sheetNames []string
	for _, file := range reader.File {
		if strings.HasPrefix(file.Name, "xl/worksheets/sheet") && strings.HasSuffix(file.Name, ".xml") {
			sheetNames = append(sheetNames, file.Name)
		}
	}
	sort.Strings(sheetNames)

	var b strings.Builder
	for _, name := range sheetNames {
		text, err := extractSheetText(reader, name, shared)
		if err != nil {
			return "", err
		}
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(text)
	}

	return b.String(), nil
}

// sharedStringsXML represents xl/sharedStrings.xml.
type sharedStringsXML struct {
	Items []sharedStringItem `xml:"si"`
}

type sharedStringItem struct {
	Text string      `xml:"t"`
	Runs []sharedRun `xml:"r"`
}

type sharedRun struct {
	Text string `xml:"t"`
}

func (s sharedStringItem) value() string {
	if len(s.Runs) == 0 {
		return s.Text
	}
	var b strings.Builder
	for _, r := range s.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// readSharedStrings parses the shared string table if present.
func readSharedStrings(reader *zip.Reader) ([]string, error) {
	data, ok, err := readZipFile(reader, "xl/sharedStrings.xml")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var sst sharedStringsXML
	if err := xml.Unmarshal(data, &sst); err != nil {
		return nil, fmt.Errorf("%w: parse shared strings: %v", domain.ErrInvalidInput, err)
	}

	strs := make([]string, len(sst.Items))
	for i, item := range sst.Items {
		strs[i] = item.value()
	}
	return strs, nil
}

// worksheetXML represents an xl/worksheets/sheetN.xml file.
type worksheetXML struct {
	Rows []worksheetRow `xml:"sheetData>row"`
}

type worksheetRow struct {
	Cells []worksheetCell `xml:"c"`
}

type worksheetCell struct {
	Type   string `xml:"t,attr"`
	Value  string `xml:"v"`
	Inline string `xml:"is>t"`
}

// extractSheetText renders one worksheet as comma-joined rows.
func extractSheetText(reader *zip.Reader, name string, shared []string) (string, error) {
	data, ok, err := readZipFile(reader, name)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", nil
	}

	var sheet worksheetXML
	if err := xml.Unmarshal(data, &sheet); err != nil {
		return "", fmt.Errorf("%w: parse worksheet %s: %v", domain.ErrInvalidInput, name, err)
	}

	var b strings.Builder
	for _, row := range sheet.Rows {
		values := make([]string, 0, len(row.Cells))
		empty := true
		for _, cell := range row.Cells {
			v := cellValue(cell, shared)
			if v != "" {
				empty = false
			}
			values = append(values, v)
		}
		if empty {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(strings.Join(values, ", "))
	}

	return strings.TrimSpace(b.String()), nil
}

// cellValue resolves a cell to its display text.
func cellValue(cell worksheetCell, shared []string) string {
	switch cell.Type {
	case "s":
		idx, err := strconv.Atoi(cell.Value)
		if err != nil || idx < 0 || idx >= len(shared) {
			return ""
		}
		return shared[idx]
	case "inlineStr":
		return cell.Inline
	case "b":
		if cell.Value == "1" {
			return "true"
		}
		return "false"
	default:
		return cell.Value
	}
}

// readZipFile reads one file from the archive, reporting presence separately.
func readZipFile(reader *zip.Reader, name string) ([]byte, bool, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, false, fmt.Errorf("%w: open %s: %v", domain.ErrInvalidInput, name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, false, fmt.Errorf("%w: read %s: %v", domain.ErrInvalidInput, name, err)
		}
		return data, true, nil
	}
	return nil, false, nil
}
