package excel

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"golir/internal"
)

// PoolReader reads labeled score pools from Excel and CSV files. The sheet
// must carry a header row; one column holds the 0/1 hypothesis label and the
// remaining numeric columns are features.
type PoolReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	log      *internal.Logger
}

// NewPoolReader creates a reader that handles both Excel and CSV files
func NewPoolReader(filePath string) *PoolReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &PoolReader{filePath: filePath, fileType: fileType, log: internal.DefaultLogger}
}

// ReadPools reads the file and partitions feature rows by the named label
// column into the two hypothesis pools.
func (r *PoolReader) ReadPools(labelColumn string) (pool0, pool1 [][]float64, err error) {
	r.log.Debug("[PoolReader] reading %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	var rows [][]string
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	case "xlsx":
		rows, err = r.readExcelRows()
	default:
		return nil, nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
	if err != nil {
		return nil, nil, err
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("%s file must have at least a header row and one data row", strings.ToUpper(r.fileType))
	}

	return r.partitionRows(rows, labelColumn)
}

// readExcelRows reads Sheet1 as string cells
func (r *PoolReader) readExcelRows() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	// Always use Sheet1
	rows, err := f.GetRows("Sheet1")
	if err != nil {
		return nil, fmt.Errorf("failed to read Sheet1: %w", err)
	}
	return rows, nil
}

func (r *PoolReader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

// partitionRows parses the header, locates the label column and splits the
// remaining numeric columns into the two pools.
func (r *PoolReader) partitionRows(rows [][]string, labelColumn string) (pool0, pool1 [][]float64, err error) {
	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}

	labelIdx := -1
	for i, h := range headers {
		if strings.EqualFold(h, labelColumn) {
			labelIdx = i
			break
		}
	}
	if labelIdx == -1 {
		return nil, nil, fmt.Errorf("label column %q not found in headers %v", labelColumn, headers)
	}

	for i, row := range rows[1:] {
		if len(row) != len(headers) {
			return nil, nil, fmt.Errorf("row %d has %d cells, header has %d", i+2, len(row), len(headers))
		}

		label, err := strconv.Atoi(strings.TrimSpace(row[labelIdx]))
		if err != nil || (label != 0 && label != 1) {
			return nil, nil, fmt.Errorf("row %d: label %q must be 0 or 1", i+2, row[labelIdx])
		}

		features := make([]float64, 0, len(row)-1)
		for j, cell := range row {
			if j == labelIdx {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("row %d column %q: %w", i+2, headers[j], err)
			}
			features = append(features, v)
		}

		if label == 0 {
			pool0 = append(pool0, features)
		} else {
			pool1 = append(pool1, features)
		}
	}

	r.log.Info("[PoolReader] %s file processed (%d features, %d/%d samples per class)",
		strings.ToUpper(r.fileType), len(headers)-1, len(pool0), len(pool1))
	return pool0, pool1, nil
}
