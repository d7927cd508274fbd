package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand/v2"
	"strconv"

	"alfredoptarigan/internship-predictor/internal/features"
)

const (
	datasetTextColumn  = "Resume"
	datasetLabelColumn = "Category"

	// LabelColumn names the target column of an exported training table.
	LabelColumn = "internship_type"
)

// LabelledResume is one row of the labelled resume dataset.
type LabelledResume struct {
	Text     string
	Category string
}

// ReadDataset parses a CSV with Resume and Category columns.
func ReadDataset(r io.Reader) ([]LabelledResume, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset header: %w", err)
	}

	textIdx, labelIdx := -1, -1
	for i, col := range header {
		switch col {
		case datasetTextColumn:
			textIdx = i
		case datasetLabelColumn:
			labelIdx = i
		}
	}
	if textIdx < 0 || labelIdx < 0 {
		return nil, fmt.Errorf("dataset needs %q and %q columns, got %v", datasetTextColumn, datasetLabelColumn, header)
	}

	var out []LabelledResume
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read dataset line %d: %w", line, err)
		}
		if textIdx >= len(row) || labelIdx >= len(row) {
			return nil, fmt.Errorf("dataset line %d has %d fields", line, len(row))
		}
		out = append(out, LabelledResume{Text: row[textIdx], Category: row[labelIdx]})
	}

	return out, nil
}

// TrainingTable is the feature table the external trainer consumes.
type TrainingTable struct {
	Columns []string
	Rows    []features.Vector
	Labels  []string
}

// BuildTrainingTable folds and cleans every resume the way served text is,
// then applies the boosted training profile.
// Columns are resume_text, the extracted signals, then academic_background.
func BuildTrainingTable(records []LabelledResume) *TrainingTable {
	table := &TrainingTable{}
	for _, rec := range records {
		cleaned := features.Normalize(CleanText(rec.Text))
		extracted := features.ExtractTraining(cleaned).Vector

		fields := []features.Field{{Name: features.ColumnResumeText, Value: cleaned}}
		for _, key := range extracted.Keys() {
			value, _ := extracted.Get(key)
			fields = append(fields, features.Field{Name: key, Value: value})
		}
		fields = append(fields, features.Field{Name: features.ColumnAcademicBackground, Value: features.DefaultAcademicBackground})

		row := features.NewVector(fields...)
		if table.Columns == nil {
			table.Columns = row.Keys()
		}
		table.Rows = append(table.Rows, row)
		table.Labels = append(table.Labels, rec.Category)
	}
	return table
}

// Balance oversamples every class with replacement up to the size of the
// largest one. Classes keep their first-seen order and original rows come first.
func (t *TrainingTable) Balance(rng *rand.Rand) *TrainingTable {
	var order []string
	byClass := make(map[string][]int)
	for i, label := range t.Labels {
		if _, ok := byClass[label]; !ok {
			order = append(order, label)
		}
		byClass[label] = append(byClass[label], i)
	}

	maxCount := 0
	for _, idxs := range byClass {
		maxCount = max(maxCount, len(idxs))
	}

	out := &TrainingTable{Columns: t.Columns}
	for _, label := range order {
		idxs := byClass[label]
		all := append([]int(nil), idxs...)
		for range maxCount - len(idxs) {
			all = append(all, idxs[rng.IntN(len(idxs))])
		}
		for _, i := range all {
			out.Rows = append(out.Rows, t.Rows[i])
			out.Labels = append(out.Labels, label)
		}
	}
	return out
}

// WriteCSV writes the table with the label as the last column.
func (t *TrainingTable) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(append(append([]string(nil), t.Columns...), LabelColumn)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	record := make([]string, len(t.Columns)+1)
	for i, row := range t.Rows {
		for j, col := range t.Columns {
			record[j] = cell(row, col)
		}
		record[len(t.Columns)] = t.Labels[i]
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func cell(row features.Vector, col string) string {
	value, _ := row.Get(col)
	switch v := value.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
