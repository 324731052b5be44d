package sheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// WriteTSV writes the snapshot rows as tab separated values. Short rows are padded to the
// width of the widest row so that every record has the same number of fields.
func WriteTSV(f io.Writer, snapshot *Snapshot) error {
	if snapshot.Len() == 0 {
		return ErrEmptyResult
	}

	width := 0
	for _, row := range snapshot.Rows {
		if len(row) > width {
			width = len(row)
		}
	}

	w := csv.NewWriter(f)
	w.Comma = '\t'

	for _, row := range snapshot.Rows {
		record := make([]string, width)
		for i, v := range row {
			record[i] = Format(v)
		}

		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()

	return w.Error()
}

// Format returns the display text of a cell.
func Format(v any) string {
	switch c := v.(type) {
	case nil:
		return ""

	case string:
		return clean(c)

	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64)

	case bool:
		return strconv.FormatBool(c)

	default:
		return fmt.Sprintf("%v", c)
	}
}

func clean(v string) string {
	return strings.TrimSpace(v)
}
