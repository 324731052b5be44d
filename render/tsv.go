package render

import (
	"encoding/csv"
	"fmt"
	"io"
)

// TSV writes the result rows as tab separated values with a header row.
type TSV struct {
}

func (t TSV) Render(w io.Writer, page Page) error {
	tsv := csv.NewWriter(w)
	tsv.Comma = '\t'

	tsv.Write([]string{"Text", "Row", "Checked"})
	for _, row := range page.Rows {
		tsv.Write([]string{row.Text, fmt.Sprintf("%v", row.Row), fmt.Sprintf("%v", row.Checked)})
	}

	tsv.Flush()

	return tsv.Error()
}
