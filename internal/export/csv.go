package export

import (
	"bufio"
	"io"
	"strings"

	"jobcollect-engine/internal/domain"
)

// WriteCSV writes a header row and one row per record. Text is always quoted
// with embedded quotes doubled; numbers and booleans are bare; null is an
// empty bare field. Backslashes are ordinary characters.
func WriteCSV(w io.Writer, ds domain.Dataset) error {
	bw := bufio.NewWriter(w)

	for i, name := range ds.ColumnNames() {
		if i > 0 {
			bw.WriteByte(',')
		}
		writeQuoted(bw, name)
	}
	bw.WriteByte('\n')

	for _, r := range ds.Records {
		for i, c := range ds.Columns {
			if i > 0 {
				bw.WriteByte(',')
			}
			writeValue(bw, r.Get(c))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func writeValue(bw *bufio.Writer, v domain.Value) {
	switch v.Kind() {
	case domain.KindAbsent, domain.KindNull:
	case domain.KindNumber, domain.KindBool:
		bw.WriteString(v.Text())
	default:
		writeQuoted(bw, v.Text())
	}
}

func writeQuoted(bw *bufio.Writer, s string) {
	bw.WriteByte('"')
	bw.WriteString(strings.ReplaceAll(s, `"`, `""`))
	bw.WriteByte('"')
}
