package extract

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

func extractPlain(raw []byte) (Result, error) {
	res := Result{Method: "plain", Pages: 1}
	if !utf8.Valid(raw) {
		res.Warnings = append(res.Warnings, "invalid utf-8 sequences dropped")
		raw = bytes.ToValidUTF8(raw, nil)
	}
	res.Text = string(raw)
	return res, nil
}

// extractCSV re-emits each record on its own line with fields separated by
// " | ", so quoting artefacts do not leak into the text.
func extractCSV(raw []byte) (Result, error) {
	res := Result{Method: "csv", Pages: 1}
	if !utf8.Valid(raw) {
		res.Warnings = append(res.Warnings, "invalid utf-8 sequences dropped")
		raw = bytes.ToValidUTF8(raw, nil)
	}
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))

	r := csv.NewReader(bytes.NewReader(raw))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	var b strings.Builder
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("parse csv: %w", err)
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strings.Join(rec, " | "))
	}
	res.Text = b.String()
	return res, nil
}
