package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// extractDOCX walks word/document.xml and keeps the runs of text, one
// paragraph per line.
func extractDOCX(raw []byte) (Result, error) {
	res := Result{Method: "docx-xml", Pages: 1}

	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return res, fmt.Errorf("open docx archive: %w", err)
	}
	var body *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			body = f
			break
		}
	}
	if body == nil {
		return res, errors.New("docx has no word/document.xml")
	}
	rc, err := body.Open()
	if err != nil {
		return res, fmt.Errorf("open document.xml: %w", err)
	}
	defer func() { _ = rc.Close() }()

	var (
		b      strings.Builder
		inText bool
	)
	dec := xml.NewDecoder(rc)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("parse document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				b.WriteByte('\t')
			case "br", "cr":
				b.WriteByte('\n')
			case "lastRenderedPageBreak":
				res.Pages++
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	res.Text = b.String()
	return res, nil
}

// extractDOC shells out to antiword for legacy Word files.
func (e *Extractor) extractDOC(ctx context.Context, raw []byte) (Result, error) {
	res := Result{Method: "antiword", Pages: 1}
	err := e.withTempFile(raw, ".doc", func(path string) error {
		// antiword -w 0 <path>: no line wrapping
		out, errb, err := e.runner.Run(ctx, e.cfg.Antiword, "-w", "0", path)
		if err != nil {
			if msg := strings.TrimSpace(string(errb)); msg != "" {
				res.Warnings = append(res.Warnings, msg)
			}
			return fmt.Errorf("antiword: %w", err)
		}
		res.Text = string(out)
		return nil
	})
	if err == nil {
		res.Pages += strings.Count(res.Text, "\f")
	}
	return res, err
}
