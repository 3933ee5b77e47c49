package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var disablePDFConfigDir sync.Once

func pdfConfig() *model.Configuration {
	disablePDFConfigDir.Do(api.DisableConfigDir)
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// extractPDF checks the structure with pdfcpu, then pulls the text layer
// with pdftotext. Scanned PDFs without a text layer fail.
func (e *Extractor) extractPDF(ctx context.Context, raw []byte) (Result, error) {
	res := Result{Method: "pdftotext"}

	pages, err := api.PageCount(bytes.NewReader(raw), pdfConfig())
	if err != nil {
		return res, fmt.Errorf("read pdf structure: %w", err)
	}
	res.Pages = pages

	err = e.withTempFile(raw, ".pdf", func(path string) error {
		// pdftotext -layout -enc UTF-8 -eol unix <path> -
		out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
		if err != nil {
			if msg := strings.TrimSpace(string(errb)); msg != "" {
				res.Warnings = append(res.Warnings, msg)
			}
			return fmt.Errorf("pdftotext: %w", err)
		}
		res.Text = string(out)
		return nil
	})
	if err != nil {
		return res, err
	}
	if strings.TrimSpace(strings.ReplaceAll(res.Text, "\f", "")) == "" {
		return res, errors.New("pdf has no text layer")
	}
	return res, nil
}
