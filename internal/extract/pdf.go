package extract

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

func init() {
	// pdfcpu otherwise creates a config directory under the user's home.
	api.DisableConfigDir()
}

// pdfDocument counts pages with pdfcpu and reads page text with ledongthuc/pdf.
type pdfDocument struct {
	pages  int
	reader *pdf.Reader
}

// OpenPDF validates data as a PDF and prepares it for page-by-page reading.
// No page content is decoded here.
func OpenPDF(data []byte) (Document, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	pages, err := api.PageCount(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read page count: %w", err)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to read pdf: %w", err)
	}

	return &pdfDocument{pages: pages, reader: reader}, nil
}

func (d *pdfDocument) NumPage() int {
	return d.pages
}

func (d *pdfDocument) PageText(n int) (string, error) {
	page := d.reader.Page(n)
	if page.V.IsNull() {
		return "", fmt.Errorf("page %d not found", n)
	}
	return page.GetPlainText(nil)
}
