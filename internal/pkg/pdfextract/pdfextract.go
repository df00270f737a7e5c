package pdfextract

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"

	"pdfchat/internal/rag"
)

var ErrEmptyFile = errors.New("pdf file is empty")

// ExtractPages reads the whole PDF from r and returns one entry per page, numbered
// from 1. A page whose text cannot be extracted comes back with empty text; only a
// file that cannot be opened as a PDF at all is an error.
func ExtractPages(r io.Reader) ([]rag.Page, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pdf failed: %w", err)
	}
	if len(b) == 0 {
		return nil, ErrEmptyFile
	}

	pdfReader, err := openReader(b)
	if err != nil {
		return nil, fmt.Errorf("open pdf failed: %w", err)
	}

	total := pdfReader.NumPage()
	pages := make([]rag.Page, 0, total)
	for i := 1; i <= total; i++ {
		pages = append(pages, rag.Page{Number: i, Text: pageText(pdfReader, i)})
	}
	return pages, nil
}

// openReader guards against the parser panicking on malformed input.
func openReader(b []byte) (r *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r, err = nil, fmt.Errorf("malformed pdf: %v", rec)
		}
	}()
	return pdf.NewReader(bytes.NewReader(b), int64(len(b)))
}

func pageText(r *pdf.Reader, num int) (text string) {
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
		}
	}()
	page := r.Page(num)
	if page.V.IsNull() {
		return ""
	}
	t, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return t
}
