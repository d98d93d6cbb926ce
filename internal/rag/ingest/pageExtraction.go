package ingest

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/akolanti/ragrouter/internal/domain/ragErrors"
	"github.com/dslipak/pdf"
	"github.com/gabriel-vasile/mimetype"
	"github.com/lu4p/cat"
)

const (
	ContentTypePDF    = "application/pdf"
	ContentTypeBinary = "application/octet-stream"
	pageTimeout       = 10 * time.Second
)

type docKind int

const (
	kindRaw docKind = iota
	kindPDF
	kindOffice
)

func classify(path string, contentType string) docKind {
	if contentType == ContentTypePDF {
		return kindPDF
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return kindPDF
	case ".docx", ".odt", ".rtf":
		return kindOffice
	default:
		return kindRaw
	}
}

// DetectContentType keeps the client's declared type unless it is missing or generic.
func DetectContentType(path string, declared string) string {
	declared, _, _ = strings.Cut(declared, ";")
	declared = strings.TrimSpace(declared)
	if declared != "" && declared != ContentTypeBinary {
		return declared
	}
	m, err := mimetype.DetectFile(path)
	if err != nil {
		logger.Warn("content type detection failed", "path", path, "error", err)
		return ContentTypeBinary
	}
	detected, _, _ := strings.Cut(m.String(), ";")
	return detected
}

// ExtractText returns the text to chunk. PDFs are page-concatenated, office documents are
// flattened to plain text, anything else is kept as UTF-8 or base64-encoded when it is not.
func ExtractText(path string, contentType string) (string, error) {
	switch classify(path, contentType) {
	case kindPDF:
		pages, err := extractPDF(path)
		if err != nil {
			return "", err
		}
		return strings.Join(pages, "\n"), nil
	case kindOffice:
		text, err := cat.File(path)
		if err != nil {
			return "", ragErrors.InvalidInput("could not decode document", err)
		}
		return text, nil
	default:
		return readRaw(path)
	}
}

func readRaw(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading upload: %w", err)
	}
	if utf8.Valid(data) {
		return string(data), nil
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

func extractPDF(path string) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = ragErrors.InvalidInput("could not decode PDF", fmt.Errorf("pdf parser panic: %v", r))
		}
	}()

	f, err := pdf.Open(path)
	if err != nil {
		return nil, ragErrors.InvalidInput("could not decode PDF", err)
	}

	numPages := f.NumPage()
	logger.Debug("extractPDF", "number of pages", numPages)
	for i := 1; i <= numPages; i++ {
		page := f.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := protectExtract(page)
		if err != nil {
			return nil, ragErrors.InvalidInput(fmt.Sprintf("could not decode PDF page %d", i), err)
		}
		pages = append(pages, content)
	}
	return pages, nil
}

func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				resChan <- result{"", fmt.Errorf("page extraction panic: %v", r)}
			}
		}()
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(pageTimeout):
		return "", errors.New("page extraction timed out")
	}
}
