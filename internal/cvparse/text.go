package cvparse

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format: only pdf and docx are allowed")
	ErrEmptyText         = errors.New("no text could be extracted")
)

const (
	FormatPDF  = "pdf"
	FormatDOCX = "docx"

	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// Extraction bounds. Callers only keep the first few thousand characters, so
// a document that inflates past these is read up to the limit and cut.
const (
	maxDocumentXMLBytes = 8 << 20
	maxRawTextBytes     = 256 << 10
)

var (
	spaceRun   = regexp.MustCompile(`[ \t\r\f\v]+`)
	newlineRun = regexp.MustCompile(`\n{3,}`)
)

// DetectFormat sniffs the document format from its content.
func DetectFormat(data []byte) (string, error) {
	m := mimetype.Detect(data)
	switch {
	case m.Is(mimePDF):
		return FormatPDF, nil
	case m.Is(mimeDOCX):
		return FormatDOCX, nil
	}
	return "", ErrUnsupportedFormat
}

// ExtractText returns normalized plain text of a pdf or docx document.
func ExtractText(format string, data []byte) (string, error) {
	var (
		text string
		err  error
	)
	switch format {
	case FormatPDF:
		text, err = pdfText(data)
	case FormatDOCX:
		text, err = docxText(data)
	default:
		return "", ErrUnsupportedFormat
	}
	if err != nil {
		return "", err
	}
	text = Normalize(text)
	if text == "" {
		return "", ErrEmptyText
	}
	return text, nil
}

func pdfText(data []byte) (text string, err error) {
	// The pdf reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("read pdf: %v", r)
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}
	rs, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, io.LimitReader(rs, maxRawTextBytes)); err != nil {
		return "", err
	}
	return strings.ToValidUTF8(buf.String(), ""), nil
}

func docxText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read docx: %w", err)
	}
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		defer rc.Close()
		return documentXMLText(&io.LimitedReader{R: rc, N: maxDocumentXMLBytes})
	}
	return "", errors.New("read docx: word/document.xml not found")
}

func documentXMLText(r *io.LimitedReader) (string, error) {
	dec := xml.NewDecoder(r)
	var b strings.Builder
	inText := false
	for b.Len() < maxRawTextBytes {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if r.N <= 0 {
				// Cut off by the size limit mid-element; keep what was read.
				break
			}
			return "", fmt.Errorf("read docx: %w", err)
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
				if room := maxRawTextBytes - b.Len(); len(t) > room {
					t = t[:room]
				}
				b.Write(t)
			}
		}
	}
	return b.String(), nil
}

// Normalize collapses horizontal whitespace and blank line runs.
func Normalize(s string) string {
	s = strings.ToValidUTF8(s, "")
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = spaceRun.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	s = newlineRun.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(s)
}

// Truncate cuts s to at most limit runes.
func Truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	return string(r[:limit])
}
