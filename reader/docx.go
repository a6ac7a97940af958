package reader

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// docx is a ZIP archive; the body text lives in word/document.xml.
type docxDocument struct {
	XMLName xml.Name `xml:"document"`
	Body    docxBody `xml:"body"`
}

type docxBody struct {
	Paragraphs []docxParagraph `xml:"p"`
	Tables     []docxTable     `xml:"tbl"`
}

type docxParagraph struct {
	Runs       []docxRun       `xml:"r"`
	Hyperlinks []docxHyperlink `xml:"hyperlink"`
}

type docxRun struct {
	Text []docxText `xml:"t"`
	Tabs []struct{} `xml:"tab"`
}

type docxText struct {
	Content string `xml:",chardata"`
}

type docxHyperlink struct {
	Runs []docxRun `xml:"r"`
}

type docxTable struct {
	Rows []docxTableRow `xml:"tr"`
}

type docxTableRow struct {
	Cells []docxTableCell `xml:"tc"`
}

type docxTableCell struct {
	Paragraphs []docxParagraph `xml:"p"`
}

func extractDocx(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open DOCX archive: %w", err)
	}

	for _, file := range zr.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("failed to open document.xml: %w", err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("failed to read document.xml: %w", err)
		}
		return parseDocxXML(content), nil
	}

	return "", fmt.Errorf("document.xml not found in DOCX archive")
}

func parseDocxXML(content []byte) string {
	var doc docxDocument
	if err := xml.Unmarshal(content, &doc); err != nil {
		return docxTextFallback(content)
	}

	var parts []string
	for _, para := range doc.Body.Paragraphs {
		if text := paragraphText(&para); text != "" {
			parts = append(parts, text)
		}
	}
	for _, tbl := range doc.Body.Tables {
		if text := tableText(&tbl); text != "" {
			parts = append(parts, text)
		}
	}

	return strings.Join(parts, "\n\n")
}

func paragraphText(para *docxParagraph) string {
	var parts []string
	for _, run := range para.Runs {
		for _, text := range run.Text {
			if text.Content != "" {
				parts = append(parts, text.Content)
			}
		}
		for range run.Tabs {
			parts = append(parts, "\t")
		}
	}
	for _, link := range para.Hyperlinks {
		for _, run := range link.Runs {
			for _, text := range run.Text {
				if text.Content != "" {
					parts = append(parts, text.Content)
				}
			}
		}
	}
	return strings.TrimSpace(strings.Join(parts, ""))
}

func tableText(tbl *docxTable) string {
	var rows []string
	for _, row := range tbl.Rows {
		var cells []string
		for _, cell := range row.Cells {
			var cellParts []string
			for _, para := range cell.Paragraphs {
				if text := paragraphText(&para); text != "" {
					cellParts = append(cellParts, text)
				}
			}
			cells = append(cells, strings.Join(cellParts, " "))
		}
		if len(cells) > 0 {
			rows = append(rows, strings.Join(cells, " | "))
		}
	}
	return strings.Join(rows, "\n")
}

var docxTextRegex = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)

// docxTextFallback scrapes text runs directly when the XML does not
// unmarshal cleanly.
func docxTextFallback(content []byte) string {
	matches := docxTextRegex.FindAllSubmatch(content, -1)
	var parts []string
	for _, match := range matches {
		if len(match) > 1 && len(match[1]) > 0 {
			parts = append(parts, string(match[1]))
		}
	}
	return strings.Join(parts, " ")
}
