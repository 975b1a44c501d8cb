package source

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"quoteboard/internal/quote"

	"golang.org/x/text/encoding/traditionalchinese"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Encoding names reported by decodeText.
const (
	EncodingUTF8 = "utf-8"
	EncodingBig5 = "big5"
)

// decodeText returns b as UTF-8 text. Bytes that are not valid UTF-8 are
// decoded as Big5 (CP950), the encoding Excel uses for Traditional Chinese CSV.
func decodeText(b []byte) (string, string, error) {
	b = bytes.TrimPrefix(b, utf8BOM)
	if utf8.Valid(b) {
		return string(b), EncodingUTF8, nil
	}
	out, err := traditionalchinese.Big5.NewDecoder().Bytes(b)
	if err != nil {
		return "", "", fmt.Errorf("decode as %s: %w", EncodingBig5, err)
	}
	return string(out), EncodingBig5, nil
}

// parseCSV reads a header row and data rows. Rows are padded or truncated
// to the header width.
func parseCSV(r io.Reader) (*quote.RawTable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("no header row")
		}
		return nil, err
	}

	table := &quote.RawTable{Header: header}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make([]string, len(header))
		copy(row, rec)
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// decodeCSV decodes raw bytes and parses them as CSV.
func decodeCSV(b []byte) (*quote.RawTable, string, error) {
	text, enc, err := decodeText(b)
	if err != nil {
		return nil, "", err
	}
	table, err := parseCSV(strings.NewReader(text))
	if err != nil {
		return nil, enc, err
	}
	return table, enc, nil
}
