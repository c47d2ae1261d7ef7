package cache

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/Checker-Finance/refdata/pkg/model"
)

// WriteCSV writes doc with a header row of doc.Columns. Absent values are
// written as empty cells.
func WriteCSV(w io.Writer, doc *model.FlattenedDocument) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(doc.Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	row := make([]string, len(doc.Columns))
	for _, rec := range doc.Records {
		for i, col := range doc.Columns {
			row[i] = rec[col]
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV is the inverse of WriteCSV. Empty cells are treated as null and do
// not appear in the records.
func ReadCSV(r io.Reader, source string) (*model.FlattenedDocument, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read csv %s: empty file", source)
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header %s: %w", source, err)
	}
	doc := &model.FlattenedDocument{Source: source, Columns: append([]string(nil), header...)}

	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv %s: %w", source, err)
		}
		rec := make(model.RawRecord, len(fields))
		for i, v := range fields {
			if v != "" {
				rec[doc.Columns[i]] = v
			}
		}
		doc.Records = append(doc.Records, rec)
	}
	return doc, nil
}

// EncodeDocument renders doc as CSV bytes for storage in a Cache.
func EncodeDocument(doc *model.FlattenedDocument) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeDocument parses bytes written by EncodeDocument.
func DecodeDocument(data []byte, source string) (*model.FlattenedDocument, error) {
	return ReadCSV(bytes.NewReader(data), source)
}
