package flatten

import (
	"context"
	"encoding/xml"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Checker-Finance/refdata/internal/metrics"
	"github.com/Checker-Finance/refdata/pkg/errs"
	"github.com/Checker-Finance/refdata/pkg/model"
)

// Family identifies the document family a source file belongs to.
type Family string

const (
	FamilyReference    Family = "reference"    // FIRDS FULINS / DLTINS
	FamilyTransparency Family = "transparency" // FITRS FULECR / FULNCR / DLTECR / DLTNCR
)

var (
	referenceRecordTags = []string{"RefData"}
	// tried in this order; the first tag with at least one record wins
	transparencyRecordTags = []string{"EqtyTrnsprncyData", "NonEqtyTrnsprncyData", "TrnsprncyData"}
)

// DetectFamily derives the family from a file name such as
// FULINS_E_20240105_1of1.xml. Unknown names default to reference data.
func DetectFamily(name string) Family {
	base := strings.ToUpper(filepath.Base(name))
	for _, p := range []string{"FULECR", "FULNCR", "DLTECR", "DLTNCR"} {
		if strings.HasPrefix(base, p) {
			return FamilyTransparency
		}
	}
	return FamilyReference
}

// Mode returns the flattening mode used for the family.
func (f Family) Mode() Mode {
	if f == FamilyTransparency {
		return ModeSimple
	}
	return ModePath
}

// RecordTags returns the repeating record element names in fallback order.
func (f Family) RecordTags() []string {
	if f == FamilyTransparency {
		return transparencyRecordTags
	}
	return referenceRecordTags
}

// Parser streams a source document and flattens every record element.
type Parser struct {
	logger *zap.Logger
}

// NewParser constructs a Parser.
func NewParser(logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{logger: logger}
}

// Parse flattens all records of r. Malformed XML yields *errs.ParseError and a
// document without record elements yields errs.ErrNoData.
func (p *Parser) Parse(ctx context.Context, r io.Reader, source string, family Family) (*model.FlattenedDocument, error) {
	tags := family.RecordTags()
	batches := make(map[string]*Batch, len(tags))
	for _, t := range tags {
		batches[t] = NewBatch(family.Mode())
	}

	dec := xml.NewDecoder(r)
	var (
		stack   []*Node
		text    []*strings.Builder
		current string
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &errs.ParseError{Source: source, Err: err}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if len(stack) == 0 {
				name := localName(t.Name)
				if _, ok := batches[name]; !ok {
					continue
				}
				current = name
			}
			n := newNode(t)
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			}
			stack = append(stack, n)
			text = append(text, &strings.Builder{})

		case xml.CharData:
			if len(text) > 0 {
				text[len(text)-1].Write(t)
			}

		case xml.EndElement:
			if len(stack) == 0 {
				continue
			}
			n := stack[len(stack)-1]
			n.Text = strings.TrimSpace(text[len(text)-1].String())
			stack = stack[:len(stack)-1]
			text = text[:len(text)-1]
			if len(stack) > 0 {
				continue
			}
			batches[current].Add(n)
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
	}

	for _, t := range tags {
		b := batches[t]
		if b.Len() == 0 {
			continue
		}
		doc := b.Document(source)
		metrics.AddRecordsFlattened(string(family), doc.Len())
		p.logger.Info("flatten.document_parsed",
			zap.String("source", source),
			zap.String("family", string(family)),
			zap.String("record_tag", t),
			zap.Int("records", doc.Len()),
			zap.Int("columns", len(doc.Columns)))
		return doc, nil
	}

	p.logger.Warn("flatten.no_data",
		zap.String("source", source),
		zap.Strings("record_tags", tags))
	return nil, errs.ErrNoData
}
