package fieldmap

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Checker-Finance/refdata/internal/cfi"
	"github.com/Checker-Finance/refdata/pkg/model"
)

// cfiSourceKey is the flattened key carrying the CFI code in every table.
const cfiSourceKey = "FinInstrmGnlAttrbts_ClssfctnTp"

// Mapper renames flattened records into business field names using one
// rename table per category.
type Mapper struct {
	tables map[Category]Table
}

// NewMapper returns a Mapper loaded with DefaultTables.
func NewMapper() *Mapper {
	return &Mapper{tables: DefaultTables()}
}

// Register adds or replaces the table for cat.
func (m *Mapper) Register(cat Category, t Table) {
	m.tables[cat] = t
}

// Map applies the table for cat to raw. Keys absent from the table are
// dropped; bool fields are always present and default to false.
func (m *Mapper) Map(raw model.RawRecord, cat Category) (model.MappedRecord, error) {
	table, ok := m.tables[cat]
	if !ok {
		return nil, fmt.Errorf("fieldmap: no table registered for category %q", cat)
	}

	out := make(model.MappedRecord, len(table))
	for src, f := range table {
		v, present := raw[src]
		switch f.Kind {
		case KindBool:
			out[f.Name] = parseBool(v)
		case KindDecimal:
			if !present {
				continue
			}
			if d, err := decimal.NewFromString(strings.TrimSpace(v)); err == nil {
				out[f.Name] = d
			} else {
				out[f.Name] = strings.TrimSpace(v)
			}
		default:
			if present {
				out[f.Name] = strings.TrimSpace(v)
			}
		}
	}
	return out, nil
}

// CFICode returns the classification code carried by raw, or "".
func CFICode(raw model.RawRecord) string {
	return strings.ToUpper(strings.TrimSpace(raw[cfiSourceKey]))
}

// ISIN returns the instrument identifier carried by raw, or "".
func ISIN(raw model.RawRecord) string {
	return strings.TrimSpace(raw["Id"])
}

// CategoryFor selects the table that matches a classification.
func CategoryFor(c cfi.Classification) Category {
	switch {
	case c.IsDebt():
		return CategoryDebt
	case c.IsDerivative(), c.BusinessType == model.TypeRights, c.BusinessType == model.TypeWarrant:
		return CategoryDerivative
	default:
		return CategoryEquity
	}
}

func parseBool(v string) bool {
	return strings.EqualFold(strings.TrimSpace(v), "true")
}
