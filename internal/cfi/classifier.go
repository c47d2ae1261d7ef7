// Package cfi decodes ISO 10962 classification (CFI) codes.
package cfi

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/Checker-Finance/refdata/pkg/errs"
	"github.com/Checker-Finance/refdata/pkg/model"
)

const notApplicable = "Not applicable/undefined"

var codePattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

// AttributeValue is one decoded attribute position.
type AttributeValue struct {
	Name  string
	Value string
}

// Classification is the decoded form of a CFI code. It is a pure function of
// Code: classifying the same code twice yields equal values.
type Classification struct {
	Code         string
	Category     string
	CategoryName string
	Group        string
	GroupName    string
	Attributes   string
	Decoded      [4]AttributeValue
	BusinessType model.InstrumentType
}

// Classify validates and decodes code.
func Classify(code string) (Classification, error) {
	if len(code) != 6 {
		return Classification{}, &errs.ValidationError{
			Field:  "length",
			Value:  code,
			Reason: fmt.Sprintf("CFI code must be 6 characters, got %d", len(code)),
		}
	}
	if !codePattern.MatchString(code) {
		return Classification{}, &errs.ValidationError{
			Field:  "characters",
			Value:  code,
			Reason: "CFI code must be uppercase alphanumeric",
		}
	}

	cat, ok := categories[code[0]]
	if !ok {
		return Classification{}, &errs.ValidationError{
			Field:  "category",
			Value:  code[:1],
			Reason: "unknown CFI category",
		}
	}
	grp, ok := cat.groups[code[1]]
	if !ok {
		return Classification{}, &errs.ValidationError{
			Field:  "group",
			Value:  code[1:2],
			Reason: fmt.Sprintf("unknown group for category %s (%s)", code[:1], cat.name),
		}
	}

	c := Classification{
		Code:         code,
		Category:     code[:1],
		CategoryName: cat.name,
		Group:        code[1:2],
		GroupName:    grp.name,
		Attributes:   code[2:],
		BusinessType: businessType(code[0], code[1]),
	}
	for i, a := range grp.attrs {
		c.Decoded[i] = decode(a, code[2+i])
	}
	return c, nil
}

func decode(a Attribute, letter byte) AttributeValue {
	if letter == 'X' {
		return AttributeValue{Name: a.Name, Value: notApplicable}
	}
	if v, ok := a.Values[letter]; ok {
		return AttributeValue{Name: a.Name, Value: v}
	}
	return AttributeValue{Name: a.Name, Value: fmt.Sprintf("Unknown (%c)", letter)}
}

func businessType(category, group byte) model.InstrumentType {
	switch category {
	case 'E':
		return model.TypeEquity
	case 'D':
		return model.TypeDebt
	case 'C':
		return model.TypeCollectiveInvestment
	case 'F', 'J':
		return model.TypeFuture
	case 'O', 'H':
		return model.TypeOption
	case 'R':
		if group == 'W' {
			return model.TypeWarrant
		}
		return model.TypeRights
	case 'S':
		return model.TypeSwap
	default:
		return model.TypeOther
	}
}

// IsEquity reports whether the code is in the equities category.
func (c Classification) IsEquity() bool { return c.Category == "E" }

// IsDebt reports whether the code is in the debt category.
func (c Classification) IsDebt() bool { return c.Category == "D" }

// IsCollectiveInvestment reports whether the code is a fund or other CIV.
func (c Classification) IsCollectiveInvestment() bool { return c.Category == "C" }

// IsDerivative reports whether the code is a future, option, swap, forward
// or strategy.
func (c Classification) IsDerivative() bool {
	switch c.Category {
	case "F", "O", "S", "H", "J", "K":
		return true
	}
	return false
}

// equityLike reports whether transparency data for the code is published in
// the equity files.
func (c Classification) equityLike() bool {
	switch c.Category {
	case "E", "C", "R":
		return true
	}
	return false
}

// FilePatterns returns the sorted file-name prefixes of the reference and
// transparency files that can carry the instrument.
func (c Classification) FilePatterns() []string {
	if c.Category == "" {
		return nil
	}
	out := []string{"FULINS_" + c.Category, "DLTINS_" + c.Category}
	if c.equityLike() {
		out = append(out, "FULECR", "DLTECR")
	} else {
		out = append(out, "FULNCR_"+c.Category, "DLTNCR_"+c.Category)
	}
	sort.Strings(out)
	return out
}

// MatchesFile reports whether fileName belongs to one of the file families
// returned by FilePatterns. Transparency names carry the category after the
// date (FULNCR_20240106_D_1of1), so only the family prefix and the category
// token are compared.
func (c Classification) MatchesFile(fileName string) bool {
	name := strings.ToUpper(fileName)
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	parts := strings.Split(strings.TrimSuffix(name, ".XML"), "_")
	if len(parts) < 2 {
		return false
	}
	for _, p := range c.FilePatterns() {
		family, cat, hasCat := strings.Cut(p, "_")
		if parts[0] != family {
			continue
		}
		if !hasCat {
			return true
		}
		for _, tok := range parts[1:] {
			if tok == cat {
				return true
			}
		}
	}
	return false
}

// Describe renders a one-line human readable summary.
func (c Classification) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s / %s", c.Code, c.CategoryName, c.GroupName)
	for _, a := range c.Decoded {
		if a.Value == notApplicable || a.Name == "" {
			continue
		}
		fmt.Fprintf(&b, "; %s=%s", a.Name, a.Value)
	}
	return b.String()
}

// IsConsistent reports whether declared agrees with the business type derived
// from code. Structured products may carry any valid code.
func IsConsistent(code string, declared model.InstrumentType) bool {
	c, err := Classify(code)
	if err != nil {
		return false
	}
	if declared == model.TypeStructured {
		return true
	}
	return c.BusinessType == declared
}
