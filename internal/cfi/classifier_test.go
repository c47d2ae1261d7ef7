package cfi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Checker-Finance/refdata/pkg/errs"
	"github.com/Checker-Finance/refdata/pkg/model"
)

func TestClassify_CommonShare(t *testing.T) {
	c, err := Classify("ESVUFR")
	require.NoError(t, err)

	assert.Equal(t, "E", c.Category)
	assert.Equal(t, "Equities", c.CategoryName)
	assert.Equal(t, "S", c.Group)
	assert.Equal(t, "Common/ordinary shares", c.GroupName)
	assert.Equal(t, "VUFR", c.Attributes)
	assert.Equal(t, model.TypeEquity, c.BusinessType)
	assert.Equal(t, AttributeValue{Name: "Voting right", Value: "Voting"}, c.Decoded[0])
	assert.Equal(t, "Free (unrestricted)", c.Decoded[1].Value)
	assert.Equal(t, "Fully paid", c.Decoded[2].Value)
	assert.Equal(t, "Registered", c.Decoded[3].Value)
	assert.True(t, c.IsEquity())
	assert.False(t, c.IsDerivative())
}

func TestClassify_AttributesDependOnCategoryAndGroup(t *testing.T) {
	share, err := Classify("ESVUFR")
	require.NoError(t, err)
	future, err := Classify("FFSCSX")
	require.NoError(t, err)
	bond, err := Classify("DBFTFB")
	require.NoError(t, err)

	assert.Equal(t, "Voting right", share.Decoded[0].Name)
	assert.Equal(t, "Underlying assets", future.Decoded[0].Name)
	assert.Equal(t, "Stock-equities", future.Decoded[0].Value)
	assert.Equal(t, "Cash", future.Decoded[1].Value)
	assert.Equal(t, "Fixed rate", bond.Decoded[0].Value)
	assert.Equal(t, "Government/state guarantee", bond.Decoded[1].Value)
	assert.Equal(t, "Fixed maturity", bond.Decoded[2].Value)
	assert.Equal(t, "Bearer", bond.Decoded[3].Value)

	// the same letter F means different things per group
	assert.Equal(t, "Fully paid", share.Decoded[2].Value)
	assert.Equal(t, "Fixed maturity", bond.Decoded[2].Value)
}

func TestClassify_NotApplicableAndUnknownLetters(t *testing.T) {
	c, err := Classify("FFSCSX")
	require.NoError(t, err)
	assert.Equal(t, notApplicable, c.Decoded[3].Value)

	c, err = Classify("ESZUFR")
	require.NoError(t, err, "an unknown attribute letter is not a validation failure")
	assert.Equal(t, "Unknown (Z)", c.Decoded[0].Value)
}

func TestClassify_BusinessTypes(t *testing.T) {
	tests := []struct {
		code string
		want model.InstrumentType
	}{
		{"ESVUFR", model.TypeEquity},
		{"EPVRFR", model.TypeEquity},
		{"DBFTFB", model.TypeDebt},
		{"DTVUFR", model.TypeDebt},
		{"CIOGSU", model.TypeCollectiveInvestment},
		{"CEOIMU", model.TypeCollectiveInvestment},
		{"FFSCSX", model.TypeFuture},
		{"JEIXCC", model.TypeFuture},
		{"OCASPS", model.TypeOption},
		{"HEBAVC", model.TypeOption},
		{"RWSTCA", model.TypeWarrant},
		{"RSSXXR", model.TypeRights},
		{"SRCCSP", model.TypeSwap},
		{"KRXXXX", model.TypeOther},
		{"LRGTXD", model.TypeOther},
		{"TCNXXX", model.TypeOther},
		{"MMRXXX", model.TypeOther},
		{"IFXXXP", model.TypeOther},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			c, err := Classify(tt.code)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.BusinessType)
		})
	}
}

func TestClassify_EveryEquityAndDebtGroup(t *testing.T) {
	for letter, cat := range categories {
		for g := range cat.groups {
			code := string([]byte{letter, g}) + "XXXX"
			c, err := Classify(code)
			require.NoError(t, err, code)

			switch letter {
			case 'E':
				assert.Equal(t, model.TypeEquity, c.BusinessType, code)
			case 'D':
				assert.Equal(t, model.TypeDebt, c.BusinessType, code)
			}
		}
	}
}

func TestClassify_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		code  string
		field string
	}{
		{"empty", "", "length"},
		{"short", "ESVUF", "length"},
		{"long", "ESVUFRX", "length"},
		{"lowercase", "esvufr", "characters"},
		{"punctuation", "ES-UFR", "characters"},
		{"multibyte", "ESVUFé", "length"},
		{"unknown category", "XX0000", "category"},
		{"unknown group", "EZVUFR", "group"},
		{"group from another category", "EBFTFB", "group"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				_, err := Classify(tt.code)
				require.Error(t, err)

				var ve *errs.ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Equal(t, tt.field, ve.Field)
				assert.Equal(t, "validation", errs.Kind(err))
			})
		})
	}
}

func TestClassify_PureFunctionOfCode(t *testing.T) {
	a, err := Classify("DBFTFB")
	require.NoError(t, err)
	b, err := Classify("DBFTFB")
	require.NoError(t, err)
	assert.True(t, a == b)
	assert.Equal(t, a.FilePatterns(), b.FilePatterns())
}

func TestFilePatterns(t *testing.T) {
	eq, err := Classify("ESVUFR")
	require.NoError(t, err)
	assert.Equal(t, []string{"DLTECR", "DLTINS_E", "FULECR", "FULINS_E"}, eq.FilePatterns())

	bond, err := Classify("DBFTFB")
	require.NoError(t, err)
	assert.Equal(t, []string{"DLTINS_D", "DLTNCR_D", "FULINS_D", "FULNCR_D"}, bond.FilePatterns())

	p := bond.FilePatterns()
	p[0] = "mutated"
	assert.Equal(t, "DLTINS_D", bond.FilePatterns()[0], "callers get a copy")

	assert.Nil(t, Classification{}.FilePatterns())
}

func TestMatchesFile(t *testing.T) {
	bond, err := Classify("DBFTFB")
	require.NoError(t, err)

	assert.True(t, bond.MatchesFile("FULINS_D_20240105_1of1.xml"))
	assert.True(t, bond.MatchesFile("/data/FULNCR_20240106_D_1of1.xml"))
	assert.False(t, bond.MatchesFile("FULINS_E_20240105_1of1.xml"))
	assert.False(t, bond.MatchesFile("FULECR_20240106_E_1of1.xml"))
	assert.False(t, bond.MatchesFile("README"))

	eq, err := Classify("ESVUFR")
	require.NoError(t, err)
	assert.True(t, eq.MatchesFile("FULECR_20240106_E_1of1.xml"))
}

func TestIsConsistent(t *testing.T) {
	assert.True(t, IsConsistent("ESVUFR", model.TypeEquity))
	assert.False(t, IsConsistent("ESVUFR", model.TypeDebt))
	assert.True(t, IsConsistent("DBFTFB", model.TypeStructured))
	assert.True(t, IsConsistent("RWSTCA", model.TypeWarrant))
	assert.False(t, IsConsistent("RWSTCA", model.TypeRights))
	assert.False(t, IsConsistent("bad", model.TypeEquity))
}

func TestDescribe(t *testing.T) {
	c, err := Classify("FFSCSX")
	require.NoError(t, err)
	d := c.Describe()
	assert.Contains(t, d, "FFSCSX: Futures / Financial futures")
	assert.Contains(t, d, "Delivery=Cash")
	assert.NotContains(t, d, notApplicable)
}
