package measure

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pipeerr "twmw/internal/errors"
)

const sampleProfile = `{
  "taiex_bias": {
    "name": "加權指數67天乖離率",
    "unit": "%",
    "category": "技術面",
    "func_value": "fetch_taiex_bias",
    "func_score": "calc_score_taiex_bias"
  },
  "taiex_pe": {
    "name": "加權指數本益比",
    "unit": "倍",
    "category": "評價面",
    "func_value": "fetch_taiex_pe",
    "func_score": "calc_score_taiex_pe"
  },
  "note_only": {
    "name": "觀察值",
    "func_value": "fetch_taiex_pe"
  }
}`

func TestParseProfilePreservesDeclarationOrder(t *testing.T) {
	p, err := ParseProfile(strings.NewReader(sampleProfile))
	require.NoError(t, err)

	assert.Equal(t, []string{"taiex_bias", "taiex_pe", "note_only"}, p.IDs())
	assert.Equal(t, 3, p.Len())
}

func TestParseProfileDefinitionFields(t *testing.T) {
	p, err := ParseProfile(strings.NewReader(sampleProfile))
	require.NoError(t, err)

	def, ok := p.Get("taiex_bias")
	require.True(t, ok)
	assert.Equal(t, "加權指數67天乖離率", def.Name)
	assert.Equal(t, "%", def.Unit)
	assert.Equal(t, "技術面", def.Category)
	assert.Equal(t, "fetch_taiex_bias", def.FuncFor(RoleValue))
	assert.Equal(t, "calc_score_taiex_bias", def.FuncFor(RoleScore))
}

func TestParseProfileMeasureWithoutScoreFunc(t *testing.T) {
	p, err := ParseProfile(strings.NewReader(sampleProfile))
	require.NoError(t, err)

	def, ok := p.Get("note_only")
	require.True(t, ok)
	assert.Equal(t, "", def.FuncFor(RoleScore))
	assert.Equal(t, "", def.Category)
}

func TestParseProfileErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "not json",
			input: `not json at all`,
		},
		{
			name:  "array instead of object",
			input: `[{"name": "x"}]`,
		},
		{
			name:  "missing required name",
			input: `{"m1": {"unit": "%", "func_value": "f"}}`,
		},
		{
			name:  "duplicate measure id",
			input: `{"m1": {"name": "a"}, "m1": {"name": "b"}}`,
		},
		{
			name:  "malformed definition",
			input: `{"m1": 42}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseProfile(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.True(t, pipeerr.IsCode(err, pipeerr.CodeConfig), "want CONFIG error, got %v", err)
		})
	}
}

func TestLoadProfileMissingFileIsPathError(t *testing.T) {
	_, err := LoadProfile("testdata/does_not_exist.json")
	require.Error(t, err)
	assert.False(t, pipeerr.IsCode(err, pipeerr.CodeConfig),
		"a missing file must stay distinguishable from a malformed one")
}
