package options

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dochub/internal/domain"
)

func validOptions() domain.ProcessingOptions {
	return domain.ProcessingOptions{
		MaxFileSizeMB: 50,
		RevisionMode:  domain.RevisionPreserve,
	}
}

func fieldsOf(result ValidationResult) []string {
	fields := make([]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		fields = append(fields, e.Field)
	}
	return fields
}

func TestValidate_ValidOptions(t *testing.T) {
	result := Validate(validOptions())
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
}

func TestValidate_MaxFileSize(t *testing.T) {
	opts := validOptions()
	opts.MaxFileSizeMB = 0
	result := Validate(opts)
	assert.False(t, result.Valid)
	assert.Contains(t, fieldsOf(result), "max_file_size_mb")
}

func TestValidate_StyleBounds(t *testing.T) {
	opts := validOptions()
	opts.Styles = map[domain.StyleRole]domain.StyleDef{
		domain.RoleHeading1: {FontSizePt: 0, Color: "GGGGGG", SpacingBefore: -1},
		domain.RoleNormal:   {FontSizePt: 2000},
	}
	result := Validate(opts)
	require.False(t, result.Valid)
	fields := fieldsOf(result)
	assert.Contains(t, fields, "styles.heading1.font_size_pt")
	assert.Contains(t, fields, "styles.heading1.color")
	assert.Contains(t, fields, "styles.heading1.spacing_before_pt")
	assert.Contains(t, fields, "styles.normal.font_size_pt")
}

func TestValidate_FontSizeAtHalfPointCap(t *testing.T) {
	opts := validOptions()
	opts.Styles = map[domain.StyleRole]domain.StyleDef{
		domain.RoleNormal: {FontSizePt: 1638},
	}
	assert.True(t, Validate(opts).Valid)
}

func TestValidate_ListIndentationOrdering(t *testing.T) {
	opts := validOptions()
	opts.ListIndentation = []domain.IndentLevel{
		{SymbolIndentPt: 18, TextIndentPt: 36},
		{SymbolIndentPt: 36, TextIndentPt: 36},
		{SymbolIndentPt: -1, TextIndentPt: 10},
	}
	result := Validate(opts)
	require.False(t, result.Valid)
	fields := fieldsOf(result)
	assert.Contains(t, fields, "list_indentation[1].text_indent_pt")
	assert.Contains(t, fields, "list_indentation[2].symbol_indent_pt")
	assert.NotContains(t, fields, "list_indentation[0].text_indent_pt")
}

func TestValidate_TableShadingColors(t *testing.T) {
	opts := validOptions()
	opts.TableShading = domain.TableShading{HeaderFill: "1F4E79", AltRowFill: "nope"}
	result := Validate(opts)
	require.False(t, result.Valid)
	assert.Contains(t, fieldsOf(result), "table_shading.alt_row_fill")
	assert.NotContains(t, fieldsOf(result), "table_shading.header_fill")
}

func TestValidate_ReplacementRules(t *testing.T) {
	opts := validOptions()
	opts.Replacements = []domain.ReplacementRule{
		{Target: domain.TargetURL, Match: domain.MatchExact, Find: "a", Replace: "b"},
		{Target: "headline", Match: domain.MatchContains, Find: "x"},
		{Target: domain.TargetText, Match: domain.MatchRegex, Find: "([unclosed"},
		{Target: domain.TargetURL, Match: "fuzzy", Find: ""},
	}
	result := Validate(opts)
	require.False(t, result.Valid)
	fields := fieldsOf(result)
	assert.Contains(t, fields, "replacements[1].target")
	assert.Contains(t, fields, "replacements[2].find")
	assert.Contains(t, fields, "replacements[3].match")
	assert.Contains(t, fields, "replacements[3].find")
	assert.NotContains(t, fields, "replacements[0].find")
}

func TestValidate_RevisionMode(t *testing.T) {
	opts := validOptions()
	opts.RevisionMode = "merge"
	result := Validate(opts)
	assert.Contains(t, fieldsOf(result), "revision_mode")

	opts.RevisionMode = domain.RevisionPreserveAndWrap
	opts.WrapAuthor = ""
	result = Validate(opts)
	assert.Contains(t, fieldsOf(result), "wrap_author")

	opts.WrapAuthor = "Docs Team"
	assert.True(t, Validate(opts).Valid)
}

func TestValidate_ContentIDSuffixRequired(t *testing.T) {
	opts := validOptions()
	opts.Operations.FixContentIDs = true
	opts.ContentIDSuffix = ""
	result := Validate(opts)
	assert.Contains(t, fieldsOf(result), "content_id_suffix")

	opts.ContentIDSuffix = "#content"
	assert.True(t, Validate(opts).Valid)
}
