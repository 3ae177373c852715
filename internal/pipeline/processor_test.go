package pipeline_test

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"dochub/internal/backup"
	"dochub/internal/docx"
	"dochub/internal/domain"
	"dochub/internal/pipeline"
	"dochub/mocks"
)

const docNS = ` xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"`

const stylesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/></w:style>
<w:style w:type="paragraph" w:styleId="Heading2"><w:name w:val="heading 2"/></w:style>
<w:style w:type="paragraph" w:styleId="Heading3"><w:name w:val="heading 3"/></w:style>
<w:style w:type="paragraph" w:styleId="Normal"><w:name w:val="Normal"/></w:style>
<w:style w:type="paragraph" w:styleId="ListParagraph"><w:name w:val="List Paragraph"/></w:style>
<w:style w:type="character" w:styleId="Hyperlink"><w:name w:val="Hyperlink"/></w:style>
</w:styles>`

const settingsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:settings xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"/>`

// writeFixture builds a document on disk with one external hyperlink pointing
// at target and the given body XML.
func writeFixture(t *testing.T, target, bodyXML string) string {
	t.Helper()
	rels := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink" Target="` + target + `" TargetMode="External"/>
</Relationships>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	parts := map[string]string{
		"word/document.xml":            `<?xml version="1.0" encoding="UTF-8" standalone="yes"?><w:document` + docNS + `><w:body>` + bodyXML + `</w:body></w:document>`,
		"word/_rels/document.xml.rels": rels,
		"word/styles.xml":              stylesXML,
		"word/settings.xml":            settingsXML,
	}
	for name, data := range parts {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(data))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	path := filepath.Join(t.TempDir(), "doc.docx")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func linkedBody(display string) string {
	return `<w:p><w:hyperlink r:id="rId1"><w:r><w:rPr><w:rStyle w:val="Hyperlink"/></w:rPr><w:t>` + display + `</w:t></w:r></w:hyperlink></w:p>`
}

func baseOptions() domain.ProcessingOptions {
	return domain.ProcessingOptions{
		MaxFileSizeMB: 50,
		CreateBackup:  true,
		RevisionMode:  domain.RevisionAcceptAll,
		APITimeout:    5 * time.Second,
	}
}

func newProcessor(resolver *mocks.MockContentResolver) *pipeline.Processor {
	return pipeline.NewProcessor(docx.NewLoader(), resolver, backup.NewManager())
}

func reopen(t *testing.T, path string) *docx.Doc {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	doc, err := docx.Open(data, path)
	require.NoError(t, err)
	return doc
}

func TestProcessDocument_InvalidOptions(t *testing.T) {
	path := writeFixture(t, "https://example.com", linkedBody("Link"))
	opts := baseOptions()
	opts.MaxFileSizeMB = -1

	result := newProcessor(new(mocks.MockContentResolver)).ProcessDocument(context.Background(), path, opts)

	assert.False(t, result.Success)
	require.NotEmpty(t, result.ErrorMessages)
	assert.Contains(t, result.ErrorMessages[0], "max_file_size_mb")
	assert.Empty(t, result.BackupPath, "nothing happens before validation passes")
}

func TestProcessDocument_FileTooLarge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.docx")
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte("x"), 600*1024), 0o644))

	opts := baseOptions()
	opts.MaxFileSizeMB = 0.5
	result := newProcessor(new(mocks.MockContentResolver)).ProcessDocument(context.Background(), path, opts)

	assert.False(t, result.Success)
	require.NotEmpty(t, result.ErrorMessages)
	assert.Contains(t, result.ErrorMessages[0], "File too large")
	assert.Contains(t, result.ErrorMessages[0], "0.59 MB exceeds limit of 0.50 MB")
	assert.Empty(t, result.BackupPath, "the size gate runs before backup")

	// The oversized file is left exactly as it was.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, data, 600*1024)
}

func TestProcessDocument_AppendsContentIDFragment(t *testing.T) {
	path := writeFixture(t, "https://host/doc?id=abc123", linkedBody("Guide"))

	opts := baseOptions()
	opts.Operations.FixContentIDs = true
	opts.ContentIDSuffix = "#content"

	result := newProcessor(new(mocks.MockContentResolver)).ProcessDocument(context.Background(), path, opts)

	require.True(t, result.Success, "errors: %v", result.ErrorMessages)
	assert.Equal(t, 1, result.Counts.TotalHyperlinks)
	assert.Equal(t, 1, result.Counts.AppendedContentIDs)
	assert.Equal(t, 0, result.Counts.SkippedHyperlinks)
	assert.NotEmpty(t, result.BackupPath)

	doc := reopen(t, path)
	defer doc.Close()
	assert.Equal(t, "https://host/doc?id=abc123#content", doc.Hyperlinks()[0].Target())
}

func TestProcessDocument_ContentIDNormalizationIsIdempotent(t *testing.T) {
	path := writeFixture(t, "https://host/doc?id=abc123", linkedBody("Guide"))

	opts := baseOptions()
	opts.Operations.FixContentIDs = true
	opts.ContentIDSuffix = "#content"

	proc := newProcessor(new(mocks.MockContentResolver))
	first := proc.ProcessDocument(context.Background(), path, opts)
	require.True(t, first.Success)

	second := proc.ProcessDocument(context.Background(), path, opts)
	require.True(t, second.Success)
	assert.Equal(t, 0, second.Counts.AppendedContentIDs)
	assert.Equal(t, 1, second.Counts.SkippedHyperlinks)

	doc := reopen(t, path)
	defer doc.Close()
	assert.Equal(t, 1, strings.Count(doc.Hyperlinks()[0].Target(), "#content"))
}

func TestProcessDocument_EnrichmentUpdatesTitle(t *testing.T) {
	path := writeFixture(t, "https://host/view?docid=TSRC-ABC-123456", linkedBody("Old Title"))

	resolver := new(mocks.MockContentResolver)
	resolver.On("Resolve", mock.Anything, mock.MatchedBy(func(req domain.LookupRequest) bool {
		return len(req.IDs) == 1 && req.IDs[0] == "TSRC-ABC-123456" && req.TotalHyperlinks == 1
	})).Return([]domain.LookupResult{
		{ContentID: "TSRC-ABC-123456", Title: "Official Title", Status: "active"},
	}, nil)

	opts := baseOptions()
	opts.Operations.UpdateTitles = true
	opts.APIEndpoint = "https://hooks.example.com/lookup"

	result := newProcessor(resolver).ProcessDocument(context.Background(), path, opts)

	require.True(t, result.Success, "errors: %v", result.ErrorMessages)
	assert.Equal(t, 1, result.Counts.UpdatedDisplayTexts)
	assert.Equal(t, 1, result.Counts.ProcessedHyperlinks)
	resolver.AssertExpectations(t)

	doc := reopen(t, path)
	defer doc.Close()
	assert.Equal(t, "Official Title", doc.Hyperlinks()[0].DisplayText())
}

func TestProcessDocument_EnrichmentCanonicalizesURL(t *testing.T) {
	path := writeFixture(t, "https://host/view/TSRC-old-111111", linkedBody("Doc"))

	resolver := new(mocks.MockContentResolver)
	resolver.On("Resolve", mock.Anything, mock.Anything).Return([]domain.LookupResult{
		{ContentID: "TSRC-new-222222", Title: "Doc", Status: "active"},
	}, nil)

	opts := baseOptions()
	opts.Operations.UpdateURLs = true
	opts.APIEndpoint = "https://hooks.example.com/lookup"

	result := newProcessor(resolver).ProcessDocument(context.Background(), path, opts)
	require.True(t, result.Success, "errors: %v", result.ErrorMessages)
	assert.Equal(t, 1, result.Counts.UpdatedURLs)

	doc := reopen(t, path)
	defer doc.Close()
	assert.Equal(t, "https://host/view/TSRC-new-222222", doc.Hyperlinks()[0].Target())
}

func TestProcessDocument_ZeroResultsMarksNotFoundButSucceeds(t *testing.T) {
	path := writeFixture(t, "https://host/view?docid=TSRC-ABC-123456", linkedBody("Broken Link"))

	resolver := new(mocks.MockContentResolver)
	resolver.On("Resolve", mock.Anything, mock.Anything).Return([]domain.LookupResult{}, nil)

	opts := baseOptions()
	opts.Operations.UpdateTitles = true
	opts.APIEndpoint = "https://hooks.example.com/lookup"

	result := newProcessor(resolver).ProcessDocument(context.Background(), path, opts)
	require.True(t, result.Success, "a missing registry record is not a document failure")

	doc := reopen(t, path)
	defer doc.Close()
	assert.Equal(t, "Broken Link - Not Found", doc.Hyperlinks()[0].DisplayText())
}

func TestProcessDocument_ResolverFailureRestoresBackup(t *testing.T) {
	path := writeFixture(t, "https://host/view?docid=TSRC-ABC-123456", linkedBody("Link"))
	original, err := os.ReadFile(path)
	require.NoError(t, err)

	resolver := new(mocks.MockContentResolver)
	resolver.On("Resolve", mock.Anything, mock.Anything).Return(nil, domain.ErrAPIFailure)

	opts := baseOptions()
	opts.Operations.UpdateTitles = true
	opts.APIEndpoint = "https://hooks.example.com/lookup"

	result := newProcessor(resolver).ProcessDocument(context.Background(), path, opts)

	assert.False(t, result.Success)
	require.NotEmpty(t, result.ErrorMessages)
	assert.Contains(t, result.ErrorMessages[0], "content lookup failed")
	assert.NotEmpty(t, result.BackupPath)

	restored, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, restored)
}

func TestProcessDocument_MissingEndpointAbortsRequiredEnrichment(t *testing.T) {
	path := writeFixture(t, "https://host/view?docid=TSRC-ABC-123456", linkedBody("Link"))

	opts := baseOptions()
	opts.Operations.UpdateTitles = true
	opts.APIEndpoint = ""

	result := newProcessor(new(mocks.MockContentResolver)).ProcessDocument(context.Background(), path, opts)

	assert.False(t, result.Success)
	require.NotEmpty(t, result.ErrorMessages)
	assert.Contains(t, result.ErrorMessages[0], "endpoint")
}

func TestProcessDocument_Replacements(t *testing.T) {
	path := writeFixture(t, "http://legacy.example.com/page", linkedBody("Read the legacy docs"))

	opts := baseOptions()
	opts.Operations.ApplyReplacements = true
	opts.Replacements = []domain.ReplacementRule{
		{Target: domain.TargetURL, Match: domain.MatchContains, Find: "legacy.example.com", Replace: "docs.example.com"},
		{Target: domain.TargetText, Match: domain.MatchRegex, Find: `(?i)legacy`, Replace: "current"},
	}

	result := newProcessor(new(mocks.MockContentResolver)).ProcessDocument(context.Background(), path, opts)
	require.True(t, result.Success, "errors: %v", result.ErrorMessages)
	assert.Equal(t, 1, result.Counts.UpdatedURLs)
	assert.Equal(t, 1, result.Counts.UpdatedDisplayTexts)

	doc := reopen(t, path)
	defer doc.Close()
	assert.Equal(t, "http://docs.example.com/page", doc.Hyperlinks()[0].Target())
	assert.Equal(t, "Read the current docs", doc.Hyperlinks()[0].DisplayText())
}

func TestProcessDocument_CollapseBlankLines(t *testing.T) {
	body := `<w:p><w:r><w:t>first</w:t></w:r></w:p><w:p/><w:p/><w:p/><w:p><w:r><w:t>second</w:t></w:r></w:p>`
	path := writeFixture(t, "https://example.com", body)

	opts := baseOptions()
	opts.Operations.CollapseBlankLines = true

	result := newProcessor(new(mocks.MockContentResolver)).ProcessDocument(context.Background(), path, opts)
	require.True(t, result.Success, "errors: %v", result.ErrorMessages)

	doc := reopen(t, path)
	defer doc.Close()
	assert.Len(t, doc.Paragraphs(), 3, "one blank paragraph survives between the two text paragraphs")
}

func TestProcessDocument_NormalizeHeadersClosesGaps(t *testing.T) {
	body := `<w:p><w:pPr><w:pStyle w:val="Heading2"/></w:pPr><w:r><w:t>Intro</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>body</w:t></w:r></w:p>` +
		`<w:p><w:pPr><w:pStyle w:val="Heading3"/></w:pPr><w:r><w:t>Details</w:t></w:r></w:p>`
	path := writeFixture(t, "https://example.com", body)

	opts := baseOptions()
	opts.Operations.NormalizeHeaders = true

	result := newProcessor(new(mocks.MockContentResolver)).ProcessDocument(context.Background(), path, opts)
	require.True(t, result.Success, "errors: %v", result.ErrorMessages)

	doc := reopen(t, path)
	defer doc.Close()
	paras := doc.Paragraphs()
	assert.Equal(t, "Heading1", paras[0].StyleID(), "first heading forced to level 1")
	assert.Equal(t, "Heading2", paras[2].StyleID(), "jump capped at one past the previous level")
}

func TestProcessDocument_AcceptAfterCollapsesAllRevisions(t *testing.T) {
	body := `<w:p><w:r><w:t>kept </w:t></w:r>` +
		`<w:ins w:id="1" w:author="Reviewer" w:date="2024-01-01T00:00:00Z"><w:r><w:t>insertion</w:t></w:r></w:ins></w:p>`
	path := writeFixture(t, "https://example.com", body)

	opts := baseOptions()
	opts.RevisionMode = domain.RevisionPreserve
	opts.AcceptAfter = true

	result := newProcessor(new(mocks.MockContentResolver)).ProcessDocument(context.Background(), path, opts)
	require.True(t, result.Success, "errors: %v", result.ErrorMessages)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	doc, err := docx.Open(data, path)
	require.NoError(t, err)
	defer doc.Close()
	assert.Equal(t, "kept insertion", doc.Paragraphs()[0].Text())
	assert.NotContains(t, string(doc.Bytes()), "<w:ins")
}

func TestProcessDocument_RebuildTOCMarksFieldsStale(t *testing.T) {
	path := writeFixture(t, "https://example.com", `<w:p><w:r><w:t>body</w:t></w:r></w:p>`)

	opts := baseOptions()
	opts.Operations.RebuildTOC = true

	result := newProcessor(new(mocks.MockContentResolver)).ProcessDocument(context.Background(), path, opts)
	require.True(t, result.Success, "errors: %v", result.ErrorMessages)

	assert.Contains(t, zipPart(t, path, "word/settings.xml"), `<w:updateFields w:val="true"/>`)
}

// zipPart reads one named part out of a saved container on disk.
func zipPart(t *testing.T, path, name string) string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()
		content, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(content)
	}
	t.Fatalf("part %s not found in %s", name, path)
	return ""
}

func TestProcessDocument_AppliesStylesByRole(t *testing.T) {
	body := `<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>Title</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Body text</w:t></w:r></w:p>`
	path := writeFixture(t, "https://example.com", body)

	opts := baseOptions()
	opts.Operations.ApplyStyles = true
	opts.Styles = map[domain.StyleRole]domain.StyleDef{
		domain.RoleHeading1: {FontFamily: "Calibri", FontSizePt: 16, Color: "1F4E79", Bold: domain.TriOn, Alignment: domain.AlignPreserve},
		domain.RoleNormal:   {FontFamily: "Calibri", FontSizePt: 11, Alignment: domain.AlignPreserve},
	}

	result := newProcessor(new(mocks.MockContentResolver)).ProcessDocument(context.Background(), path, opts)
	require.True(t, result.Success, "errors: %v", result.ErrorMessages)

	doc := reopen(t, path)
	defer doc.Close()
	out := string(doc.Bytes())
	assert.Contains(t, out, `w:ascii="Calibri"`)
	assert.Contains(t, out, `<w:sz w:val="32"/>`, "heading runs get 16pt")
	assert.Contains(t, out, `<w:sz w:val="22"/>`, "body runs get 11pt")
	assert.Contains(t, out, `<w:color w:val="1F4E79"/>`)
	assert.Contains(t, out, "<w:b/>")

	// Formatting records consolidate per affected span.
	foundGrouped := false
	for _, uc := range result.ChangeLog {
		if uc.Category == domain.ChangeFormatting && len(uc.GroupedProperties) > 0 {
			foundGrouped = true
		}
	}
	assert.True(t, foundGrouped)
}

func TestProcessDocument_StripsStrayHyperlinkStyle(t *testing.T) {
	body := `<w:p><w:r><w:rPr><w:rStyle w:val="Hyperlink"/></w:rPr><w:t>looks like a link</w:t></w:r></w:p>` +
		linkedBody("a real link")
	path := writeFixture(t, "https://example.com", body)

	opts := baseOptions()
	opts.Operations.StripHyperlinkStyle = true

	result := newProcessor(new(mocks.MockContentResolver)).ProcessDocument(context.Background(), path, opts)
	require.True(t, result.Success, "errors: %v", result.ErrorMessages)

	doc := reopen(t, path)
	defer doc.Close()
	for _, para := range doc.Paragraphs() {
		for _, r := range para.Runs() {
			if r.Hyperlinked() {
				assert.Equal(t, "Hyperlink", r.CharStyleID(), "real links keep the style")
			} else {
				assert.Equal(t, "", r.CharStyleID(), "stray style is stripped")
			}
		}
	}
}

func TestProcessDocument_UniformTables(t *testing.T) {
	body := `<w:tbl><w:tr><w:tc><w:p><w:r><w:t>Note</w:t></w:r></w:p></w:tc></w:tr></w:tbl>` +
		`<w:tbl>` +
		`<w:tr><w:tc><w:p><w:r><w:t>H1</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>H2</w:t></w:r></w:p></w:tc></w:tr>` +
		`<w:tr><w:tc><w:p><w:r><w:t>a</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>b</w:t></w:r></w:p></w:tc></w:tr>` +
		`</w:tbl>`
	path := writeFixture(t, "https://example.com", body)

	opts := baseOptions()
	opts.Operations.UniformTables = true
	opts.TableShading = domain.TableShading{
		HeaderFill:     "1F4E79",
		SingleCellFill: "F2F2F2",
	}

	result := newProcessor(new(mocks.MockContentResolver)).ProcessDocument(context.Background(), path, opts)
	require.True(t, result.Success, "errors: %v", result.ErrorMessages)

	doc := reopen(t, path)
	defer doc.Close()
	out := string(doc.Bytes())
	assert.Contains(t, out, `w:fill="F2F2F2"`, "single-cell callout shaded")
	assert.Contains(t, out, `w:fill="1F4E79"`, "header row shaded")
	assert.Contains(t, out, "<w:tblBorders>")
}

func TestProcessDocument_SmartDetectSkipsLayoutTables(t *testing.T) {
	// One column only: a layout container, not data.
	body := `<w:tbl>` +
		`<w:tr><w:tc><w:p><w:r><w:t>row1</w:t></w:r></w:p></w:tc></w:tr>` +
		`<w:tr><w:tc><w:p><w:r><w:t>row2</w:t></w:r></w:p></w:tc></w:tr>` +
		`</w:tbl>`
	path := writeFixture(t, "https://example.com", body)

	opts := baseOptions()
	opts.Operations.UniformTables = true
	opts.Operations.SmartTableDetect = true
	opts.TableShading = domain.TableShading{HeaderFill: "1F4E79"}

	result := newProcessor(new(mocks.MockContentResolver)).ProcessDocument(context.Background(), path, opts)
	require.True(t, result.Success, "errors: %v", result.ErrorMessages)

	doc := reopen(t, path)
	defer doc.Close()
	out := string(doc.Bytes())
	assert.NotContains(t, out, `w:fill="1F4E79"`)
	assert.NotContains(t, out, "<w:tblBorders>")
}

func TestProcessDocument_ChangeLogIsConsolidated(t *testing.T) {
	path := writeFixture(t, "https://host/doc?id=abc123", linkedBody("Guide"))

	opts := baseOptions()
	opts.Operations.FixContentIDs = true
	opts.ContentIDSuffix = "#content"

	result := newProcessor(new(mocks.MockContentResolver)).ProcessDocument(context.Background(), path, opts)
	require.True(t, result.Success)
	require.NotEmpty(t, result.ChangeLog)
	assert.Equal(t, domain.ChangeHyperlink, result.ChangeLog[0].Category)
	assert.Contains(t, result.ChangeLog[0].After, "#content")
	assert.Positive(t, result.ChangeLog[0].Count)
}
