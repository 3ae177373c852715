package domain

import (
	"time"

	"github.com/google/uuid"
)

// SessionConfig is the user-facing configuration shape produced by the UI /
// API client: flat option identifiers, display-form colors, loosely typed
// values. It is mapped and validated into ProcessingOptions before any
// document is touched.
type SessionConfig struct {
	MaxFileSizeMB   float64               `json:"max_file_size_mb"`
	CreateBackup    bool                  `json:"create_backup"`
	EnabledOptions  []string              `json:"enabled_options"`
	Styles          map[string]StyleInput `json:"styles"`
	ListIndentation []IndentLevel         `json:"list_indentation"`
	TableShading    TableShading          `json:"table_shading"`
	Replacements    []ReplacementRule     `json:"replacements"`
	ContentIDSuffix string                `json:"content_id_suffix"`
	APIEndpoint     string                `json:"api_endpoint"`
	APITimeoutSecs  int                   `json:"api_timeout_secs"`
	RevisionMode    string                `json:"revision_mode"`
	WrapAuthor      string                `json:"wrap_author"`
	AcceptAfter     bool                  `json:"accept_revisions_after"`
	Requester       Requester             `json:"requester"`
}

// StyleInput is the display form of one role's style: colors carry a leading
// '#', flags are free strings ("on"/"off"/"preserve").
type StyleInput struct {
	FontFamily    string  `json:"font_family"`
	FontSizePt    float64 `json:"font_size_pt"`
	Color         string  `json:"color"`
	Bold          string  `json:"bold"`
	Italic        string  `json:"italic"`
	Underline     string  `json:"underline"`
	Alignment     string  `json:"alignment"`
	SpacingBefore float64 `json:"spacing_before_pt"`
	SpacingAfter  float64 `json:"spacing_after_pt"`
	LineSpacing   float64 `json:"line_spacing"`
}

// StyleDef is one role's validated style definition. Colors are canonical
// 6-hex-digit form without the leading '#'.
type StyleDef struct {
	FontFamily    string    `json:"font_family"`
	FontSizePt    float64   `json:"font_size_pt"`
	Color         string    `json:"color"`
	Bold          Tristate  `json:"bold"`
	Italic        Tristate  `json:"italic"`
	Underline     Tristate  `json:"underline"`
	Alignment     Alignment `json:"alignment"`
	SpacingBefore float64   `json:"spacing_before_pt"`
	SpacingAfter  float64   `json:"spacing_after_pt"`
	LineSpacing   float64   `json:"line_spacing"`
}

// IndentLevel is one list level's indentation pair, in points. TextIndentPt
// must exceed SymbolIndentPt.
type IndentLevel struct {
	SymbolIndentPt float64 `json:"symbol_indent_pt"`
	TextIndentPt   float64 `json:"text_indent_pt"`
}

// TableShading holds the fill colors applied during table normalization.
type TableShading struct {
	HeaderFill     string `json:"header_fill"`
	AltRowFill     string `json:"alt_row_fill"`
	SingleCellFill string `json:"single_cell_fill"`
}

// ReplacementRule is one custom find/replace rule over hyperlink records.
type ReplacementRule struct {
	Target  ReplaceTarget `json:"target"`
	Match   MatchType     `json:"match"`
	Find    string        `json:"find"`
	Replace string        `json:"replace"`
}

// Requester identifies the operator on whose behalf lookups are made; the
// enrichment service requires it in every request.
type Requester struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// OperationSet is the validated, grouped form of the flat enabled-option
// identifiers.
type OperationSet struct {
	FixContentIDs       bool `json:"fix_content_ids"`
	UpdateTitles        bool `json:"update_titles"`
	UpdateURLs          bool `json:"update_urls"`
	ApplyStyles         bool `json:"apply_styles"`
	StripHyperlinkStyle bool `json:"strip_hyperlink_style"`
	ApplyReplacements   bool `json:"apply_replacements"`
	CollapseBlankLines  bool `json:"collapse_blank_lines"`
	NormalizeLists      bool `json:"normalize_lists"`
	UniformTables       bool `json:"uniform_tables"`
	SmartTableDetect    bool `json:"smart_table_detect"`
	NormalizeHeaders    bool `json:"normalize_headers"`
	CenterImages        bool `json:"center_images"`
	RebuildTOC          bool `json:"rebuild_toc"`
}

// RequiresAPI reports whether any enabled operation depends on the content
// lookup service.
func (o OperationSet) RequiresAPI() bool {
	return o.UpdateTitles || o.UpdateURLs
}

// ProcessingOptions is the validated configuration the pipeline consumes.
type ProcessingOptions struct {
	MaxFileSizeMB   float64                `json:"max_file_size_mb"`
	CreateBackup    bool                   `json:"create_backup"`
	Operations      OperationSet           `json:"operations"`
	Styles          map[StyleRole]StyleDef `json:"styles"`
	ListIndentation []IndentLevel          `json:"list_indentation"`
	TableShading    TableShading           `json:"table_shading"`
	Replacements    []ReplacementRule      `json:"replacements"`
	ContentIDSuffix string                 `json:"content_id_suffix"`
	APIEndpoint     string                 `json:"api_endpoint"`
	APITimeout      time.Duration          `json:"api_timeout"`
	RevisionMode    RevisionMode           `json:"revision_mode"`
	WrapAuthor      string                 `json:"wrap_author"`
	AcceptAfter     bool                   `json:"accept_revisions_after"`
	Requester       Requester              `json:"requester"`
}

// HyperlinkRecord is the pipeline's working view of one hyperlink. Created by
// extraction, mutated by content-id normalization, enrichment, and the
// replacement engine, and written back to the document before save.
type HyperlinkRecord struct {
	RelationshipID      string          `json:"relationship_id"`
	URL                 string          `json:"url"`
	Anchor              string          `json:"anchor"`
	DisplayText         string          `json:"display_text"`
	ParagraphIndex      int             `json:"paragraph_index"`
	PositionInParagraph int             `json:"position_in_paragraph"`
	ContentID           string          `json:"content_id,omitempty"`
	DocumentID          string          `json:"document_id,omitempty"`
	ResolvedContentID   string          `json:"resolved_content_id,omitempty"`
	ResolvedTitle       string          `json:"resolved_title,omitempty"`
	Status              HyperlinkStatus `json:"status"`
}

// LookupID returns the identifier sent to the enrichment service for this
// record: the content id when present, otherwise the document id.
func (h *HyperlinkRecord) LookupID() string {
	if h.ContentID != "" {
		return h.ContentID
	}
	return h.DocumentID
}

// LookupRequest is one batched call to the enrichment service. Endpoint
// overrides the client's configured endpoint when set, so a session can
// point at its own registry.
type LookupRequest struct {
	IDs               []string
	Endpoint          string
	HyperlinksChecked int
	TotalHyperlinks   int
	Requester         Requester
}

// LookupResult is one record of the enrichment service's response.
type LookupResult struct {
	ContentID  string `json:"Content_ID"`
	DocumentID string `json:"Document_ID"`
	Title      string `json:"Title"`
	Status     string `json:"Status"`
}

// ProcessingCounts aggregates per-document hyperlink counters.
type ProcessingCounts struct {
	TotalHyperlinks     int `json:"total_hyperlinks"`
	ProcessedHyperlinks int `json:"processed_hyperlinks"`
	SkippedHyperlinks   int `json:"skipped_hyperlinks"`
	AppendedContentIDs  int `json:"appended_content_ids"`
	UpdatedURLs         int `json:"updated_urls"`
	UpdatedDisplayTexts int `json:"updated_display_texts"`
}

// ProcessingResult is the immutable outcome of one document attempt.
type ProcessingResult struct {
	Success          bool             `json:"success"`
	Counts           ProcessingCounts `json:"counts"`
	ErrorMessages    []string         `json:"error_messages,omitempty"`
	Warnings         []string         `json:"warnings,omitempty"`
	ProcessingTimeMs int64            `json:"processing_time_ms"`
	BackupPath       string           `json:"backup_path,omitempty"`
	ChangeLog        []UnifiedChange  `json:"change_log,omitempty"`
}

// ChangeRecord is a raw mutation record emitted by pipeline steps before
// consolidation.
type ChangeRecord struct {
	Category       ChangeCategory  `json:"category"`
	Author         string          `json:"author"`
	Date           time.Time       `json:"date"`
	ParagraphIndex int             `json:"paragraph_index"`
	NearestHeading string          `json:"nearest_heading,omitempty"`
	Description    string          `json:"description"`
	AffectedText   string          `json:"affected_text,omitempty"`
	Before         string          `json:"before,omitempty"`
	After          string          `json:"after,omitempty"`
	Property       *PropertyChange `json:"property,omitempty"`
}

// PropertyChange describes a single formatting property transition.
type PropertyChange struct {
	Property string `json:"property"`
	OldValue string `json:"old_value"`
	NewValue string `json:"new_value"`
}

// UnifiedChange is a consolidated, UI-ready change-log entry.
type UnifiedChange struct {
	ID                uuid.UUID       `json:"id"`
	Category          ChangeCategory  `json:"category"`
	Author            string          `json:"author"`
	Date              time.Time       `json:"date"`
	ParagraphIndex    int             `json:"paragraph_index"`
	NearestHeading    string          `json:"nearest_heading,omitempty"`
	Description       string          `json:"description"`
	AffectedText      string          `json:"affected_text,omitempty"`
	Before            string          `json:"before,omitempty"`
	After             string          `json:"after,omitempty"`
	Property          *PropertyChange `json:"property,omitempty"`
	GroupedProperties []PropertyChange `json:"grouped_properties,omitempty"`
	Count             int             `json:"count"`
}

// FileResult pairs one batch input path with its processing result.
type FileResult struct {
	Path   string           `json:"path"`
	Result ProcessingResult `json:"result"`
}

// BatchResult is the aggregate outcome of a batch run.
type BatchResult struct {
	TotalFiles      int          `json:"total_files"`
	SuccessfulFiles int          `json:"successful_files"`
	FailedFiles     int          `json:"failed_files"`
	Results         []FileResult `json:"results"`
}

// BatchSummary is the condensed form of a BatchResult used for notification.
type BatchSummary struct {
	JobID           uuid.UUID `json:"job_id"`
	TotalFiles      int       `json:"total_files"`
	SuccessfulFiles int       `json:"successful_files"`
	FailedFiles     int       `json:"failed_files"`
	Duration        time.Duration `json:"duration"`
	TopErrors       []string  `json:"top_errors,omitempty"`
}

// RunRecord is one persisted document run.
type RunRecord struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Path         string    `db:"path" json:"path"`
	Success      bool      `db:"success" json:"success"`
	Counts       ProcessingCounts `db:"-" json:"counts"`
	CountsJSON   []byte    `db:"counts" json:"-"`
	Error        string    `db:"error" json:"error,omitempty"`
	Warnings     int       `db:"warnings" json:"warnings"`
	DurationMs   int64     `db:"duration_ms" json:"duration_ms"`
	BackupPath   string    `db:"backup_path" json:"backup_path,omitempty"`
	ChangeLog    []UnifiedChange `db:"-" json:"change_log,omitempty"`
	ChangeLogJSON []byte   `db:"change_log" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Inspection is the pre-flight diagnostic report for one document.
type Inspection struct {
	Path            string   `json:"path"`
	SizeBytes       int64    `json:"size_bytes"`
	Hyperlinks      int      `json:"hyperlinks"`
	TrackedChanges  int      `json:"tracked_changes"`
	ContentControls int      `json:"content_controls"`
	FieldCodes      int      `json:"field_codes"`
	MissingParts    []string `json:"missing_parts,omitempty"`
	Warnings        []string `json:"warnings,omitempty"`
}
