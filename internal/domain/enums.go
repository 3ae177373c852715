package domain

// StyleRole identifies a named paragraph role that receives a style definition.
type StyleRole string

const (
	RoleHeading1      StyleRole = "heading1"
	RoleHeading2      StyleRole = "heading2"
	RoleHeading3      StyleRole = "heading3"
	RoleNormal        StyleRole = "normal"
	RoleListParagraph StyleRole = "list_paragraph"
)

// AllStyleRoles lists every role the processor assigns.
var AllStyleRoles = []StyleRole{
	RoleHeading1, RoleHeading2, RoleHeading3, RoleNormal, RoleListParagraph,
}

// Alignment is a paragraph alignment value. AlignPreserve means the existing
// alignment is left untouched.
type Alignment string

const (
	AlignPreserve Alignment = "preserve"
	AlignLeft     Alignment = "left"
	AlignCenter   Alignment = "center"
	AlignRight    Alignment = "right"
	AlignJustify  Alignment = "justify"
)

// Tristate is a formatting flag that can force a value on, force it off, or
// preserve whatever the document already has.
type Tristate string

const (
	TriPreserve Tristate = "preserve"
	TriOn       Tristate = "on"
	TriOff      Tristate = "off"
)

// MatchType selects how a replacement rule matches its find pattern.
type MatchType string

const (
	MatchExact    MatchType = "exact"
	MatchContains MatchType = "contains"
	MatchRegex    MatchType = "regex"
)

// ReplaceTarget selects which hyperlink field a replacement rule rewrites.
type ReplaceTarget string

const (
	TargetURL  ReplaceTarget = "url"
	TargetText ReplaceTarget = "text"
)

// RevisionMode governs how tracked changes are handled during processing.
type RevisionMode string

const (
	// RevisionAcceptAll collapses every tracked change into the base text
	// before any other mutation runs.
	RevisionAcceptAll RevisionMode = "accept_all"
	// RevisionPreserve leaves existing revisions alone and records new
	// mutations as tracked changes under the processing author.
	RevisionPreserve RevisionMode = "preserve"
	// RevisionPreserveAndWrap is RevisionPreserve with an explicit wrap
	// author override.
	RevisionPreserveAndWrap RevisionMode = "preserve_and_wrap"
)

// HyperlinkStatus is the lifecycle state of a hyperlink record.
type HyperlinkStatus string

const (
	HyperlinkPending  HyperlinkStatus = "pending"
	HyperlinkUpdated  HyperlinkStatus = "updated"
	HyperlinkNotFound HyperlinkStatus = "not_found"
	HyperlinkExpired  HyperlinkStatus = "expired"
)

// ChangeCategory classifies a change-log entry for display and audit.
type ChangeCategory string

const (
	ChangeContent        ChangeCategory = "content"
	ChangeFormatting     ChangeCategory = "formatting"
	ChangeStructural     ChangeCategory = "structural"
	ChangeTable          ChangeCategory = "table"
	ChangeHyperlink      ChangeCategory = "hyperlink"
	ChangeImage          ChangeCategory = "image"
	ChangeField          ChangeCategory = "field"
	ChangeComment        ChangeCategory = "comment"
	ChangeBookmark       ChangeCategory = "bookmark"
	ChangeContentControl ChangeCategory = "content_control"
)

// JobState is the lifecycle state of an asynchronous batch job.
type JobState string

const (
	JobQueued    JobState = "queued"
	JobRunning   JobState = "running"
	JobCompleted JobState = "completed"
	JobCanceled  JobState = "canceled"
)
