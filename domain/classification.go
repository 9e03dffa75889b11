package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Scheme identifies a classification family
type Scheme string

const (
	SchemeSector Scheme = "sector"
	SchemeTheme  Scheme = "theme"
)

// CodeKind describes how code identifiers are typed on input
type CodeKind string

const (
	CodeKindString  CodeKind = "string"
	CodeKindInteger CodeKind = "integer"
)

// Field identifies a well-known column of a classification table.
// Pass-through columns carry FieldExtra and are addressed by name.
type Field string

const (
	FieldProjectID           Field = "project_id"
	FieldMajorCode           Field = "major_code"
	FieldMajorCodeName       Field = "major_code_name"
	FieldCode                Field = "code"
	FieldCodeName            Field = "code_name"
	FieldThemeLevel          Field = "theme_level"
	FieldPercentage          Field = "percentage"
	FieldAdditionalFinancing Field = "additional_financing"
	FieldApprovalFY          Field = "approval_fy"
	FieldStatus              Field = "status"
	FieldProductType         Field = "product_type"
	FieldLeadPractice        Field = "lead_practice"
	FieldRegion              Field = "region"
	FieldInstrument          Field = "instrument"
	FieldExtra               Field = "extra"
)

// Numeric reports whether a field holds numbers
func (f Field) Numeric() bool {
	switch f {
	case FieldPercentage, FieldApprovalFY, FieldThemeLevel:
		return true
	default:
		return false
	}
}

// Metadata sheet headers shared by both schemes
const (
	HeaderProjectID           = "Project Id"
	HeaderApprovalFY          = "Project Approval FY"
	HeaderStatus              = "Project Status Name"
	HeaderProductType         = "Product Line Type"
	HeaderAdditionalFinancing = "Additional Financing Flag"
	HeaderLeadPractice        = "Lead GP/Global Themes"
	HeaderRegion              = "Region Name"
	HeaderInstrument          = "Lending Instrument Long Name"
)

// Project status values observed in the export
const (
	StatusActive        = "Active"
	StatusCanceled      = "Canceled"
	StatusClosed        = "Closed"
	StatusDropped       = "Dropped"
	StatusDraft         = "Draft"
	StatusLegacyDropped = "Legacy Dropped"
	StatusLegacy        = "Legacy"
	StatusPipeline      = "Pipeline"
)

// Product line types
const (
	ProductLending  = "L"
	ProductAAA      = "A"
	ProductStandard = "S"
)

// AdditionalFinancingYes marks a follow-on financing instance of an earlier project
const AdditionalFinancingYes = "Y"

// AmbiguousCode labels a project whose dominant code cannot be resolved
const AmbiguousCode = "AMBIGUOUS"

// KnownStatuses lists every status the export is documented to contain
var KnownStatuses = []string{
	StatusActive, StatusCanceled, StatusClosed, StatusDropped,
	StatusDraft, StatusLegacyDropped, StatusLegacy, StatusPipeline,
}

// KnownProductTypes lists every documented product line type
var KnownProductTypes = []string{ProductLending, ProductAAA, ProductStandard}

// ThemeLevels lists the valid theme hierarchy depths
var ThemeLevels = []int{1, 2, 3}

// Column is one column of a classification table or query result
type Column struct {
	Name  string `json:"name" yaml:"name"`
	Field Field  `json:"field" yaml:"field"`
}

// ClassificationRow is one project × code mapping joined with its project metadata.
// Empty strings and nil pointers represent missing values.
type ClassificationRow struct {
	ProjectID     string   `json:"project_id" yaml:"project_id"`
	MajorCode     string   `json:"major_code,omitempty" yaml:"major_code,omitempty"`
	MajorCodeName string   `json:"major_code_name,omitempty" yaml:"major_code_name,omitempty"`
	Code          string   `json:"code,omitempty" yaml:"code,omitempty"`
	CodeName      string   `json:"code_name,omitempty" yaml:"code_name,omitempty"`
	ThemeLevel    *int     `json:"theme_level,omitempty" yaml:"theme_level,omitempty"`
	Percentage    *float64 `json:"percentage,omitempty" yaml:"percentage,omitempty"`

	ApprovalFY          *int   `json:"approval_fy,omitempty" yaml:"approval_fy,omitempty"`
	Status              string `json:"status,omitempty" yaml:"status,omitempty"`
	ProductType         string `json:"product_type,omitempty" yaml:"product_type,omitempty"`
	AdditionalFinancing string `json:"additional_financing,omitempty" yaml:"additional_financing,omitempty"`
	LeadPractice        string `json:"lead_practice,omitempty" yaml:"lead_practice,omitempty"`
	Region              string `json:"region,omitempty" yaml:"region,omitempty"`
	Instrument          string `json:"instrument,omitempty" yaml:"instrument,omitempty"`

	Extra map[string]string `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// Value returns the display value of the row for a column and whether it is present
func (r *ClassificationRow) Value(col Column) (string, bool) {
	switch col.Field {
	case FieldProjectID:
		return r.ProjectID, r.ProjectID != ""
	case FieldMajorCode:
		return r.MajorCode, r.MajorCode != ""
	case FieldMajorCodeName:
		return r.MajorCodeName, r.MajorCodeName != ""
	case FieldCode:
		return r.Code, r.Code != ""
	case FieldCodeName:
		return r.CodeName, r.CodeName != ""
	case FieldThemeLevel:
		return formatIntPtr(r.ThemeLevel)
	case FieldPercentage:
		if r.Percentage == nil {
			return "", false
		}
		return FormatPercentage(*r.Percentage), true
	case FieldApprovalFY:
		return formatIntPtr(r.ApprovalFY)
	case FieldStatus:
		return r.Status, r.Status != ""
	case FieldProductType:
		return r.ProductType, r.ProductType != ""
	case FieldAdditionalFinancing:
		return r.AdditionalFinancing, r.AdditionalFinancing != ""
	case FieldLeadPractice:
		return r.LeadPractice, r.LeadPractice != ""
	case FieldRegion:
		return r.Region, r.Region != ""
	case FieldInstrument:
		return r.Instrument, r.Instrument != ""
	default:
		v, ok := r.Extra[col.Name]
		return v, ok && v != ""
	}
}

// CodeLabel is the display label of the row's code: its name, or the raw code
// when the name is missing. Returns "" when the row has no code.
func (r *ClassificationRow) CodeLabel() string {
	if r.CodeName != "" {
		return r.CodeName
	}
	return r.Code
}

func formatIntPtr(v *int) (string, bool) {
	if v == nil {
		return "", false
	}
	return strconv.Itoa(*v), true
}

// FormatPercentage renders a percentage without trailing zeros
func FormatPercentage(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Schema describes one classification family: how its codes are typed and
// which columns it carries. The filter and aggregation engines are written
// once against this descriptor.
type Schema struct {
	Scheme   Scheme
	Label    string
	CodeKind CodeKind

	// Sheet is the default workbook sheet holding the code mappings
	Sheet string

	// Headers maps fields to their column names in the export
	Headers map[Field]string

	// CodeFields lists the fields read from the code sheet, in sheet order
	CodeFields []Field

	// ProjectFields is the curated column set of a project query
	ProjectFields []Field

	// LookupFields is the curated column set of a code lookup
	LookupFields []Field

	// HasMajorCode is true when codes roll up into major codes
	HasMajorCode bool

	// HasLevels is true when codes carry a hierarchy level
	HasLevels bool

	// ReportName and ChartPrefix name default output files
	ReportName  string
	ChartPrefix string
}

// Header returns the export column name of a field
func (s *Schema) Header(f Field) string {
	if h, ok := s.Headers[f]; ok {
		return h
	}
	return string(f)
}

// Column builds a result column for a well-known field
func (s *Schema) Column(f Field) Column {
	return Column{Name: s.Header(f), Field: f}
}

// Columns builds result columns for the given fields
func (s *Schema) Columns(fields []Field) []Column {
	cols := make([]Column, 0, len(fields))
	for _, f := range fields {
		cols = append(cols, s.Column(f))
	}
	return cols
}

// NormalizeCode validates a raw code identifier and returns its canonical form.
// Sector codes are upper-cased; theme codes must be integers.
func (s *Schema) NormalizeCode(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", NewValidationError(fmt.Sprintf("%s codes must be non-empty", s.Scheme))
	}
	switch s.CodeKind {
	case CodeKindInteger:
		n, err := strconv.Atoi(trimmed)
		if err != nil {
			return "", NewValidationError(fmt.Sprintf("every %s code must be an integer, got %q", s.Scheme, raw))
		}
		return strconv.Itoa(n), nil
	default:
		return strings.ToUpper(trimmed), nil
	}
}

// IsMajorCode reports whether a canonical code is a hierarchy-top code
func (s *Schema) IsMajorCode(code string) bool {
	return s.HasMajorCode && strings.HasSuffix(code, "X")
}

var metadataHeaders = map[Field]string{
	FieldProjectID:           HeaderProjectID,
	FieldApprovalFY:          HeaderApprovalFY,
	FieldStatus:              HeaderStatus,
	FieldProductType:         HeaderProductType,
	FieldAdditionalFinancing: HeaderAdditionalFinancing,
	FieldLeadPractice:        HeaderLeadPractice,
	FieldRegion:              HeaderRegion,
	FieldInstrument:          HeaderInstrument,
}

func withMetadataHeaders(codeHeaders map[Field]string) map[Field]string {
	out := make(map[Field]string, len(codeHeaders)+len(metadataHeaders))
	for k, v := range metadataHeaders {
		out[k] = v
	}
	for k, v := range codeHeaders {
		out[k] = v
	}
	return out
}

// MetadataFields lists the well-known metadata fields, in export order
var MetadataFields = []Field{
	FieldApprovalFY, FieldStatus, FieldProductType, FieldAdditionalFinancing,
	FieldLeadPractice, FieldRegion, FieldInstrument,
}

// SectorSchema describes sector classification rows
var SectorSchema = &Schema{
	Scheme:   SchemeSector,
	Label:    "Sectors",
	CodeKind: CodeKindString,
	Sheet:    "sectors",
	Headers: withMetadataHeaders(map[Field]string{
		FieldMajorCode:     "Major Sector Code",
		FieldMajorCodeName: "Major Sector Long Name",
		FieldCode:          "Sector Code",
		FieldCodeName:      "Sector Long Name",
		FieldPercentage:    "Sector Percentage",
	}),
	CodeFields: []Field{
		FieldProjectID, FieldMajorCode, FieldMajorCodeName,
		FieldCode, FieldCodeName, FieldPercentage,
	},
	ProjectFields: []Field{
		FieldProjectID, FieldCode, FieldCodeName, FieldPercentage, FieldAdditionalFinancing,
		FieldApprovalFY, FieldStatus, FieldProductType, FieldLeadPractice,
	},
	LookupFields: []Field{
		FieldProjectID, FieldMajorCode, FieldMajorCodeName,
		FieldCode, FieldCodeName, FieldPercentage,
	},
	HasMajorCode: true,
	ReportName:   "Sector_extract",
	ChartPrefix:  "Sectors",
}

// ThemeSchema describes theme classification rows
var ThemeSchema = &Schema{
	Scheme:   SchemeTheme,
	Label:    "Themes",
	CodeKind: CodeKindInteger,
	Sheet:    "themes",
	Headers: withMetadataHeaders(map[Field]string{
		FieldCode:       "Theme Code",
		FieldThemeLevel: "Theme Level",
		FieldCodeName:   "Theme Name",
		FieldPercentage: "Theme Percentage",
	}),
	CodeFields: []Field{
		FieldProjectID, FieldCode, FieldThemeLevel, FieldCodeName, FieldPercentage,
	},
	ProjectFields: []Field{
		FieldProjectID, FieldCode, FieldCodeName, FieldPercentage, FieldApprovalFY,
		FieldStatus, FieldProductType, FieldAdditionalFinancing, FieldLeadPractice,
	},
	LookupFields: []Field{
		FieldProjectID, FieldCode, FieldCodeName, FieldPercentage,
	},
	HasLevels:   true,
	ReportName:  "Themes_extract",
	ChartPrefix: "Themes",
}

// SchemaFor returns the descriptor of a scheme
func SchemaFor(scheme Scheme) (*Schema, error) {
	switch Scheme(strings.ToLower(string(scheme))) {
	case SchemeSector, "sectors":
		return SectorSchema, nil
	case SchemeTheme, "themes":
		return ThemeSchema, nil
	default:
		return nil, NewValidationError(fmt.Sprintf("unknown classification scheme %q (expected sector or theme)", scheme))
	}
}
