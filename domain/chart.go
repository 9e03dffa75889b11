package domain

import (
	"fmt"
	"strings"
)

// GroupKey names the category axis of a chart
type GroupKey string

const (
	GroupCodes      GroupKey = "codes"
	GroupSectors    GroupKey = "sectors"
	GroupThemes     GroupKey = "themes"
	GroupGP         GroupKey = "gp"
	GroupFY         GroupKey = "fy"
	GroupRegion     GroupKey = "region"
	GroupInstrument GroupKey = "instrument"
	GroupStatus     GroupKey = "status"
)

// groupFields maps the grouping vocabulary onto result fields
var groupFields = map[GroupKey]Field{
	GroupCodes:      FieldCodeName,
	GroupSectors:    FieldCodeName,
	GroupThemes:     FieldCodeName,
	GroupGP:         FieldLeadPractice,
	GroupFY:         FieldApprovalFY,
	GroupRegion:     FieldRegion,
	GroupInstrument: FieldInstrument,
	GroupStatus:     FieldStatus,
}

// groupTitles are the axis captions of each grouping
var groupTitles = map[GroupKey]string{
	GroupCodes:      "Code",
	GroupGP:         "Global Practice",
	GroupFY:         "Project Approval FY",
	GroupRegion:     "Region",
	GroupInstrument: "Lending Instrument",
	GroupStatus:     "Project Status",
}

// ParseGroupKey validates a grouping key for a scheme. The scheme's own
// plural ("sectors" or "themes") is accepted as the code grouping.
func ParseGroupKey(name string, scheme Scheme) (GroupKey, error) {
	key := GroupKey(strings.ToLower(strings.TrimSpace(name)))
	switch key {
	case GroupSectors:
		if scheme != SchemeSector {
			return "", NewValidationError(fmt.Sprintf("grouping %q is only valid for sector results", name))
		}
		return GroupCodes, nil
	case GroupThemes:
		if scheme != SchemeTheme {
			return "", NewValidationError(fmt.Sprintf("grouping %q is only valid for theme results", name))
		}
		return GroupCodes, nil
	}
	if _, ok := groupFields[key]; !ok {
		return "", NewValidationError(fmt.Sprintf("unrecognized grouping %q; acceptable values are sectors/themes, gp, fy, region, instrument, status", name))
	}
	return key, nil
}

// Field returns the result field a grouping reads
func (k GroupKey) Field() Field {
	return groupFields[k]
}

// Title returns the axis caption of a grouping
func (k GroupKey) Title(schema *Schema) string {
	if k == GroupCodes && schema != nil {
		return schema.Label
	}
	return groupTitles[k]
}

// Slug is the short name used in default file names
func (k GroupKey) Slug() string {
	switch k {
	case GroupCodes:
		return "Code"
	case GroupFY:
		return "FY"
	case GroupGP:
		return "GP"
	default:
		return strings.ToUpper(string(k[:1])) + string(k[1:])
	}
}

// Orientation is the direction bars grow in
type Orientation string

const (
	OrientationHorizontal Orientation = "horizontal"
	OrientationVertical   Orientation = "vertical"
)

// Bar is one category of a chart
type Bar struct {
	Label string `json:"label" yaml:"label"`
	Value int    `json:"value" yaml:"value"`
}

// ChartSize is the canvas size in pixels
type ChartSize struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Category-count steps at which charts grow
const (
	ChartStepSmall  = 20
	ChartStepMedium = 40
	ChartStepLarge  = 60
)

// SizeForCategories scales a canvas in discrete steps with the number of bars
func SizeForCategories(n int) ChartSize {
	switch {
	case n >= ChartStepLarge:
		return ChartSize{Width: 1200, Height: 1400}
	case n >= ChartStepMedium:
		return ChartSize{Width: 1000, Height: 1000}
	case n >= ChartStepSmall:
		return ChartSize{Width: 900, Height: 720}
	default:
		return ChartSize{Width: 720, Height: 480}
	}
}

// Chart is a bar chart of distinct-project counts per category
type Chart struct {
	Title         string      `json:"title" yaml:"title"`
	CategoryLabel string      `json:"category_label" yaml:"category_label"`
	ValueLabel    string      `json:"value_label" yaml:"value_label"`
	Orientation   Orientation `json:"orientation" yaml:"orientation"`
	Bars          []Bar       `json:"bars" yaml:"bars"`
	Size          ChartSize   `json:"size" yaml:"size"`
	Notices       []Notice    `json:"notices,omitempty" yaml:"notices,omitempty"`
}

// MaxValue returns the largest bar value
func (c *Chart) MaxValue() int {
	max := 0
	for _, b := range c.Bars {
		if b.Value > max {
			max = b.Value
		}
	}
	return max
}

// IntegerTicks returns evenly spaced integer axis ticks from 0 to at least max
func IntegerTicks(max int, want int) []int {
	if want < 1 {
		want = 1
	}
	if max <= 0 {
		return []int{0, 1}
	}
	step := (max + want - 1) / want
	if step < 1 {
		step = 1
	}
	ticks := make([]int, 0, want+2)
	for v := 0; ; v += step {
		ticks = append(ticks, v)
		if v >= max {
			break
		}
	}
	return ticks
}
