// Package decision decides whether an existing plugin record differs from
// freshly built request parameters.
package decision

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/stelitsyn-sc/zappifest/internal/manifest"
	"github.com/stelitsyn-sc/zappifest/internal/params"
	"github.com/stelitsyn-sc/zappifest/internal/zapp"
)

// Comparator reports whether a remote value and a local parameter value are
// equal once both are normalized.
type Comparator func(remote any, local params.Value) bool

// Correspondence pairs a remote attribute with the parameter it is built from.
type Correspondence struct {
	Remote  string
	Local   string
	Compare Comparator
}

// Table is the ordered list of compared fields.
var Table = []Correspondence{
	{Remote: "name", Local: params.KeyName, Compare: TextEqual},
	{Remote: "category", Local: params.KeyCategory, Compare: TextEqual},
	{Remote: "whitelisted_account_ids", Local: params.KeyWhitelistedAccountIDs, Compare: ListEqual},
	{Remote: "about", Local: params.KeyAbout, Compare: TextEqual},
	{Remote: "preview_image", Local: params.KeyPreviewImage, Compare: TextEqual},
	{Remote: "ui_builder_support", Local: params.KeyUIBuilderSupport, Compare: BoolEqual},
	{Remote: "cover_image", Local: params.KeyCoverImage, Compare: TextEqual},
	{Remote: "configuration_panel_disabled", Local: params.KeyConfigurationPanelDisabled, Compare: BoolEqual},
	{Remote: "description", Local: params.KeyDescription, Compare: TextEqual},
	{Remote: "core_plugin", Local: params.KeyCorePlugin, Compare: BoolEqual},
	{Remote: "screen", Local: params.KeyScreen, Compare: BoolEqual},
	{Remote: "exports", Local: params.KeyExports, Compare: BoolEqual},
}

func init() {
	if err := checkTable(Table, params.Keys); err != nil {
		panic(err)
	}
}

// checkTable fails on duplicate rows, nil comparators or local keys the
// parameter builder never emits.
func checkTable(table []Correspondence, keys []string) error {
	seenRemote := make(map[string]bool, len(table))
	seenLocal := make(map[string]bool, len(table))
	for i, row := range table {
		switch {
		case row.Remote == "" || row.Local == "":
			return fmt.Errorf("decision table row %d: empty field name", i)
		case row.Compare == nil:
			return fmt.Errorf("decision table row %d (%s): nil comparator", i, row.Remote)
		case !slices.Contains(keys, row.Local):
			return fmt.Errorf("decision table row %d (%s): unknown parameter %q", i, row.Remote, row.Local)
		case seenRemote[row.Remote] || seenLocal[row.Local]:
			return fmt.Errorf("decision table row %d (%s): duplicate mapping", i, row.Remote)
		}
		seenRemote[row.Remote] = true
		seenLocal[row.Local] = true
	}
	return nil
}

// Change is one differing field.
type Change struct {
	Field  string
	Remote any
	Local  params.Value
}

// Changes returns the rows of Table whose values differ, in table order.
func Changes(remote zapp.Plugin, p params.Params) []Change {
	var changes []Change
	for _, row := range Table {
		rv, _ := remote.Field(row.Remote)
		lv, _ := p.Get(row.Local)
		if !row.Compare(rv, lv) {
			changes = append(changes, Change{Field: row.Remote, Remote: rv, Local: lv})
		}
	}
	return changes
}

// TextEqual compares scalars as strings; null equals "".
func TextEqual(remote any, local params.Value) bool {
	r, ok := manifest.Scalar(remote)
	if !ok {
		return false
	}
	l, ok := localText(local)
	return ok && r == l
}

// BoolEqual compares booleans; null equals false and "true"/"false" strings
// are accepted on either side.
func BoolEqual(remote any, local params.Value) bool {
	r, ok := remoteBool(remote)
	if !ok {
		return false
	}
	var l bool
	switch v := local.(type) {
	case nil:
	case params.Bool:
		l = bool(v)
	case params.Text:
		parsed, err := strconv.ParseBool(string(v))
		if err != nil {
			return false
		}
		l = parsed
	default:
		return false
	}
	return r == l
}

// ListEqual compares ordered lists of scalars; null equals the empty list.
func ListEqual(remote any, local params.Value) bool {
	var r []string
	switch v := remote.(type) {
	case nil:
	case []any:
		r = make([]string, 0, len(v))
		for _, item := range v {
			s, ok := manifest.Scalar(item)
			if !ok {
				return false
			}
			r = append(r, s)
		}
	default:
		return false
	}

	var l []string
	switch v := local.(type) {
	case nil:
	case params.List:
		l = v
	default:
		return false
	}
	return slices.Equal(r, l)
}

func localText(v params.Value) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", true
	case params.Text:
		return string(val), true
	case params.Bool:
		return val.String(), true
	default:
		return "", false
	}
}

func remoteBool(v any) (bool, bool) {
	switch val := v.(type) {
	case nil:
		return false, true
	case bool:
		return val, true
	case string:
		if val == "" {
			return false, true
		}
		b, err := strconv.ParseBool(val)
		return b, err == nil
	default:
		return false, false
	}
}
