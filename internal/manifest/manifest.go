// Package manifest loads plugin-manifest.json into a typed, read-only record.
package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/stelitsyn-sc/zappifest/internal/log"
)

// DefaultPath is the manifest file name written by the authoring wizard.
const DefaultPath = "plugin-manifest.json"

// Document is a parsed plugin manifest. It is never mutated after Parse.
type Document struct {
	Name        string
	Identifier  string
	Type        string
	Description string
	About       string
	Guide       string
	CoverImage  string

	// PreviewImages holds the urls of preview.general in declaration order.
	PreviewImages []string

	WhitelistedAccountIDs []string
	CustomFields          []map[string]any

	// Exports is true when the manifest declares export.allowed_list.
	Exports bool

	CorePlugin                 bool
	Screen                     bool
	SupportsOffline            bool
	Preload                    bool
	Postload                   bool
	UIBuilderSupport           bool
	ConfigurationPanelDisabled bool

	raw map[string]any
}

// Load reads and parses the manifest at path.
func Load(path string) (*Document, error) {
	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path) //nolint:gosec // G304: manifest path is user supplied
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	log.Debug(log.CatManifest, "Loaded manifest", "path", path, "identifier", doc.Identifier)
	return doc, nil
}

// Parse decodes a manifest JSON object.
func Parse(data []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding manifest: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("manifest must be a JSON object")
	}
	return FromMap(raw)
}

// FromMap builds a Document from an already decoded JSON object.
func FromMap(raw map[string]any) (*Document, error) {
	f := fields{raw: raw}
	doc := &Document{
		Name:                       f.str("name"),
		Identifier:                 f.str("identifier"),
		Type:                       f.str("type"),
		Description:                f.str("description"),
		About:                      f.str("about"),
		Guide:                      f.str("guide"),
		CoverImage:                 f.str("cover_image"),
		CorePlugin:                 f.flag("core_plugin"),
		Screen:                     f.flag("screen"),
		SupportsOffline:            f.flag("supports_offline"),
		Preload:                    f.flag("preload"),
		Postload:                   f.flag("postload"),
		UIBuilderSupport:           f.flag("ui_builder_support"),
		ConfigurationPanelDisabled: f.flag("configuration_panel_disabled"),
		WhitelistedAccountIDs:      f.list("whitelisted_account_ids"),
		CustomFields:               f.objects("custom_configuration_fields"),
		PreviewImages:              f.previews(),
		Exports:                    f.exports(),
		raw:                        cloneMap(raw),
	}

	if f.err != nil {
		return nil, f.err
	}
	if strings.TrimSpace(doc.Name) == "" {
		return nil, fmt.Errorf("name is required")
	}
	if strings.TrimSpace(doc.Identifier) == "" {
		return nil, fmt.Errorf("identifier is required")
	}
	return doc, nil
}

// Raw returns a deep copy of the decoded manifest object.
func (d *Document) Raw() map[string]any {
	return cloneMap(d.raw)
}

// PreviewImage returns the first preview url, or "" when none is declared.
func (d *Document) PreviewImage() string {
	if len(d.PreviewImages) == 0 {
		return ""
	}
	return d.PreviewImages[0]
}

// ShortIdentifier is the normalized identifier used for candidate matching:
// the reverse-DNS namespace (everything up to the last '.') is dropped and the
// rest is lowercased, so "com.applicaster.Foo-Plugin" becomes "foo-plugin".
// The function is idempotent.
func ShortIdentifier(identifier string) string {
	id := strings.TrimSpace(identifier)
	if i := strings.LastIndex(id, "."); i >= 0 {
		id = id[i+1:]
	}
	return strings.ToLower(id)
}

// fields collects the first type error while extracting known keys.
type fields struct {
	raw map[string]any
	err error
}

func (f *fields) fail(key string, want string, got any) {
	if f.err == nil {
		f.err = fmt.Errorf("%s must be %s, got %T", key, want, got)
	}
}

func (f *fields) str(key string) string {
	v, ok := f.raw[key]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		f.fail(key, "a string", v)
		return ""
	}
	return s
}

func (f *fields) flag(key string) bool {
	v, ok := f.raw[key]
	if !ok || v == nil {
		return false
	}
	b, ok := v.(bool)
	if !ok {
		f.fail(key, "a boolean", v)
		return false
	}
	return b
}

func (f *fields) list(key string) []string {
	v, ok := f.raw[key]
	if !ok || v == nil {
		return nil
	}
	items, ok := v.([]any)
	if !ok {
		f.fail(key, "a list", v)
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := Scalar(item)
		if !ok {
			f.fail(key+" entries", "scalars", item)
			return nil
		}
		out = append(out, s)
	}
	return out
}

func (f *fields) objects(key string) []map[string]any {
	v, ok := f.raw[key]
	if !ok || v == nil {
		return nil
	}
	items, ok := v.([]any)
	if !ok {
		f.fail(key, "a list", v)
		return nil
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func (f *fields) previews() []string {
	preview, ok := f.raw["preview"].(map[string]any)
	if !ok {
		return nil
	}
	switch general := preview["general"].(type) {
	case []any:
		out := make([]string, 0, len(general))
		for _, item := range general {
			if m, ok := item.(map[string]any); ok {
				if url, ok := m["url"].(string); ok {
					out = append(out, url)
				}
			}
		}
		return out
	case map[string]any:
		if url, ok := general["url"].(string); ok {
			return []string{url}
		}
	}
	return nil
}

func (f *fields) exports() bool {
	export, ok := f.raw["export"].(map[string]any)
	if !ok {
		return false
	}
	_, ok = export["allowed_list"]
	return ok
}

// Scalar formats a decoded JSON scalar as a string. Numbers never use
// exponent notation. Returns false for objects and lists.
func Scalar(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", true
	case string:
		return val, true
	case bool:
		return strconv.FormatBool(val), true
	case json.Number:
		return val.String(), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	default:
		return "", false
	}
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return val
	}
}
