// Package params builds the ordered request parameters sent to the registry.
package params

import (
	"slices"
	"strconv"

	"github.com/stelitsyn-sc/zappifest/internal/manifest"
)

// Request parameter keys, in the order Build emits them.
const (
	KeyID                         = "id"
	KeyAccessToken                = "access_token"
	KeyName                       = "plugin[name]"
	KeyCategory                   = "plugin[category]"
	KeyExternalIdentifier         = "plugin[external_identifier]"
	KeyWhitelistedAccountIDs      = "plugin[whitelisted_account_ids][]"
	KeyGuide                      = "plugin[guide]"
	KeyDescription                = "plugin[description]"
	KeyAbout                      = "plugin[about]"
	KeyCorePlugin                 = "plugin[core_plugin]"
	KeyScreen                     = "plugin[screen]"
	KeySupportsOffline            = "plugin[supports_offline]"
	KeyExports                    = "plugin[exports]"
	KeyConfigurationPanelDisabled = "plugin[configuration_panel_disabled]"
	KeyCoverImage                 = "plugin[cover_image]"
	KeyUIBuilderSupport           = "plugin[ui_builder_support]"
	KeyPreviewImage               = "plugin[preview_image]"
	KeyPreload                    = "plugin[preload]"
	KeyPostload                   = "plugin[postload]"
)

// Keys lists every key Build can emit.
var Keys = []string{
	KeyID,
	KeyAccessToken,
	KeyName,
	KeyCategory,
	KeyExternalIdentifier,
	KeyWhitelistedAccountIDs,
	KeyGuide,
	KeyDescription,
	KeyAbout,
	KeyCorePlugin,
	KeyScreen,
	KeySupportsOffline,
	KeyExports,
	KeyConfigurationPanelDisabled,
	KeyCoverImage,
	KeyUIBuilderSupport,
	KeyPreviewImage,
	KeyPreload,
	KeyPostload,
}

// Value is one of Text, Bool, List or File.
type Value interface {
	isValue()
}

// Text is a plain string field.
type Text string

// Bool is a boolean field, encoded as "true" or "false".
type Bool bool

// List is a multi-valued field; each element is sent under the same key.
type List []string

// File is a file upload part.
type File struct {
	Filename    string
	ContentType string
	Data        []byte
}

func (Text) isValue() {}
func (Bool) isValue() {}
func (List) isValue() {}
func (File) isValue() {}

// String returns the wire form of a Bool.
func (b Bool) String() string {
	return strconv.FormatBool(bool(b))
}

// Field is a single key/value pair.
type Field struct {
	Key   string
	Value Value
}

// Params is an ordered set of request fields. The zero value is empty.
type Params struct {
	fields []Field
}

// New returns Params holding the given fields in order.
func New(fields ...Field) Params {
	var p Params
	for _, f := range fields {
		p = p.With(f.Key, f.Value)
	}
	return p
}

// With returns a copy with key set to v. An existing key keeps its position.
func (p Params) With(key string, v Value) Params {
	out := Params{fields: slices.Clone(p.fields)}
	for i := range out.fields {
		if out.fields[i].Key == key {
			out.fields[i].Value = v
			return out
		}
	}
	out.fields = append(out.fields, Field{Key: key, Value: v})
	return out
}

// Without returns a copy with key removed.
func (p Params) Without(key string) Params {
	out := Params{fields: make([]Field, 0, len(p.fields))}
	for _, f := range p.fields {
		if f.Key != key {
			out.fields = append(out.fields, f)
		}
	}
	return out
}

// Get returns the value stored under key.
func (p Params) Get(key string) (Value, bool) {
	for _, f := range p.fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Fields returns the fields in order.
func (p Params) Fields() []Field {
	return slices.Clone(p.fields)
}

// Len returns the number of fields.
func (p Params) Len() int {
	return len(p.fields)
}

// Build derives the request parameters for a create or update call.
// id is included only when non-empty.
func Build(doc *manifest.Document, id, accessToken string) Params {
	fields := make([]Field, 0, len(Keys))
	if id != "" {
		fields = append(fields, Field{KeyID, Text(id)})
	}
	fields = append(fields,
		Field{KeyAccessToken, Text(accessToken)},
		Field{KeyName, Text(doc.Name)},
		Field{KeyCategory, Text(doc.Type)},
		Field{KeyExternalIdentifier, Text(doc.Identifier)},
		Field{KeyWhitelistedAccountIDs, List(slices.Clone(doc.WhitelistedAccountIDs))},
		Field{KeyGuide, Text(doc.Guide)},
		Field{KeyDescription, Text(doc.Description)},
		Field{KeyAbout, Text(doc.About)},
		Field{KeyCorePlugin, Bool(doc.CorePlugin)},
		Field{KeyScreen, Bool(doc.Screen)},
		Field{KeySupportsOffline, Bool(doc.SupportsOffline)},
		Field{KeyExports, Bool(doc.Exports)},
		Field{KeyConfigurationPanelDisabled, Bool(doc.ConfigurationPanelDisabled)},
		Field{KeyCoverImage, Text(doc.CoverImage)},
		Field{KeyUIBuilderSupport, Bool(doc.UIBuilderSupport)},
		Field{KeyPreviewImage, Text(doc.PreviewImage())},
		Field{KeyPreload, Bool(doc.Preload)},
		Field{KeyPostload, Bool(doc.Postload)},
	)
	return Params{fields: fields}
}
