package diff

import (
	"github.com/stelitsyn-sc/zappifest/internal/zapp"
)

// manifestFields maps manifest keys to the registry attributes holding them.
var manifestFields = []struct {
	manifest string
	remote   string
}{
	{"name", "name"},
	{"identifier", "external_identifier"},
	{"type", "category"},
	{"description", "description"},
	{"about", "about"},
	{"guide", "guide"},
	{"cover_image", "cover_image"},
	{"whitelisted_account_ids", "whitelisted_account_ids"},
	{"core_plugin", "core_plugin"},
	{"screen", "screen"},
	{"supports_offline", "supports_offline"},
	{"preload", "preload"},
	{"postload", "postload"},
	{"ui_builder_support", "ui_builder_support"},
	{"configuration_panel_disabled", "configuration_panel_disabled"},
}

// RemoteManifest returns the manifest the registry currently holds: local
// with every attribute the registry stores replaced by the remote value.
// Keys the registry does not store stay as in local, so they never show up
// as differences. local must be a copy owned by the caller; it is modified.
func RemoteManifest(remote zapp.Plugin, local map[string]any) map[string]any {
	out := local
	if out == nil {
		out = make(map[string]any)
	}

	for _, f := range manifestFields {
		if v, ok := remote.Field(f.remote); ok {
			out[f.manifest] = v
		}
	}

	if v, ok := remote.Field("preview_image"); ok {
		setPreview(out, v)
	}
	if v, ok := remote.Field("exports"); ok {
		setExports(out, v == true)
	}
	return out
}

// setPreview writes url as the first preview.general entry, keeping the
// shape (object or list) the manifest uses.
func setPreview(m map[string]any, url any) {
	preview, _ := m["preview"].(map[string]any)
	if preview == nil {
		if url == nil || url == "" {
			return
		}
		preview = make(map[string]any)
		m["preview"] = preview
	}

	switch general := preview["general"].(type) {
	case []any:
		if len(general) > 0 {
			if first, ok := general[0].(map[string]any); ok {
				first["url"] = url
				return
			}
		}
		preview["general"] = append([]any{map[string]any{"url": url}}, general...)
	case map[string]any:
		general["url"] = url
	default:
		preview["general"] = map[string]any{"url": url}
	}
}

// setExports adds or removes export.allowed_list to match the remote flag.
func setExports(m map[string]any, exports bool) {
	export, _ := m["export"].(map[string]any)
	_, has := export["allowed_list"]
	switch {
	case exports && !has:
		if export == nil {
			export = make(map[string]any)
			m["export"] = export
		}
		export["allowed_list"] = []any{}
	case !exports && has:
		delete(export, "allowed_list")
	}
}
