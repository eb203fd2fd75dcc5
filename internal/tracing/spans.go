package tracing

// Span attribute keys.
const (
	AttrHTTPMethod     = "http.request.method"
	AttrHTTPURLPath    = "url.path"
	AttrHTTPStatusCode = "http.response.status_code"
	AttrOutcome        = "zapp.outcome"

	AttrPluginID         = "zapp.plugin.id"
	AttrPluginIdentifier = "zapp.plugin.identifier"
	AttrNeedsUpdate      = "zapp.decision.needs_update"
	AttrAction           = "zapp.publish.action"
)

// Span names.
const (
	SpanHTTPRequest   = "http.request"
	SpanPublish       = "publish"
	SpanValidateToken = "publish.validate_token"
	SpanResolve       = "publish.resolve"
	SpanDecide        = "publish.decide"
	SpanSubmit        = "publish.submit"
)
