package observability

const (
	AttrSourceKind = "source.kind"
	AttrErrorKind  = "error.kind"
	AttrFetchID    = "fetch.id"
	AttrQueryCount = "fetch.query_count"
	AttrToolName   = "tool.name"

	SpanFetchDispatch = "fetch.dispatch"
	SpanSourceFetch   = "fetch.source"
	SpanToolInvoke    = "tools.invoke"

	DefaultServiceName = "groundwire"
)
