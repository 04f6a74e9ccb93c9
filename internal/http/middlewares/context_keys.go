package middlewares

const (
	// CtxRequestID is the gin context key holding the request id.
	CtxRequestID = "request_id"

	ctxIdentity = "auth.identity"
)
