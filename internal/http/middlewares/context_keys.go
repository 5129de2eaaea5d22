package middlewares

type ctxKey string

const (
	CtxRequestID ctxKey = "request_id"
	CtxUsername  ctxKey = "username"
	CtxUserID    ctxKey = "user_id"
)
