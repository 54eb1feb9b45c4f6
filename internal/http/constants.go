package http

const (
	KeyHeaderContentType = "Content-Type"
	KeyHeaderRequestID   = "X-Request-Id"

	ValueHeaderApplicationJson = "application/json"
)
