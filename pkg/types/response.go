package types

// Source tags where a cache-backed response payload came from.
type Source string

const (
	SourceCache      Source = "cache"
	SourceAPI        Source = "api"
	SourceStaleCache Source = "stale-cache"
)

// SuccessEnvelope wraps every successful payload. Source is set on
// cache-backed routes; Error carries the advisory upstream failure when the
// payload was served stale.
type SuccessEnvelope struct {
	Data   any    `json:"data"`
	Source Source `json:"source,omitempty"`
	Error  string `json:"error,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
