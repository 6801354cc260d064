package canonical

import "time"

// Request is the normalized representation of a trigger event. Server
// variables follow CGI naming; header keys are always lowercase and unique.
type Request struct {
	ServerVariables map[string]string `json:"server_variables"`
	Headers         map[string]string `json:"headers"`
	Body            []byte            `json:"body"`
}

// Response is the status/headers/body tuple captured from the worker.
type Response struct {
	StatusCode int               `json:"status_code"`
	Headers    map[string]string `json:"headers"`
	Body       []byte            `json:"body"`
}

// Invocation carries per-invocation metadata handed to the worker alongside
// the request.
type Invocation struct {
	ID         string    `json:"id"`
	RequestID  string    `json:"request_id,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
}

// Method returns the resolved request method, or the empty string when the
// request carries no REQUEST_METHOD variable.
func (r *Request) Method() string {
	if r == nil {
		return ""
	}
	return r.ServerVariables["REQUEST_METHOD"]
}

// URI returns the full request URI (path plus query string).
func (r *Request) URI() string {
	if r == nil {
		return ""
	}
	return r.ServerVariables["REQUEST_URI"]
}
