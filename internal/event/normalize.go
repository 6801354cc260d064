package event

import (
	"encoding/base64"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"vapor-http-bridge/pkg/canonical"
)

// Fixed server variable values the trigger never influences.
const (
	gatewayInterface = "CGI/1.1"
	loopbackAddr     = "127.0.0.1"
	serverSoftware   = "vapor"
	defaultProtocol  = "HTTP/1.1"
	defaultPort      = "80"
)

// SourceIPHeader is the synthetic header injected when a trigger shape
// discloses the real client IP, so downstream consumers see it uniformly.
const SourceIPHeader = "x-vapor-source-ip"

// Normalizer converts a TriggerEvent into a canonical request. It is a total
// function: missing or malformed optional fields degrade to documented
// defaults rather than erroring, since the platform contract guarantees a
// well-formed event.
type Normalizer struct {
	// Clock supplies the wall-clock instant for REQUEST_TIME and
	// REQUEST_TIME_FLOAT. Injectable so tests can hold time fixed.
	Clock func() time.Time

	// ScriptFilename, when non-empty, is mirrored into SCRIPT_FILENAME.
	ScriptFilename string
}

// NewNormalizer returns a Normalizer using the real clock.
func NewNormalizer() *Normalizer {
	return &Normalizer{Clock: time.Now}
}

// Normalize builds the canonical request for one trigger event. The only
// non-deterministic outputs are the two REQUEST_TIME variables.
func (n *Normalizer) Normalize(e *TriggerEvent) *canonical.Request {
	shape := e.Shape()
	method := e.Method()
	path := e.ResolvedPath()
	query := buildQueryString(e, shape)
	headers := extractHeaders(e, shape)
	body := extractBody(e)

	uri := path
	if query != "" {
		uri = path + "?" + query
	}

	now := time.Now()
	if n.Clock != nil {
		now = n.Clock()
	}

	port := defaultPort
	if forwarded, ok := headers["x-forwarded-port"]; ok && forwarded != "" {
		if _, err := strconv.Atoi(forwarded); err == nil {
			port = forwarded
		}
	}

	serverName := "localhost"
	if host, ok := headers["host"]; ok && host != "" {
		serverName = host
	}

	protocol := e.Protocol()
	if protocol == "" {
		protocol = defaultProtocol
	}

	vars := map[string]string{
		"GATEWAY_INTERFACE":  gatewayInterface,
		"PATH_INFO":          path,
		"QUERY_STRING":       query,
		"REMOTE_ADDR":        loopbackAddr,
		"REMOTE_PORT":        port,
		"REQUEST_METHOD":     method,
		"REQUEST_URI":        uri,
		"REQUEST_TIME":       strconv.FormatInt(now.Unix(), 10),
		"REQUEST_TIME_FLOAT": strconv.FormatFloat(float64(now.UnixNano())/1e9, 'f', 6, 64),
		"SERVER_ADDR":        loopbackAddr,
		"SERVER_NAME":        serverName,
		"SERVER_PORT":        port,
		"SERVER_PROTOCOL":    protocol,
		"SERVER_SOFTWARE":    serverSoftware,
	}
	if n.ScriptFilename != "" {
		vars["SCRIPT_FILENAME"] = n.ScriptFilename
	}

	// A POST without an explicit content type is assumed to be a form
	// submission; mirror whatever content type ends up present.
	if _, ok := headers["content-type"]; !ok && method == "POST" {
		headers["content-type"] = "application/x-www-form-urlencoded"
	}
	if contentType, ok := headers["content-type"]; ok {
		vars["CONTENT_TYPE"] = contentType
	}

	// TRACE requests must not carry a body, so the length is left unset.
	if _, ok := headers["content-length"]; !ok && method != "TRACE" {
		headers["content-length"] = strconv.Itoa(len(body))
	}
	if contentLength, ok := headers["content-length"]; ok {
		vars["CONTENT_LENGTH"] = contentLength
	}

	if ip := e.SourceIP(); ip != "" {
		headers[SourceIPHeader] = ip
	}

	for name, value := range headers {
		vars[serverVariableName(name)] = value
	}

	return &canonical.Request{
		ServerVariables: vars,
		Headers:         headers,
		Body:            body,
	}
}

// buildQueryString reconstructs the raw query string. Go maps do not preserve
// the JSON object order of the source event, so keys are emitted in sorted
// order to keep the result deterministic.
func buildQueryString(e *TriggerEvent, shape Shape) string {
	values := url.Values{}

	switch {
	case shape == ShapeStreamlinedGateway:
		// Repeated parameters arrive comma-joined in a single-valued map.
		for _, key := range sortedKeys(e.QueryStringParameters) {
			parts := strings.Split(e.QueryStringParameters[key], ",")
			if len(parts) == 1 {
				values.Add(key, parts[0])
				continue
			}
			key = strings.TrimSuffix(key, "[]")
			for _, part := range parts {
				values.Add(key, part)
			}
		}

	case e.MultiValueQueryStringParameters == nil:
		for _, key := range sortedKeys(e.QueryStringParameters) {
			values.Add(key, e.QueryStringParameters[key])
		}

	default:
		decode := shape == ShapeLoadBalancer
		for _, key := range sortedKeys(e.MultiValueQueryStringParameters) {
			params := e.MultiValueQueryStringParameters[key]
			if decode {
				key = urlDecode(key)
			}
			if len(params) == 1 {
				values.Add(key, decodeIf(decode, params[0]))
				continue
			}
			key = strings.TrimSuffix(key, "[]")
			for _, param := range params {
				values.Add(key, decodeIf(decode, param))
			}
		}
	}

	return values.Encode()
}

// extractHeaders flattens the event's header maps to lowercase keys. When a
// multi-value map is present only the last value of each header survives.
// Load balancer events deliver keys and values URL-encoded.
func extractHeaders(e *TriggerEvent, shape Shape) map[string]string {
	decode := shape == ShapeLoadBalancer
	headers := make(map[string]string)

	if e.MultiValueHeaders != nil {
		for name, headerValues := range e.MultiValueHeaders {
			if len(headerValues) == 0 {
				continue
			}
			name = decodeIf(decode, name)
			headers[strings.ToLower(name)] = decodeIf(decode, headerValues[len(headerValues)-1])
		}
		return headers
	}

	for name, value := range e.Headers {
		name = decodeIf(decode, name)
		headers[strings.ToLower(name)] = decodeIf(decode, value)
	}
	return headers
}

// extractBody returns the raw body bytes, base64-decoded when the event says
// so. A malformed base64 payload degrades to the raw string.
func extractBody(e *TriggerEvent) []byte {
	if !e.IsBase64Encoded {
		return []byte(e.Body)
	}
	decoded, err := base64.StdEncoding.DecodeString(e.Body)
	if err != nil {
		return []byte(e.Body)
	}
	return decoded
}

// serverVariableName maps a lowercase header name to its CGI variable form,
// e.g. "x-forwarded-port" -> "HTTP_X_FORWARDED_PORT".
func serverVariableName(header string) string {
	return "HTTP_" + strings.ReplaceAll(strings.ToUpper(header), "-", "_")
}

func urlDecode(s string) string {
	decoded, err := url.QueryUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}

func decodeIf(decode bool, s string) string {
	if !decode {
		return s
	}
	return urlDecode(s)
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
