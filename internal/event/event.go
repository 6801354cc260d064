package event

// Shape identifies which trigger integration produced an event. The three
// payload layouts differ in query/header multiplicity and encoding rules, so
// every extraction branch switches on an explicit Shape instead of probing
// fields ad hoc.
type Shape int

const (
	// ShapeLegacyGateway is the original REST-style gateway payload ("v1").
	ShapeLegacyGateway Shape = iota
	// ShapeStreamlinedGateway is the newer HTTP gateway payload ("v2") with
	// single-valued, comma-joined maps.
	ShapeStreamlinedGateway
	// ShapeLoadBalancer is the load balancer target-group payload; its
	// header and query keys and values arrive URL-encoded.
	ShapeLoadBalancer
)

func (s Shape) String() string {
	switch s {
	case ShapeStreamlinedGateway:
		return "streamlined-gateway"
	case ShapeLoadBalancer:
		return "load-balancer"
	default:
		return "legacy-gateway"
	}
}

// TriggerEvent is a superset of the three trigger payload layouts. A single
// invocation delivers one JSON document whose shape is only known after
// decoding, so the fields of all three layouts are declared side by side and
// Shape() classifies the result.
type TriggerEvent struct {
	Version                         string              `json:"version,omitempty"`
	HTTPMethod                      string              `json:"httpMethod,omitempty"`
	Path                            string              `json:"path,omitempty"`
	Headers                         map[string]string   `json:"headers,omitempty"`
	MultiValueHeaders               map[string][]string `json:"multiValueHeaders,omitempty"`
	QueryStringParameters           map[string]string   `json:"queryStringParameters,omitempty"`
	MultiValueQueryStringParameters map[string][]string `json:"multiValueQueryStringParameters,omitempty"`
	RequestContext                  RequestContext      `json:"requestContext,omitempty"`
	Body                            string              `json:"body,omitempty"`
	IsBase64Encoded                 bool                `json:"isBase64Encoded,omitempty"`
}

// RequestContext carries the shape-discriminating context blocks. ELB is a
// pure presence marker; its contents are never consulted.
type RequestContext struct {
	Protocol string           `json:"protocol,omitempty"`
	HTTP     *HTTPContext     `json:"http,omitempty"`
	Identity *IdentityContext `json:"identity,omitempty"`
	ELB      *ELBContext      `json:"elb,omitempty"`
}

// HTTPContext is the streamlined gateway's request description.
type HTTPContext struct {
	Method   string `json:"method,omitempty"`
	Path     string `json:"path,omitempty"`
	Protocol string `json:"protocol,omitempty"`
	SourceIP string `json:"sourceIp,omitempty"`
}

// IdentityContext is the legacy gateway's caller identity block.
type IdentityContext struct {
	SourceIP string `json:"sourceIp,omitempty"`
}

// ELBContext identifies the load balancer target group invoking the function.
type ELBContext struct {
	TargetGroupArn string `json:"targetGroupArn,omitempty"`
}

// Shape classifies the event. Load balancer events carry requestContext.elb
// and no version field; streamlined gateway events declare version 2.0;
// everything else is treated as the legacy gateway layout.
func (e *TriggerEvent) Shape() Shape {
	if e.RequestContext.ELB != nil {
		return ShapeLoadBalancer
	}
	if e.Version == "2.0" {
		return ShapeStreamlinedGateway
	}
	return ShapeLegacyGateway
}

// Method resolves the request method across shapes, preferring the top-level
// field over the streamlined context.
func (e *TriggerEvent) Method() string {
	if e.HTTPMethod != "" {
		return e.HTTPMethod
	}
	if e.RequestContext.HTTP != nil {
		return e.RequestContext.HTTP.Method
	}
	return ""
}

// ResolvedPath resolves the request path across shapes, defaulting to "/".
func (e *TriggerEvent) ResolvedPath() string {
	if e.RequestContext.HTTP != nil && e.RequestContext.HTTP.Path != "" {
		return e.RequestContext.HTTP.Path
	}
	if e.Path != "" {
		return e.Path
	}
	return "/"
}

// SourceIP returns the client IP when either shape's identity block carries
// one. The streamlined context wins when both are present.
func (e *TriggerEvent) SourceIP() string {
	ip := ""
	if e.RequestContext.Identity != nil && e.RequestContext.Identity.SourceIP != "" {
		ip = e.RequestContext.Identity.SourceIP
	}
	if e.RequestContext.HTTP != nil && e.RequestContext.HTTP.SourceIP != "" {
		ip = e.RequestContext.HTTP.SourceIP
	}
	return ip
}

// Protocol returns the HTTP protocol version advertised by the trigger,
// or the empty string when none is present.
func (e *TriggerEvent) Protocol() string {
	if e.RequestContext.Protocol != "" {
		return e.RequestContext.Protocol
	}
	if e.RequestContext.HTTP != nil {
		return e.RequestContext.HTTP.Protocol
	}
	return ""
}
