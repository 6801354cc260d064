package event

import (
	"encoding/json"
	"testing"
)

func TestTriggerEvent_Shape(t *testing.T) {
	tests := []struct {
		name  string
		event TriggerEvent
		want  Shape
	}{
		{
			name:  "legacy gateway",
			event: TriggerEvent{HTTPMethod: "GET", Path: "/users"},
			want:  ShapeLegacyGateway,
		},
		{
			name: "streamlined gateway",
			event: TriggerEvent{
				Version:        "2.0",
				RequestContext: RequestContext{HTTP: &HTTPContext{Method: "GET", Path: "/users"}},
			},
			want: ShapeStreamlinedGateway,
		},
		{
			name: "load balancer",
			event: TriggerEvent{
				HTTPMethod:     "GET",
				Path:           "/users",
				RequestContext: RequestContext{ELB: &ELBContext{TargetGroupArn: "arn:aws:elasticloadbalancing:..."}},
			},
			want: ShapeLoadBalancer,
		},
		{
			name:  "empty event defaults to legacy",
			event: TriggerEvent{},
			want:  ShapeLegacyGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.Shape(); got != tt.want {
				t.Errorf("Shape() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTriggerEvent_Method(t *testing.T) {
	tests := []struct {
		name  string
		event TriggerEvent
		want  string
	}{
		{
			name:  "top-level method wins",
			event: TriggerEvent{HTTPMethod: "POST", RequestContext: RequestContext{HTTP: &HTTPContext{Method: "GET"}}},
			want:  "POST",
		},
		{
			name:  "streamlined context method",
			event: TriggerEvent{RequestContext: RequestContext{HTTP: &HTTPContext{Method: "PUT"}}},
			want:  "PUT",
		},
		{
			name:  "no method",
			event: TriggerEvent{},
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.Method(); got != tt.want {
				t.Errorf("Method() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTriggerEvent_ResolvedPath(t *testing.T) {
	tests := []struct {
		name  string
		event TriggerEvent
		want  string
	}{
		{
			name:  "streamlined context path preferred",
			event: TriggerEvent{Path: "/legacy", RequestContext: RequestContext{HTTP: &HTTPContext{Path: "/v2"}}},
			want:  "/v2",
		},
		{
			name:  "top-level path fallback",
			event: TriggerEvent{Path: "/legacy"},
			want:  "/legacy",
		},
		{
			name:  "default root",
			event: TriggerEvent{},
			want:  "/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.ResolvedPath(); got != tt.want {
				t.Errorf("ResolvedPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTriggerEvent_SourceIP(t *testing.T) {
	tests := []struct {
		name  string
		event TriggerEvent
		want  string
	}{
		{
			name:  "legacy identity",
			event: TriggerEvent{RequestContext: RequestContext{Identity: &IdentityContext{SourceIP: "1.2.3.4"}}},
			want:  "1.2.3.4",
		},
		{
			name:  "streamlined context",
			event: TriggerEvent{RequestContext: RequestContext{HTTP: &HTTPContext{SourceIP: "1.2.3.4"}}},
			want:  "1.2.3.4",
		},
		{
			name: "streamlined wins when both present",
			event: TriggerEvent{RequestContext: RequestContext{
				Identity: &IdentityContext{SourceIP: "5.6.7.8"},
				HTTP:     &HTTPContext{SourceIP: "1.2.3.4"},
			}},
			want: "1.2.3.4",
		},
		{
			name:  "absent",
			event: TriggerEvent{},
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.SourceIP(); got != tt.want {
				t.Errorf("SourceIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTriggerEvent_DecodeAllShapes(t *testing.T) {
	tests := []struct {
		name      string
		payload   string
		wantShape Shape
		wantPath  string
	}{
		{
			name: "legacy gateway payload",
			payload: `{
				"httpMethod": "GET",
				"path": "/users",
				"multiValueHeaders": {"Accept": ["text/html"]},
				"multiValueQueryStringParameters": {"page": ["2"]}
			}`,
			wantShape: ShapeLegacyGateway,
			wantPath:  "/users",
		},
		{
			name: "streamlined gateway payload",
			payload: `{
				"version": "2.0",
				"headers": {"accept": "text/html"},
				"queryStringParameters": {"page": "2"},
				"requestContext": {"http": {"method": "GET", "path": "/users", "protocol": "HTTP/2", "sourceIp": "1.2.3.4"}}
			}`,
			wantShape: ShapeStreamlinedGateway,
			wantPath:  "/users",
		},
		{
			name: "load balancer payload",
			payload: `{
				"httpMethod": "GET",
				"path": "/users",
				"requestContext": {"elb": {"targetGroupArn": "arn:aws:elasticloadbalancing:..."}}
			}`,
			wantShape: ShapeLoadBalancer,
			wantPath:  "/users",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e TriggerEvent
			if err := json.Unmarshal([]byte(tt.payload), &e); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if got := e.Shape(); got != tt.wantShape {
				t.Errorf("Shape() = %v, want %v", got, tt.wantShape)
			}
			if got := e.ResolvedPath(); got != tt.wantPath {
				t.Errorf("ResolvedPath() = %q, want %q", got, tt.wantPath)
			}
		})
	}
}
