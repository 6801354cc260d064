package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"time"
	"unicode/utf8"

	"vapor-http-bridge/internal/config"
	"vapor-http-bridge/internal/event"
	"vapor-http-bridge/internal/runtime"
	"vapor-http-bridge/internal/worker"

	"github.com/aws/aws-lambda-go/events"
	awslambda "github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"
)

var bridge *runtime.Bridge

func init() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}
	cfg = config.AdaptConfigForLambda(cfg)

	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logrus.SetLevel(level)
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})

	normalizer := event.NewNormalizer()
	normalizer.ScriptFilename = cfg.Worker.ScriptFilename

	httpWorker := worker.NewHTTPWorker(
		cfg.Worker.UpstreamURL,
		time.Duration(cfg.Worker.TimeoutSeconds)*time.Second,
		logrus.StandardLogger(),
	)

	bridge = runtime.NewBridge(httpWorker, normalizer, logrus.StandardLogger())
	if err := bridge.Boot(context.Background(), cfg.Worker.BasePath); err != nil {
		panic("Failed to boot worker: " + err.Error())
	}
}

func handler(ctx context.Context, raw json.RawMessage) (events.APIGatewayProxyResponse, error) {
	var trigger event.TriggerEvent
	if err := json.Unmarshal(raw, &trigger); err != nil {
		logrus.WithError(err).Error("Failed to decode trigger event")
		return failureResponse(), nil
	}

	resp := bridge.Handle(ctx, &trigger)
	if resp == nil {
		// Empty slot after handle means the worker faulted; the fault was
		// already reported, so synthesize the platform-level failure here.
		return failureResponse(), nil
	}

	out := events.APIGatewayProxyResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
	}
	if utf8.Valid(resp.Body) {
		out.Body = string(resp.Body)
	} else {
		out.Body = base64.StdEncoding.EncodeToString(resp.Body)
		out.IsBase64Encoded = true
	}
	return out, nil
}

func failureResponse() events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: 500,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       `{"error": "Internal server error"}`,
	}
}

func main() {
	awslambda.Start(handler)
}
