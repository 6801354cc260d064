package runtime

import (
	"context"
	"sync"
	"time"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"vapor-http-bridge/internal/event"
	"vapor-http-bridge/pkg/canonical"
)

// Worker is the application collaborator the bridge drives. Execute must
// either call capture exactly once with the response or return a non-nil
// error describing the unrecoverable fault; doing neither leaves the
// invocation with no result.
type Worker interface {
	Boot(ctx context.Context, basePath string) error
	Execute(ctx context.Context, req *canonical.Request, inv *canonical.Invocation, capture func(*canonical.Response)) error
	Terminate(ctx context.Context) error
}

// Bridge orchestrates one invocation at a time: it normalizes the trigger
// event, hands the canonical request to the worker, and drains the response
// slot the worker populated. It owns the worker handle for the lifetime of
// the process.
type Bridge struct {
	mu         sync.Mutex
	worker     Worker
	booted     bool
	normalizer *event.Normalizer
	slot       *ResponseSlot
	logger     *logrus.Logger
}

// NewBridge creates an unbooted bridge around the given worker collaborator.
func NewBridge(worker Worker, normalizer *event.Normalizer, logger *logrus.Logger) *Bridge {
	if logger == nil {
		logger = logrus.New()
	}
	if normalizer == nil {
		normalizer = event.NewNormalizer()
	}
	return &Bridge{
		worker:     worker,
		normalizer: normalizer,
		slot:       NewResponseSlot(logger),
		logger:     logger,
	}
}

// Boot runs the worker's boot sequence. Calling Boot twice without an
// intervening Terminate is a misuse the worker itself defines behavior for;
// the bridge does not guard against it.
func (b *Bridge) Boot(ctx context.Context, basePath string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.worker == nil {
		return nil
	}
	if err := b.worker.Boot(ctx, basePath); err != nil {
		return err
	}
	b.booted = true
	return nil
}

// Handle runs one invocation to completion and returns the captured
// response. It returns nil without erroring when the bridge was never booted
// or was already terminated, so the invocation driver always gets a value
// back to serialize.
func (b *Bridge) Handle(ctx context.Context, e *event.TriggerEvent) *canonical.Response {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.booted || b.worker == nil {
		b.logger.Warn("Invocation received before boot; returning empty response")
		return nil
	}

	if !b.slot.Empty() {
		// Stale response from a previous invocation means the drain
		// discipline was broken somewhere; discard it rather than hand it
		// to the wrong caller.
		b.logger.Error("Response slot not empty at invocation start; discarding stale response")
		b.slot.Drain()
	}

	req := b.normalizer.Normalize(e)
	inv := &canonical.Invocation{
		ID:         uuid.New().String(),
		ReceivedAt: time.Now(),
	}
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		inv.RequestID = lc.AwsRequestID
	}

	if err := b.worker.Execute(ctx, req, inv, b.slot.Put); err != nil {
		// The fault is reported here and the slot is left alone: an empty
		// slot after Handle is the driver's signal of a failed invocation.
		b.logger.WithFields(logrus.Fields{
			"invocation_id": inv.ID,
			"request_id":    inv.RequestID,
			"method":        req.Method(),
			"uri":           req.URI(),
			"error":         err.Error(),
		}).Error("Worker execution failed")
		return nil
	}

	resp := b.slot.Drain()
	if resp == nil {
		b.logger.WithFields(logrus.Fields{
			"invocation_id": inv.ID,
			"method":        req.Method(),
			"uri":           req.URI(),
		}).Error("Worker returned without capturing a response")
	}
	return resp
}

// Terminate runs the worker's termination sequence and releases the handle.
// It is a no-op when the bridge was never booted or already terminated.
func (b *Bridge) Terminate(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.booted || b.worker == nil {
		return nil
	}
	err := b.worker.Terminate(ctx)
	b.booted = false
	return err
}

// CurrentWorker returns the live worker handle, or nil before boot and after
// terminate. Intended for health and diagnostic callers only.
func (b *Bridge) CurrentWorker() Worker {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.booted {
		return nil
	}
	return b.worker
}
