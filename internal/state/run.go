package state

import (
	"context"
	"time"

	"storefront-client/internal/util"

	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// Run executes one tracked operation: pending, a single call, then fulfilled
// with apply merging the payload, or rejected with the call's error kept
// verbatim. A response that lost the race against a newer invocation or a
// reset is returned with ErrSuperseded and not applied.
func Run[T any](ctx context.Context, t *Tracker, op string, call func(context.Context) (T, error), apply func(T)) (T, error) {
	return RunSettled(ctx, t, op, call, apply, nil)
}

// RunSettled is Run with a reject hook that runs under the tracker lock when
// the call fails, for containers whose state changes on failure too.
func RunSettled[T any](ctx context.Context, t *Tracker, op string, call func(context.Context) (T, error), apply func(T), reject func(error)) (T, error) {
	ctx, span := util.StartSpan(ctx, t.container+"."+op)
	defer span.End()

	start := time.Now()
	seq := t.Begin(op)

	result, err := call(ctx)

	var applyFn func()
	switch {
	case err == nil && apply != nil:
		applyFn = func() { apply(result) }
	case err != nil && reject != nil:
		applyFn = func() { reject(err) }
	}

	if !t.Settle(op, seq, result, err, applyFn) {
		util.OperationsSupersededTotal.WithLabelValues(t.container, op).Inc()
		util.Named("state").Debug("Discarding stale response",
			zap.String("container", t.container),
			zap.String("operation", op))
		return result, ErrSuperseded
	}

	outcome := string(StatusFulfilled)
	if err != nil {
		outcome = string(StatusRejected)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		util.Named("state").Warn("Operation rejected",
			zap.String("container", t.container),
			zap.String("operation", op),
			zap.Error(err))
	}
	util.OperationDuration.WithLabelValues(t.container, op, outcome).Observe(time.Since(start).Seconds())

	return result, err
}
