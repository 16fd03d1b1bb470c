package goOTP

import (
	"context"
	"errors"

	"github.com/MrEthical07/goOTP/internal/stores"
)

// Cancel describes the cancel operation and its observable behavior.
//
// Cancel may return an error when input validation, dependency calls, or security checks fail.
// Cancel does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Cancel(ctx context.Context, identity string) (bool, error) {
	if err := e.ready(); err != nil {
		return false, err
	}
	tenantID := tenantIDFromContext(ctx)

	identity, err := e.normalizeIdentity(identity)
	if err != nil {
		return false, ErrInvalidIdentity
	}

	removed, err := e.store.Delete(ctx, storeKey(tenantID, identity))
	if err != nil {
		e.emitAudit(ctx, auditEventCancel, false, identity, tenantID, ErrStoreUnavailable, nil)
		return false, ErrStoreUnavailable
	}
	if removed {
		e.metricInc(MetricCancel)
	}
	e.emitAudit(ctx, auditEventCancel, removed, identity, tenantID, nil, func() map[string]string {
		if removed {
			return map[string]string{"removed": "true"}
		}
		return map[string]string{"removed": "false"}
	})
	return removed, nil
}

// Inspect describes the inspect operation and its observable behavior.
//
// Inspect may return an error when input validation, dependency calls, or security checks fail.
// Inspect does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Inspect(ctx context.Context, identity string) (RecordMetadata, bool, error) {
	if err := e.ready(); err != nil {
		return RecordMetadata{}, false, err
	}
	tenantID := tenantIDFromContext(ctx)

	identity, err := e.normalizeIdentity(identity)
	if err != nil {
		return RecordMetadata{}, false, ErrInvalidIdentity
	}

	rec, err := e.store.Metadata(ctx, storeKey(tenantID, identity), e.now())
	if err != nil {
		switch {
		case errors.Is(err, stores.ErrRecordNotFound), errors.Is(err, stores.ErrRecordExpired):
			return RecordMetadata{}, false, nil
		default:
			return RecordMetadata{}, false, ErrStoreUnavailable
		}
	}

	remaining := e.config.Code.MaxAttempts - rec.Attempts
	if remaining < 0 {
		remaining = 0
	}
	// The hash never leaves the store boundary.
	meta := RecordMetadata{
		Identity:          identity,
		CreatedAt:         rec.CreatedAt,
		ExpiresAt:         rec.ExpiresAt,
		LastAttemptAt:     rec.LastAttemptAt,
		Attempts:          rec.Attempts,
		AttemptsRemaining: remaining,
	}
	return meta, true, nil
}
