package goOTP

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/MrEthical07/goOTP/internal/rate"
	"github.com/MrEthical07/goOTP/internal/stores"
)

// Verify describes the verify operation and its observable behavior.
//
// Verify may return an error when input validation, dependency calls, or security checks fail.
// Verify does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Verify(ctx context.Context, identity, code string) (VerifyResult, error) {
	if err := e.ready(); err != nil {
		return VerifyResult{}, err
	}
	if e.metrics != nil && e.metrics.LatencyEnabled() {
		start := time.Now()
		defer func() {
			e.metrics.Observe(MetricVerifyLatency, time.Since(start))
		}()
	}
	tenantID := tenantIDFromContext(ctx)

	identity, err := e.normalizeIdentity(identity)
	if err != nil {
		e.metricInc(MetricVerifyFailure)
		e.emitAudit(ctx, auditEventVerifyFailure, false, "", tenantID, ErrInvalidIdentity, nil)
		return VerifyResult{}, ErrInvalidIdentity
	}
	if !e.validCodeFormat(code) {
		e.metricInc(MetricVerifyFailure)
		e.emitAudit(ctx, auditEventVerifyFailure, false, identity, tenantID, ErrInvalidCode, func() map[string]string {
			return map[string]string{
				"reason": "code_format",
			}
		})
		return VerifyResult{}, ErrInvalidCode
	}

	if e.limiter != nil {
		if err := e.limiter.CheckVerify(ctx, tenantID, identity, clientIPFromContext(ctx)); err != nil {
			if errors.Is(err, rate.ErrRateLimited) {
				e.metricInc(MetricVerifyRateLimited)
				e.emitAudit(ctx, auditEventVerifyRateLimited, false, identity, tenantID, ErrVerifyRateLimited, nil)
				return VerifyResult{}, ErrVerifyRateLimited
			}
			e.metricInc(MetricVerifyFailure)
			e.emitAudit(ctx, auditEventVerifyFailure, false, identity, tenantID, ErrStoreUnavailable, func() map[string]string {
				return map[string]string{
					"reason": "limiter_unavailable",
				}
			})
			return VerifyResult{}, ErrStoreUnavailable
		}
	}

	key := storeKey(tenantID, identity)
	state, err := e.store.BeginAttempt(ctx, key, e.now(), e.config.Code.MaxAttempts)
	if err != nil {
		switch {
		case errors.Is(err, stores.ErrRecordNotFound):
			// Equalized with the mismatch path so callers cannot probe for pending codes.
			e.hasher.CompareDummy(code)
			e.metricInc(MetricVerifyNotFound)
			res := VerifyResult{Outcome: OutcomeNotFound, Reason: "no_pending_code"}
			e.emitAudit(ctx, auditEventVerifyNotFound, false, identity, tenantID, nil, nil)
			return res, nil
		case errors.Is(err, stores.ErrRecordExpired):
			e.hasher.CompareDummy(code)
			e.metricInc(MetricVerifyExpired)
			res := VerifyResult{Outcome: OutcomeExpired, Reason: "code_expired"}
			e.emitAudit(ctx, auditEventVerifyExpired, false, identity, tenantID, nil, nil)
			return res, nil
		case errors.Is(err, stores.ErrRecordExhausted):
			e.metricInc(MetricVerifyAttemptsExceeded)
			res := VerifyResult{Outcome: OutcomeAttemptsExceeded, Reason: "attempt_budget_exhausted"}
			e.emitAudit(ctx, auditEventVerifyAttemptsBlocked, false, identity, tenantID, nil, nil)
			return res, nil
		default:
			e.metricInc(MetricVerifyFailure)
			e.emitAudit(ctx, auditEventVerifyFailure, false, identity, tenantID, ErrStoreUnavailable, func() map[string]string {
				return map[string]string{
					"reason": "store_attempt_failed",
				}
			})
			return VerifyResult{}, ErrStoreUnavailable
		}
	}

	if e.hasher.Compare(state.CodeHash, code) {
		if err := e.store.Consume(ctx, key); err != nil {
			e.metricInc(MetricVerifyFailure)
			e.emitAudit(ctx, auditEventVerifyFailure, false, identity, tenantID, ErrStoreUnavailable, func() map[string]string {
				return map[string]string{
					"reason": "store_consume_failed",
				}
			})
			return VerifyResult{}, ErrStoreUnavailable
		}
		e.metricInc(MetricVerifyValid)
		e.emitAudit(ctx, auditEventVerifyValid, true, identity, tenantID, nil, nil)
		return VerifyResult{Outcome: OutcomeValid}, nil
	}

	// A mismatch that spends the final attempt still reports Invalid; the
	// exhausted budget is detected on the next attempt's entry check.
	e.metricInc(MetricVerifyInvalid)
	e.emitAudit(ctx, auditEventVerifyInvalid, false, identity, tenantID, nil, func() map[string]string {
		return map[string]string{
			"attempts_remaining": strconv.Itoa(e.config.Code.MaxAttempts - state.Attempts),
		}
	})
	return VerifyResult{Outcome: OutcomeInvalid, Reason: "code_mismatch"}, nil
}
