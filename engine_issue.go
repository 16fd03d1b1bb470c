package goOTP

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/MrEthical07/goOTP/internal"
	"github.com/MrEthical07/goOTP/internal/rate"
	"github.com/MrEthical07/goOTP/internal/stores"
)

// GenerateCode describes the generatecode operation and its observable behavior.
//
// GenerateCode may return an error when input validation, dependency calls, or security checks fail.
// GenerateCode does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) GenerateCode() (string, error) {
	if e == nil {
		return "", ErrEngineNotReady
	}
	code, err := internal.NewCode(e.config.Code.Length)
	if err != nil {
		return "", errors.Join(ErrGenerationFailed, err)
	}
	return code, nil
}

// Issue describes the issue operation and its observable behavior.
//
// Issue may return an error when input validation, dependency calls, or security checks fail.
// Issue does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Issue(ctx context.Context, identity string) (string, error) {
	return e.IssueWithTTL(ctx, identity, e.config.Code.TTL)
}

// IssueWithTTL describes the issuewithttl operation and its observable behavior.
//
// IssueWithTTL may return an error when input validation, dependency calls, or security checks fail.
// IssueWithTTL does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) IssueWithTTL(ctx context.Context, identity string, ttl time.Duration) (string, error) {
	if err := e.ready(); err != nil {
		return "", err
	}
	tenantID := tenantIDFromContext(ctx)

	identity, err := e.normalizeIdentity(identity)
	if err != nil {
		e.metricInc(MetricIssueFailure)
		e.emitAudit(ctx, auditEventIssueFailure, false, "", tenantID, ErrInvalidIdentity, nil)
		return "", ErrInvalidIdentity
	}
	if ttl <= 0 {
		e.metricInc(MetricIssueFailure)
		e.emitAudit(ctx, auditEventIssueFailure, false, identity, tenantID, ErrInvalidTTL, nil)
		return "", ErrInvalidTTL
	}

	if e.limiter != nil {
		if err := e.limiter.CheckIssue(ctx, tenantID, identity, clientIPFromContext(ctx)); err != nil {
			if errors.Is(err, rate.ErrRateLimited) {
				e.metricInc(MetricIssueRateLimited)
				e.emitAudit(ctx, auditEventIssueRateLimited, false, identity, tenantID, ErrIssueRateLimited, nil)
				return "", ErrIssueRateLimited
			}
			e.metricInc(MetricIssueFailure)
			e.emitAudit(ctx, auditEventIssueFailure, false, identity, tenantID, ErrStoreUnavailable, func() map[string]string {
				return map[string]string{
					"reason": "limiter_unavailable",
				}
			})
			return "", ErrStoreUnavailable
		}
	}

	code, err := e.GenerateCode()
	if err != nil {
		e.metricInc(MetricIssueFailure)
		e.emitAudit(ctx, auditEventIssueFailure, false, identity, tenantID, err, func() map[string]string {
			return map[string]string{
				"reason": "code_generation",
			}
		})
		return "", err
	}

	// Hashing runs before any store interaction so no lock is held across it.
	hash, err := e.hasher.Hash(code)
	if err != nil {
		e.metricInc(MetricIssueFailure)
		e.emitAudit(ctx, auditEventIssueFailure, false, identity, tenantID, err, func() map[string]string {
			return map[string]string{
				"reason": "hash_failed",
			}
		})
		return "", err
	}

	now := e.now()
	rec := &stores.Record{
		CodeHash:  hash,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
		Attempts:  0,
	}
	// Put replaces any pending record for the identity, which voids its older code.
	if err := e.store.Put(ctx, storeKey(tenantID, identity), rec, ttl); err != nil {
		e.metricInc(MetricIssueFailure)
		e.emitAudit(ctx, auditEventIssueFailure, false, identity, tenantID, ErrStoreUnavailable, func() map[string]string {
			return map[string]string{
				"reason": "store_put_failed",
			}
		})
		return "", ErrStoreUnavailable
	}

	e.metricInc(MetricIssueSuccess)
	e.emitAudit(ctx, auditEventIssueSuccess, true, identity, tenantID, nil, func() map[string]string {
		return map[string]string{
			"ttl": ttl.String(),
		}
	})

	return code, nil
}

func (e *Engine) normalizeIdentity(identity string) (string, error) {
	identity = strings.ToLower(strings.TrimSpace(identity))
	validate := e.validateIdentity
	if validate == nil {
		validate = defaultIdentityValidator
	}
	if err := validate(identity); err != nil {
		return "", ErrInvalidIdentity
	}
	return identity, nil
}

func (e *Engine) validCodeFormat(code string) bool {
	if len(code) != e.config.Code.Length {
		return false
	}
	return isNumericString(code)
}

func defaultIdentityValidator(identity string) error {
	if identity == "" || len(identity) > maxIdentityLength {
		return ErrInvalidIdentity
	}
	for i := 0; i < len(identity); i++ {
		c := identity[i]
		if c < 0x21 || c > 0x7e {
			return ErrInvalidIdentity
		}
	}
	return nil
}

func isNumericString(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func storeKey(tenantID, identity string) string {
	return tenantID + ":" + identity
}

const maxIdentityLength = 320
