package goOTP

import (
	"context"
	"errors"
)

const (
	auditEventIssueSuccess          = "code_issue_success"
	auditEventIssueFailure          = "code_issue_failure"
	auditEventIssueRateLimited      = "code_issue_rate_limited"
	auditEventVerifyValid           = "code_verify_valid"
	auditEventVerifyNotFound        = "code_verify_not_found"
	auditEventVerifyExpired         = "code_verify_expired"
	auditEventVerifyAttemptsBlocked = "code_verify_attempts_exceeded"
	auditEventVerifyInvalid         = "code_verify_invalid"
	auditEventVerifyRateLimited     = "code_verify_rate_limited"
	auditEventVerifyFailure         = "code_verify_failure"
	auditEventCancel                = "code_cancel"
	auditEventSweepCompleted        = "sweep_completed"
)

// AuditErrorCode defines a public type used by goOTP APIs.
//
// AuditErrorCode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditErrorCode string

const (
	auditErrInvalidIdentity AuditErrorCode = "invalid_identity"
	auditErrInvalidCode     AuditErrorCode = "invalid_code"
	auditErrInvalidTTL      AuditErrorCode = "invalid_ttl"
	auditErrRateLimited     AuditErrorCode = "rate_limited"
	auditErrUnavailable     AuditErrorCode = "backend_unavailable"
	auditErrGeneration      AuditErrorCode = "generation_failed"
	auditErrNotReady        AuditErrorCode = "engine_not_ready"
	auditErrClosed          AuditErrorCode = "engine_closed"
	auditErrInternal        AuditErrorCode = "internal_error"
)

// emitAudit maps err to its audit code and hands the event ingredients to
// the dispatcher, which stamps and queues them. The metadata builder runs
// only when auditing is enabled.
func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	identity string,
	tenantID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	e.audit.Record(ctx, eventType, success, identity, tenantID, auditErrorCode(err), metadata)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrInvalidIdentity):
		return auditErrInvalidIdentity
	case errors.Is(err, ErrInvalidCode):
		return auditErrInvalidCode
	case errors.Is(err, ErrInvalidTTL):
		return auditErrInvalidTTL
	case errors.Is(err, ErrIssueRateLimited),
		errors.Is(err, ErrVerifyRateLimited):
		return auditErrRateLimited
	case errors.Is(err, ErrStoreUnavailable):
		return auditErrUnavailable
	case errors.Is(err, ErrGenerationFailed):
		return auditErrGeneration
	case errors.Is(err, ErrEngineNotReady):
		return auditErrNotReady
	case errors.Is(err, ErrEngineClosed):
		return auditErrClosed
	default:
		return auditErrInternal
	}
}
