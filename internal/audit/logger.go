package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"bistro-boss/backend/internal/audit/domain"
	auditrepo "bistro-boss/backend/internal/audit/repository"
	"bistro-boss/backend/internal/logger"
)

// IPExtractor returns the client IP from the request context.
type IPExtractor func(context.Context) string

// AuditLogger writes a single audit event with explicit action/resource.
// LogEvent is best-effort: failures are logged and do not affect the caller.
type AuditLogger interface {
	LogEvent(ctx context.Context, actorEmail, action, resource string, metadata map[string]any)
}

// Logger implements AuditLogger using the audit repository and an optional IP extractor.
type Logger struct {
	repo        auditrepo.Repository
	ipExtractor IPExtractor
	now         func() time.Time
}

// NewLogger returns an AuditLogger that persists to repo and uses ipExtractor for client IP.
// ipExtractor may be nil; then ClientIP is used.
func NewLogger(repo auditrepo.Repository, ipExtractor IPExtractor) *Logger {
	if ipExtractor == nil {
		ipExtractor = ClientIP
	}
	return &Logger{repo: repo, ipExtractor: ipExtractor, now: time.Now}
}

// LogEvent writes one audit log entry. Best-effort: errors are logged and not returned.
func (l *Logger) LogEvent(ctx context.Context, actorEmail, action, resource string, metadata map[string]any) {
	if l == nil || l.repo == nil {
		return
	}
	entry := &domain.AuditLog{
		ID:         uuid.New().String(),
		ActorEmail: actorEmail,
		Action:     action,
		Resource:   resource,
		IP:         l.ipExtractor(ctx),
		CreatedAt:  l.now().UTC(),
	}
	if len(metadata) > 0 {
		b, err := json.Marshal(metadata)
		if err != nil {
			logger.FromContext(ctx).Warn("audit_metadata_encode_failed", zap.String("action", action), zap.Error(err))
		} else {
			entry.Metadata = string(b)
		}
	}
	// The entry is written even when the request was cancelled.
	if err := l.repo.Create(context.WithoutCancel(ctx), entry); err != nil {
		logger.FromContext(ctx).Warn("audit_write_failed",
			zap.String("action", action),
			zap.String("resource", resource),
			zap.Error(err),
		)
	}
}

type ipKey struct{}

// WithClientIP returns a context carrying the caller's IP for audit entries.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ipKey{}, ip)
}

// ClientIP returns the IP set by WithClientIP, or "unknown".
func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(ipKey{}).(string); ok && ip != "" {
		return ip
	}
	return "unknown"
}
