package domain

import "time"

// AuditLog represents an audit event.
type AuditLog struct {
	ID         string
	ActorEmail string
	Action     string
	Resource   string
	IP         string
	Metadata   string
	CreatedAt  time.Time
}

// Audit actions recorded by the services.
const (
	ActionUserRegistered   = "user.registered"
	ActionRolePromoted     = "user.role_promoted"
	ActionOrderFinalized   = "order.finalized"
	ActionCleanupPartial   = "order.cleanup_partial"
	ActionCartEntryRemoved = "cart.entry_removed"
)
