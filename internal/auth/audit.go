package auth

import "context"

type AuditEventType string

const (
	AuditRegister AuditEventType = "AUTH_REGISTER"
	AuditLogin    AuditEventType = "AUTH_LOGIN"
	AuditRefresh  AuditEventType = "AUTH_REFRESH"
	AuditLogout   AuditEventType = "AUTH_LOGOUT"
)

type AuditEvent struct {
	Type      AuditEventType
	UserID    string
	IP        string
	UserAgent string
	Success   bool
	Error     string
	Metadata  map[string]interface{}
}

// AuditSink records authentication outcomes. Implementations must not block
// the caller and must swallow their own failures.
type AuditSink interface {
	Log(ctx context.Context, event AuditEvent)
}

type NopAuditSink struct{}

func (NopAuditSink) Log(context.Context, AuditEvent) {}
