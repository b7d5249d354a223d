package api

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
)

// sensitiveKeys never reach the log in clear text.
var sensitiveKeys = map[string]bool{
	"secret_seed": true,
	"server_seed": true,
	"client_seed": true,
	"token":       true,
}

// SecurityLogger records audit and security events. Seeds and tokens are
// logged as short hashes only.
type SecurityLogger struct {
	logger *slog.Logger
}

// NewSecurityLogger creates a new security logger
func NewSecurityLogger(logger *slog.Logger) *SecurityLogger {
	return &SecurityLogger{logger: logger.With("component", "security")}
}

// LogVerifyOperation logs a verification with hashed seeds.
func (sl *SecurityLogger) LogVerifyOperation(requestID, secretSeed, clientSeed string, nonce uint64, min, max, value int64) {
	sl.logger.Info("verify_operation",
		"request_id", requestID,
		"server_hash", hashSeed(secretSeed),
		"client_hash", hashSeed(clientSeed),
		"nonce", nonce,
		"range", []int64{min, max},
		"value", value,
	)
}

// LogSecurityEvent logs failed validations and rejected calls.
func (sl *SecurityLogger) LogSecurityEvent(requestID, eventType, description string, context map[string]any, remoteAddr string) {
	sl.logger.Warn("security_event",
		"request_id", requestID,
		"type", eventType,
		"description", description,
		"context", sanitizeContext(context),
		"remote_addr", remoteAddr,
	)
}

// LogAuditEvent logs ledger and seed changes made through the API.
func (sl *SecurityLogger) LogAuditEvent(requestID, action, resource, outcome string, details map[string]any) {
	sl.logger.Info("audit_event",
		"request_id", requestID,
		"action", action,
		"resource", resource,
		"outcome", outcome,
		"details", sanitizeContext(details),
	)
}

// hashSeed creates a SHA256 hash of a seed for logging purposes
func hashSeed(seed string) string {
	if seed == "" {
		return "empty"
	}
	hash := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(hash[:])[:16]
}

func sanitizeContext(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		if sensitiveKeys[k] {
			if s, ok := v.(string); ok {
				out[k+"_hash"] = hashSeed(s)
			}
			continue
		}
		out[k] = v
	}
	return out
}
