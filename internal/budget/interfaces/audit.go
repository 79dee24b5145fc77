package interfaces

import (
	"encoding/json"
	"net/http"

	"tryognik-dashboard/internal/audit"
	"tryognik-dashboard/internal/auth"
	"tryognik-dashboard/internal/observability/metrics"
)

func logAudit(logger audit.Logger, r *http.Request, action, resourceType, resourceID string, meta map[string]any) {
	if logger == nil {
		return
	}
	identity, _ := auth.IdentityFromContext(r.Context())
	var payload []byte
	if len(meta) > 0 {
		payload, _ = json.Marshal(meta)
	}
	err := logger.Log(r.Context(), audit.Entry{
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Verified:     identity.Verified,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Metadata:     payload,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
	if err == nil {
		metrics.IncAuditEvent(action)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
