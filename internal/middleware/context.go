package middleware

import (
	"context"
	"encoding/json"
	"net/http"
)

type ctxKey string

const (
	ctxCorrelationID ctxKey = "correlation_id"
	ctxPrincipal     ctxKey = "principal"
)

// Principal is the authenticated caller.
type Principal struct {
	UserID string
	Email  string
	Name   string
	Role   string
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxPrincipal, p)
}

func GetPrincipal(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxPrincipal).(Principal)
	return p, ok
}

func GetUserID(ctx context.Context) string {
	p, _ := GetPrincipal(ctx)
	return p.UserID
}

func GetCorrelationID(ctx context.Context) string {
	if v := ctx.Value(ctxCorrelationID); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

type errorBody struct {
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Message: msg})
}
