package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/railbook-io/railbook/internal/outcome"
	"github.com/railbook-io/railbook/internal/session"
)

type sessionInfo struct {
	record session.Record
	token  string
}

func withSession(ctx context.Context, info sessionInfo) context.Context {
	return context.WithValue(ctx, sessionKey, info)
}

func sessionFrom(ctx context.Context) sessionInfo {
	info, _ := ctx.Value(sessionKey).(sessionInfo)
	return info
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the uniform failure type onto the response. A
// NO_CONTENT outcome has no body by definition.
func writeError(w http.ResponseWriter, err error) {
	oe, ok := err.(*outcome.Error)
	if !ok {
		oe = outcome.Wrap(outcome.InternalServerError, err)
	}
	if oe.StatusCode == outcome.NoContent.Status() {
		w.WriteHeader(oe.StatusCode)
		return
	}
	writeJSON(w, oe.StatusCode, map[string]string{
		"errorCode": oe.ErrorCode,
		"message":   oe.Message,
	})
}
