package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type traceDataKey struct{}

// TraceData correlates one HTTP request across logs and spans.
type TraceData struct {
	TraceID   string
	RequestID string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	if ctx == nil {
		return nil
	}
	td, _ := ctx.Value(traceDataKey{}).(*TraceData)
	return td
}

// LogFields returns the correlation kv pairs carried by ctx, ready to pass
// to logger.With or a log call.
func LogFields(ctx context.Context) []interface{} {
	var out []interface{}
	if td := GetTraceData(ctx); td != nil {
		out = append(out, "trace_id", td.TraceID, "request_id", td.RequestID)
	}
	if rd := GetRequestData(ctx); rd != nil {
		if rd.UserID != uuid.Nil {
			out = append(out, "user_id", rd.UserID.String())
		}
		if rd.SessionID != uuid.Nil {
			out = append(out, "session_id", rd.SessionID.String())
		}
	}
	return out
}
