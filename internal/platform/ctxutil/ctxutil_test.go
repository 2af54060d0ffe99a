package ctxutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestLogFields(t *testing.T) {
	if got := LogFields(context.Background()); len(got) != 0 {
		t.Fatalf("empty ctx should yield no fields: %v", got)
	}

	userID := uuid.New()
	ctx := WithTraceData(context.Background(), &TraceData{TraceID: "t-1", RequestID: "r-1"})
	ctx = WithRequestData(ctx, &RequestData{UserID: userID})

	got := LogFields(ctx)
	want := []interface{}{"trace_id", "t-1", "request_id", "r-1", "user_id", userID.String()}
	if len(got) != len(want) {
		t.Fatalf("fields: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("field %d: got %v want %v", i, got[i], want[i])
		}
	}
	if UserID(ctx) != userID {
		t.Fatalf("UserID mismatch")
	}
}
