package ctxutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestRequestDataRoundTrip(t *testing.T) {
	if rd := GetRequestData(context.Background()); rd != nil {
		t.Fatalf("expected nil request data on bare context")
	}
	if !(*RequestData)(nil).Anonymous() {
		t.Fatalf("nil request data should be anonymous")
	}
	uid := uuid.New()
	ctx := WithRequestData(context.Background(), &RequestData{UserID: uid})
	rd := GetRequestData(ctx)
	if rd == nil || rd.UserID != uid {
		t.Fatalf("GetRequestData: got=%+v", rd)
	}
	if rd.Anonymous() {
		t.Fatalf("request data with user should not be anonymous")
	}
}

func TestTraceDataRoundTrip(t *testing.T) {
	ctx := WithTraceData(Default(nil), &TraceData{TraceID: "t1", RequestID: "r1"})
	td := GetTraceData(ctx)
	if td == nil || td.TraceID != "t1" || td.RequestID != "r1" {
		t.Fatalf("GetTraceData: got=%+v", td)
	}
}
