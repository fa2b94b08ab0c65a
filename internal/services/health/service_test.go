package health

import (
	"context"
	"errors"
	"testing"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestStatus(t *testing.T) {
	svc := NewService()
	if got := svc.Status(context.Background()); !got.OK || got.Checks != nil {
		t.Fatalf("expected ok without checks, got %+v", got)
	}

	svc.Register("database", pingFunc(func(context.Context) error { return nil }))
	svc.Register("redis", pingFunc(func(context.Context) error { return errors.New("connection refused") }))
	svc.Register("ignored", nil)

	got := svc.Status(context.Background())
	if got.OK {
		t.Fatalf("expected failing report")
	}
	if got.Checks["database"] != "ok" || got.Checks["redis"] != "connection refused" {
		t.Fatalf("unexpected checks %+v", got.Checks)
	}
	if _, ok := got.Checks["ignored"]; ok {
		t.Fatalf("nil pinger must not be registered")
	}
}
