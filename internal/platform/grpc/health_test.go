package grpc

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	gogrpc "google.golang.org/grpc"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

func startHealthServer(t *testing.T, serving bool) (string, *HealthServer) {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	server := NewHealthServer()
	server.SetServing(serving)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Serve(listener)
	}()
	t.Cleanup(func() {
		server.Stop()
		select {
		case <-serveErr:
		case <-time.After(2 * time.Second):
		}
	})
	return listener.Addr().String(), server
}

func dialHealthServer(t *testing.T, addr string) *gogrpc.ClientConn {
	t.Helper()
	conn, err := gogrpc.NewClient(addr, DefaultClientDialOptions()...)
	if err != nil {
		t.Fatalf("dial health server: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestCheckReportsStatus(t *testing.T) {
	addr, server := startHealthServer(t, false)
	conn := dialHealthServer(t, addr)
	ctx := context.Background()

	status, err := Check(ctx, conn, "")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if status != grpc_health_v1.HealthCheckResponse_NOT_SERVING {
		t.Fatalf("status = %s, want NOT_SERVING", status)
	}

	server.SetServing(true)
	status, err = Check(ctx, conn, "")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if status != grpc_health_v1.HealthCheckResponse_SERVING {
		t.Fatalf("status = %s, want SERVING", status)
	}
}

func TestCheckRequiresConn(t *testing.T) {
	if _, err := Check(context.Background(), nil, ""); err == nil {
		t.Fatal("expected error for nil connection")
	}
}

func TestWaitForHealthTransitionsToServing(t *testing.T) {
	addr, server := startHealthServer(t, false)
	conn := dialHealthServer(t, addr)

	time.AfterFunc(150*time.Millisecond, func() { server.SetServing(true) })

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := WaitForHealth(ctx, conn, "", nil); err != nil {
		t.Fatalf("wait for health: %v", err)
	}
}

func TestWaitForHealthRespectsContext(t *testing.T) {
	addr, _ := startHealthServer(t, false)
	conn := dialHealthServer(t, addr)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := WaitForHealth(ctx, conn, "", nil); err == nil {
		t.Fatal("expected context error, got nil")
	}
}

func TestDialWithHealth(t *testing.T) {
	addr, _ := startHealthServer(t, true)

	conn, err := DialWithHealth(context.Background(), addr, 2*time.Second, nil)
	if err != nil {
		t.Fatalf("dial with health: %v", err)
	}
	if err := conn.Close(); err != nil {
		t.Fatalf("close conn: %v", err)
	}
}

func TestDialWithHealthNotServing(t *testing.T) {
	addr, _ := startHealthServer(t, false)

	conn, err := DialWithHealth(context.Background(), addr, 150*time.Millisecond, nil)
	if conn != nil {
		_ = conn.Close()
		t.Fatal("expected nil connection on error")
	}
	var dialErr *DialError
	if !errors.As(err, &dialErr) || dialErr.Stage != DialStageHealth {
		t.Fatalf("error = %v, want health stage DialError", err)
	}
}

func TestDialErrorFormatting(t *testing.T) {
	err := &DialError{Stage: DialStageConnect, Err: errors.New("boom")}
	if !strings.Contains(err.Error(), "connect") || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("error = %q", err.Error())
	}
	if !errors.Is(err, err.Err) {
		t.Fatal("expected unwrap to expose cause")
	}
	var nilErr *DialError
	if nilErr.Error() == "" || nilErr.Unwrap() != nil {
		t.Fatal("nil DialError should be safe")
	}
}
