package grpcdial

import (
	"errors"
	"strings"
	"testing"
	"time"

	platformgrpc "github.com/louisbranch/twbb/internal/platform/grpc"
)

func TestNormalizeDialError(t *testing.T) {
	cause := errors.New("deadline exceeded")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "health stage",
			err:  &platformgrpc.DialError{Stage: platformgrpc.DialStageHealth, Err: cause},
			want: "bridge gRPC health check failed for localhost:8091: deadline exceeded",
		},
		{
			name: "connect stage",
			err:  &platformgrpc.DialError{Stage: platformgrpc.DialStageConnect, Err: cause},
			want: "dial bridge gRPC localhost:8091: deadline exceeded",
		},
		{
			name: "plain error",
			err:  cause,
			want: "dial bridge gRPC localhost:8091: deadline exceeded",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeDialError("bridge", "localhost:8091", tt.err)
			if got.Error() != tt.want {
				t.Fatalf("error = %q, want %q", got.Error(), tt.want)
			}
			if !errors.Is(got, cause) {
				t.Fatal("expected cause to be preserved")
			}
		})
	}
}

func TestDialWithHealthLabelsFailure(t *testing.T) {
	_, err := DialWithHealth(t.Context(), "127.0.0.1:1", 100*time.Millisecond, "bridge", nil)
	if err == nil {
		t.Fatal("expected dial failure")
	}
	if !strings.Contains(err.Error(), "bridge") {
		t.Fatalf("error = %q, want service label", err.Error())
	}
}
