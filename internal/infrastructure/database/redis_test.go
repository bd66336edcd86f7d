package database

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func TestNewRedisAndPing(t *testing.T) {
	mr := miniredis.RunT(t)

	client := NewRedis(mr.Addr(), "", 0)
	t.Cleanup(func() { client.Close() })

	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}

	// The embedded client is what the services consume.
	if err := client.Client.Set(context.Background(), "k", "v", 0).Err(); err != nil {
		t.Errorf("Set() through embedded client error = %v", err)
	}
}

func TestPing_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	client := NewRedis(addr, "", 0)
	t.Cleanup(func() { client.Close() })

	if err := client.Ping(context.Background()); err == nil {
		t.Error("Ping() error = nil, want failure against closed server")
	}
}
