package cache

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestMemorySetGet(t *testing.T) {
	m := NewMemory(10, time.Minute)
	defer m.Close()
	ctx := context.Background()

	if err := m.Set(ctx, "key", []byte("value"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, found, err := m.Get(ctx, "key")
	if err != nil || !found {
		t.Fatalf("Get: found=%v err=%v", found, err)
	}
	if string(got) != "value" {
		t.Errorf("Get = %q, want %q", got, "value")
	}
}

func TestMemoryMissingKey(t *testing.T) {
	m := NewMemory(10, time.Minute)
	defer m.Close()

	_, found, err := m.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if found {
		t.Error("Get found a key that was never set")
	}
}

func TestMemoryExpiry(t *testing.T) {
	m := NewMemory(10, time.Minute)
	defer m.Close()
	ctx := context.Background()

	m.Set(ctx, "short", []byte("x"), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	if _, found, _ := m.Get(ctx, "short"); found {
		t.Error("expired entry still returned")
	}
}

func TestMemoryDelete(t *testing.T) {
	m := NewMemory(10, time.Minute)
	defer m.Close()
	ctx := context.Background()

	m.Set(ctx, "key", []byte("x"), time.Minute)
	if err := m.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, found, _ := m.Get(ctx, "key"); found {
		t.Error("deleted entry still returned")
	}
}

func TestMemorySizeCap(t *testing.T) {
	m := NewMemory(3, time.Minute)
	defer m.Close()
	ctx := context.Background()

	// Entries closest to expiry go first when over the cap.
	for i := 0; i < 5; i++ {
		m.Set(ctx, fmt.Sprintf("key%d", i), []byte("x"), time.Duration(i+1)*time.Minute)
	}
	m.cleanup()

	for i := 0; i < 2; i++ {
		if _, found, _ := m.Get(ctx, fmt.Sprintf("key%d", i)); found {
			t.Errorf("key%d should have been evicted", i)
		}
	}
	for i := 2; i < 5; i++ {
		if _, found, _ := m.Get(ctx, fmt.Sprintf("key%d", i)); !found {
			t.Errorf("key%d should have survived", i)
		}
	}
}

func TestMemoryCloseIdempotent(t *testing.T) {
	m := NewMemory(10, time.Minute)
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
