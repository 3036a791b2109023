package services

import (
	"context"
	"testing"
	"time"
)

func TestStartJanitor_RemovesIdleSessions(t *testing.T) {
	service, _ := newTestService(t, 0.9)
	if _, _, err := service.Login(context.Background(), "S1", "Alice"); err != nil {
		t.Fatalf("Expected no error, but got %v", err)
	}
	if n := service.ActiveSessions(); n != 1 {
		t.Fatalf("Expected 1 active session, got %d", n)
	}

	c, err := StartJanitor(service, "@every 1s", 0)
	if err != nil {
		t.Fatalf("Expected no error, but got %v", err)
	}
	defer c.Stop()

	deadline := time.Now().Add(5 * time.Second)
	for service.ActiveSessions() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("Expected the janitor to remove the idle session")
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func TestStartJanitor_InvalidSchedule(t *testing.T) {
	service, _ := newTestService(t, 0.9)
	if _, err := StartJanitor(service, "not a schedule", time.Hour); err == nil {
		t.Error("Expected an error for an invalid schedule")
	}
}
