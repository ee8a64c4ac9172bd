package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"syscall"
	"testing"
	"time"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// runServer starts gs and waits for it to listen.
func runServer(t *testing.T, gs *GracefulServer) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- gs.Run(ctx) }()

	select {
	case <-gs.Ready():
	case err := <-done:
		cancel()
		t.Fatalf("Run returned early: %v", err)
	case <-time.After(2 * time.Second):
		cancel()
		t.Fatal("server did not start")
	}
	return cancel, done
}

func TestGracefulServer_ServesAndStops(t *testing.T) {
	gs := NewGracefulServer("127.0.0.1:0", okHandler(), nil)
	var hookCalled atomic.Bool
	gs.RegisterOnShutdown(func() { hookCalled.Store(true) })
	cancel, done := runServer(t, gs)

	resp, err := http.Get(fmt.Sprintf("http://%s/", gs.Addr()))
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	if !gs.IsShuttingDown() {
		t.Error("Server should report shutting down")
	}
	select {
	case <-gs.ShutdownChannel():
	default:
		t.Error("Shutdown channel should be closed")
	}
	// net/http runs shutdown hooks in their own goroutines
	deadline := time.Now().Add(time.Second)
	for !hookCalled.Load() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if !hookCalled.Load() {
		t.Error("Shutdown hook was not called")
	}
}

// TestGracefulServer_SIGHUPReloads tests reload via SIGHUP
func TestGracefulServer_SIGHUPReloads(t *testing.T) {
	gs := NewGracefulServer("127.0.0.1:0", okHandler(), nil)

	reloaded := make(chan struct{}, 1)
	gs.SetReloadFunc(func(ctx context.Context) error {
		reloaded <- struct{}{}
		return nil
	})

	cancel, done := runServer(t, gs)
	defer func() {
		cancel()
		<-done
	}()

	if err := syscall.Kill(syscall.Getpid(), syscall.SIGHUP); err != nil {
		t.Fatalf("Failed to send SIGHUP: %v", err)
	}

	select {
	case <-reloaded:
	case <-time.After(2 * time.Second):
		t.Fatal("Reload function was not called")
	}

	if gs.IsShuttingDown() {
		t.Error("Server should not be shutting down after SIGHUP")
	}
}

func TestGracefulServer_Reload(t *testing.T) {
	gs := NewGracefulServer(":0", okHandler(), nil)

	if err := gs.Reload(context.Background()); err != nil {
		t.Errorf("Reload without function should succeed, got %v", err)
	}

	called := false
	gs.SetReloadFunc(func(ctx context.Context) error {
		called = true
		return nil
	})
	if err := gs.Reload(context.Background()); err != nil {
		t.Errorf("Reload() error = %v", err)
	}
	if !called {
		t.Error("Reload function was not called")
	}
}

func TestGracefulServer_ReloadWithError(t *testing.T) {
	gs := NewGracefulServer(":0", okHandler(), nil)

	wantErr := errors.New("feed unavailable")
	gs.SetReloadFunc(func(ctx context.Context) error { return wantErr })

	if err := gs.Reload(context.Background()); !errors.Is(err, wantErr) {
		t.Errorf("Expected %v, got %v", wantErr, err)
	}
}

func TestGracefulServer_ListenError(t *testing.T) {
	first := NewGracefulServer("127.0.0.1:0", okHandler(), nil)
	cancel, done := runServer(t, first)
	defer func() {
		cancel()
		<-done
	}()

	second := NewGracefulServer(first.Addr().String(), okHandler(), nil)
	if err := second.Run(context.Background()); err == nil {
		t.Error("Expected error binding an address in use")
	}
}

func TestGracefulServer_ShutdownIdempotent(t *testing.T) {
	gs := NewGracefulServer(":0", okHandler(), nil)
	gs.SetShutdownTimeout(time.Second)

	if err := gs.Shutdown(time.Second); err != nil {
		t.Errorf("first Shutdown() error = %v", err)
	}
	if err := gs.Shutdown(time.Second); err != nil {
		t.Errorf("second Shutdown() error = %v", err)
	}
}
