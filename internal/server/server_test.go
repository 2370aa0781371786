package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/JaimeStill/legal-lab/internal/config"
	"github.com/JaimeStill/legal-lab/pkg/logging"
)

func testConfig() *config.ServerConfig {
	return &config.ServerConfig{
		Host:            "127.0.0.1",
		Port:            0,
		ReadTimeout:     "5s",
		WriteTimeout:    "5s",
		ShutdownTimeout: "5s",
	}
}

func TestStart_ServerResponds(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("test response"))
	})

	sys := New(testConfig(), handler, logging.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	if err := sys.Start(ctx, &wg); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	resp, err := http.Get(fmt.Sprintf("http://%s/test", sys.Addr()))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	cancel()
	wg.Wait()
}

func TestStop(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	sys := New(testConfig(), handler, logging.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var wg sync.WaitGroup

	if err := sys.Start(ctx, &wg); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	addr := sys.Addr()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()

	if err := sys.Stop(stopCtx); err != nil {
		t.Fatalf("Stop() failed: %v", err)
	}

	if _, err := http.Get(fmt.Sprintf("http://%s/test", addr)); err == nil {
		t.Error("server still responding after stop")
	}
}

func TestGracefulShutdown(t *testing.T) {
	started := make(chan struct{})
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		time.Sleep(50 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	})

	sys := New(testConfig(), handler, logging.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	if err := sys.Start(ctx, &wg); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	done := make(chan int)
	go func() {
		resp, err := http.Get(fmt.Sprintf("http://%s/test", sys.Addr()))
		if err != nil {
			done <- 0
			return
		}
		resp.Body.Close()
		done <- resp.StatusCode
	}()

	<-started
	cancel()

	if code := <-done; code != http.StatusOK {
		t.Errorf("in-flight request status = %d, want %d", code, http.StatusOK)
	}
	wg.Wait()
}
