package main

import (
	"context"
	"net"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jakeh134/motionflow/service"
)

func TestDrainRunsJobsQueuedDuringShutdown(t *testing.T) {
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	pool := service.NewWorkerPool(1)
	pool.Start(workerCtx)

	var ran atomic.Bool
	entered := make(chan struct{})
	release := make(chan struct{})
	mux := http.NewServeMux()
	mux.HandleFunc("/upload", func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		err := pool.Submit(func(ctx context.Context) error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			ran.Store(true)
			return nil
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := &http.Server{Handler: mux}
	go srv.Serve(ln)

	status := make(chan int, 1)
	go func() {
		resp, err := http.Post("http://"+ln.Addr().String()+"/upload", "text/plain", nil)
		if err != nil {
			status <- 0
			return
		}
		resp.Body.Close()
		status <- resp.StatusCode
	}()
	<-entered

	done := make(chan error, 1)
	go func() { done <- drain(srv, pool, stopWorkers, 5*time.Second) }()
	close(release)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("drain: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("drain never returned")
	}

	if code := <-status; code != http.StatusAccepted {
		t.Errorf("Expected in-flight request to finish with 202, got %d", code)
	}
	if !ran.Load() {
		t.Error("Expected the job queued during shutdown to run")
	}
	if workerCtx.Err() == nil {
		t.Error("Expected workers to be cancelled after drain")
	}
}
