// SPDX-License-Identifier: MIT
package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestFetchHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != "m3uforge/1.0" {
			t.Errorf("User-Agent = %q", ua)
		}
		_, _ = w.Write([]byte("#EXTM3U\n"))
	}))
	defer srv.Close()

	data, err := NewHTTP(0).Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(data) != "#EXTM3U\n" {
		t.Errorf("data = %q", data)
	}
}

func TestFetchHTTPStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := NewHTTP(0).Fetch(context.Background(), srv.URL); err == nil {
		t.Fatal("want error for non-200 status")
	}
}

func TestFetchFileScheme(t *testing.T) {
	path := filepath.Join(t.TempDir(), "local.m3u")
	if err := os.WriteFile(path, []byte("#EXTM3U\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	data, err := NewHTTP(0).Fetch(context.Background(), "file://"+path)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(data) != "#EXTM3U\n" {
		t.Errorf("data = %q", data)
	}
}

func TestFetchTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := NewHTTP(0).Fetch(ctx, srv.URL); err == nil {
		t.Fatal("want timeout error")
	}
}

func TestAllKeepsConfigurationOrder(t *testing.T) {
	// The first source responds slowest; results must still come back in
	// configuration order with failures carried, not returned.
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(30 * time.Millisecond)
		_, _ = w.Write([]byte("slow"))
	}))
	defer slow.Close()
	fast := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("fast"))
	}))
	defer fast.Close()
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer broken.Close()

	urls := []string{slow.URL, broken.URL, fast.URL}
	results := All(context.Background(), NewHTTP(0), urls, 3, 5*time.Second)

	if len(results) != 3 {
		t.Fatalf("want 3 results, got %d", len(results))
	}
	for i, res := range results {
		if res.Index != i || res.URL != urls[i] {
			t.Errorf("result %d out of order: %+v", i, res)
		}
	}
	if string(results[0].Data) != "slow" || results[0].Err != nil {
		t.Errorf("slow result = %+v", results[0])
	}
	if results[1].Err == nil {
		t.Errorf("broken source did not carry its error")
	}
	if string(results[2].Data) != "fast" {
		t.Errorf("fast result = %+v", results[2])
	}
}

func TestAllBoundsConcurrency(t *testing.T) {
	sem := make(chan struct{}, 2) // capacity = allowed concurrency
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case sem <- struct{}{}:
		default:
			t.Error("more than 2 requests in flight")
		}
		time.Sleep(10 * time.Millisecond)
		<-sem
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	urls := make([]string, 6)
	for i := range urls {
		urls[i] = srv.URL
	}
	results := All(context.Background(), NewHTTP(0), urls, 2, 5*time.Second)
	for i, res := range results {
		if res.Err != nil {
			t.Errorf("source %d: %v", i, res.Err)
		}
	}
}
