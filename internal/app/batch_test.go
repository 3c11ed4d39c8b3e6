package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/samvad-hq/netreq/pkg/networking"
)

func TestFetchAllKeepsInputOrderAndBoundsConcurrency(t *testing.T) {
	var inFlight, peak int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cur := atomic.AddInt32(&inFlight, 1)
		for {
			old := atomic.LoadInt32(&peak)
			if cur <= old || atomic.CompareAndSwapInt32(&peak, old, cur) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		_, _ = w.Write([]byte(`{"n":` + r.URL.Query().Get("n") + `}`))
	}))
	defer srv.Close()

	runner, err := NewRunner(context.Background(), testConfig(t), nil)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	defer runner.Close()

	inputs := make([]FetchInput, 8)
	for i := range inputs {
		inputs[i] = FetchInput{URL: srv.URL + "/?n=" + strconv.Itoa(i)}
	}
	inputs = append(inputs, FetchInput{URL: "not a url"})

	reports, err := runner.FetchAll(context.Background(), inputs, 2)
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(reports) != len(inputs) {
		t.Fatalf("expected %d reports, got %d", len(inputs), len(reports))
	}
	for i := 0; i < 8; i++ {
		rep := reports[i]
		if rep.Err != nil {
			t.Fatalf("report %d: %v", i, rep.Err)
		}
		obj, ok := rep.Value.(map[string]any)
		if !ok || obj["n"] != float64(i) {
			t.Fatalf("report %d out of order: %#v", i, rep.Value)
		}
	}
	last := reports[len(reports)-1]
	if !networking.IsKind(last.Err, networking.KindBadURL) || last.URL != "not a url" {
		t.Fatalf("expected bad url report for last input, got %+v", last)
	}
	if p := atomic.LoadInt32(&peak); p > 2 {
		t.Fatalf("expected at most 2 requests in flight, saw %d", p)
	}

	history, err := runner.History(0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != len(inputs) {
		t.Fatalf("expected %d history entries, got %d", len(inputs), len(history))
	}
}

func TestFetchAllRejectsEmptyInput(t *testing.T) {
	runner, err := NewRunner(context.Background(), testConfig(t), nil)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	defer runner.Close()

	if _, err := runner.FetchAll(context.Background(), nil, 1); err == nil {
		t.Fatalf("expected error for empty batch")
	}
}
