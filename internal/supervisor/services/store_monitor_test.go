// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/kuchikomi/internal/metrics"
)

type fakePinger struct {
	calls atomic.Int32
	fail  atomic.Bool
}

func (f *fakePinger) Ping(context.Context) error {
	f.calls.Add(1)
	if f.fail.Load() {
		return errors.New("connection refused")
	}
	return nil
}

func TestStoreMonitorService_ChecksAndPublishes(t *testing.T) {
	venues := &fakePinger{}
	history := &fakePinger{}
	history.fail.Store(true)

	svc := NewStoreMonitorService(map[string]Pinger{
		"test_venue_store":   venues,
		"test_history_store": history,
	}, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for venues.calls.Load() < 3 {
		if time.Now().After(deadline) {
			t.Fatal("monitor did not tick")
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}

	if got := testutil.ToFloat64(metrics.DependencyUp.WithLabelValues("test_venue_store")); got != 1 {
		t.Errorf("venue store up = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.DependencyUp.WithLabelValues("test_history_store")); got != 0 {
		t.Errorf("history store up = %v, want 0", got)
	}
}

func TestStoreMonitorService_Transitions(t *testing.T) {
	p := &fakePinger{}
	svc := NewStoreMonitorService(map[string]Pinger{"test_flapping": p}, time.Hour)

	p.fail.Store(true)
	svc.checkAll(context.Background())
	if svc.up["test_flapping"] {
		t.Fatal("expected down after failed ping")
	}

	p.fail.Store(false)
	svc.checkAll(context.Background())
	if !svc.up["test_flapping"] {
		t.Fatal("expected up after recovery")
	}
	if svc.timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", svc.timeout)
	}
}
