// Package bench measures interpreter startup and evaluation costs.
//
// Run with: go test -bench=. -benchtime=3x ./bench/
package bench

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"

	"github.com/monojs/monojs/engine"
	"github.com/monojs/monojs/loader"
)

func newWorker(b *testing.B, eng *engine.Engine) *engine.Worker {
	b.Helper()
	w, err := eng.NewWorker(engine.Config{
		Stdout: &bytes.Buffer{},
		Stderr: &bytes.Buffer{},
	}, loader.NewSingle(""))
	if err != nil {
		b.Fatal(err)
	}
	if err := w.Bootstrap(context.Background()); err != nil {
		b.Fatal(err)
	}
	return w
}

// Cold start: a fresh engine per iteration, so the interpreter module is
// recompiled every time.
func BenchmarkColdStart(b *testing.B) {
	for i := 0; i < b.N; i++ {
		eng, err := engine.New()
		if err != nil {
			b.Fatal(err)
		}
		w := newWorker(b, eng)
		w.Eval(context.Background(), "1 + 1")
		w.Close()
		eng.Close()
	}
}

// Warm worker: one bootstrapped interpreter, repeated evaluation.
func BenchmarkWarmEval(b *testing.B) {
	eng, err := engine.New()
	if err != nil {
		b.Fatal(err)
	}
	defer eng.Close()
	w := newWorker(b, eng)
	defer w.Close()

	ctx := context.Background()
	w.Eval(ctx, "1 + 1") // warmup

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.Eval(ctx, "1 + 1")
	}
}

// Warm worker bootstrap: new interpreter instance on an engine that has
// already compiled the module. This is the per-run cost of a sealed
// binary after the first execution on a machine.
func BenchmarkWarmBootstrap(b *testing.B) {
	eng, err := engine.New()
	if err != nil {
		b.Fatal(err)
	}
	defer eng.Close()
	newWorker(b, eng).Close() // compile

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w := newWorker(b, eng)
		w.Close()
	}
}

// TestDiskCacheBenefit simulates repeated CLI invocations sharing a
// compilation cache directory.
func TestDiskCacheBenefit(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping cache benchmark in short mode")
	}

	cacheDir, err := os.MkdirTemp("", "monojs-bench-cache")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(cacheDir)

	var times []time.Duration
	for i := 0; i < 3; i++ {
		start := time.Now()

		eng, err := engine.New(engine.WithDiskCache(cacheDir))
		if err != nil {
			t.Fatal(err)
		}
		w, err := eng.NewWorker(engine.Config{
			Stdout: &bytes.Buffer{},
			Stderr: &bytes.Buffer{},
		}, loader.NewSingle(""))
		if err != nil {
			t.Fatal(err)
		}
		if err := w.Bootstrap(context.Background()); err != nil {
			t.Fatal(err)
		}
		w.Eval(context.Background(), "1 + 1")
		w.Close()
		eng.Close()

		times = append(times, time.Since(start))
	}

	for i, d := range times {
		label := "cached"
		if i == 0 {
			label = "compile"
		}
		t.Logf("call %d (%s): %v", i+1, label, d)
	}
	if times[1] > 0 {
		t.Logf("speedup after first call: %.1fx", float64(times[0])/float64(times[1]))
	}
}
