package engine_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/monojs/monojs/engine"
	"github.com/monojs/monojs/loader"
	"github.com/monojs/monojs/permissions"
)

// A single engine is shared across tests; compiling the interpreter
// module is the expensive part.
var eng *engine.Engine

func TestMain(m *testing.M) {
	var err error
	eng, err = engine.New()
	if err != nil {
		panic(err)
	}
	code := m.Run()
	eng.Close()
	os.Exit(code)
}

type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// startWorker bootstraps a worker over a single-module loader and wires
// stdout into the returned buffer.
func startWorker(t *testing.T, cfg engine.Config, code string) (*engine.Worker, *safeBuffer) {
	t.Helper()
	ctx := testContext(t)

	out := &safeBuffer{}
	cfg.Stdout = out
	if cfg.Stderr == nil {
		cfg.Stderr = &safeBuffer{}
	}

	w, err := eng.NewWorker(cfg, loader.NewSingle(code))
	if err != nil {
		t.Fatalf("NewWorker: %v", err)
	}
	t.Cleanup(func() { w.Close() })

	if err := w.Bootstrap(ctx); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	return w, out
}

func TestWorkerRunsModule(t *testing.T) {
	w, out := startWorker(t, engine.Config{}, `console.log("hello from script");`)

	if err := w.ExecuteModule(testContext(t), loader.EmbeddedSpecifier); err != nil {
		t.Fatalf("ExecuteModule: %v", err)
	}
	if !strings.Contains(out.String(), "hello from script") {
		t.Errorf("stdout = %q", out.String())
	}
}

func TestWorkerBootstrapState(t *testing.T) {
	cfg := engine.Config{
		Args:     []string{"alpha", "beta"},
		Unstable: true,
	}
	w, out := startWorker(t, cfg,
		`console.log(monojs.args.join(",") + "|" + monojs.unstable + "|" + monojs.version);`)

	if err := w.ExecuteModule(testContext(t), loader.EmbeddedSpecifier); err != nil {
		t.Fatalf("ExecuteModule: %v", err)
	}
	want := "alpha,beta|true|" + engine.Version
	if !strings.Contains(out.String(), want) {
		t.Errorf("stdout = %q, want substring %q", out.String(), want)
	}
}

func TestWorkerLifecycleEvents(t *testing.T) {
	code := `
console.log("main");
addEventListener("load", function () { console.log("load-seen"); });
addEventListener("unload", function () { console.log("unload-seen"); });
`
	w, out := startWorker(t, engine.Config{}, code)
	ctx := testContext(t)

	if err := w.ExecuteModule(ctx, loader.EmbeddedSpecifier); err != nil {
		t.Fatalf("ExecuteModule: %v", err)
	}
	if err := w.DispatchEvent(ctx, "load"); err != nil {
		t.Fatalf("DispatchEvent(load): %v", err)
	}
	if err := w.DispatchEvent(ctx, "unload"); err != nil {
		t.Fatalf("DispatchEvent(unload): %v", err)
	}

	got := out.String()
	main := strings.Index(got, "main")
	load := strings.Index(got, "load-seen")
	unload := strings.Index(got, "unload-seen")
	if main == -1 || load == -1 || unload == -1 {
		t.Fatalf("stdout = %q", got)
	}
	if !(main < load && load < unload) {
		t.Errorf("event order wrong: stdout = %q", got)
	}
}

func TestWorkerEventLoop(t *testing.T) {
	code := `
setTimeout(function () { console.log("timer-late"); }, 20);
setTimeout(function () { console.log("timer-early"); }, 0);
queueMicrotask(function () { console.log("micro"); });
`
	w, out := startWorker(t, engine.Config{}, code)
	ctx := testContext(t)

	if err := w.ExecuteModule(ctx, loader.EmbeddedSpecifier); err != nil {
		t.Fatalf("ExecuteModule: %v", err)
	}
	if err := w.RunEventLoop(ctx); err != nil {
		t.Fatalf("RunEventLoop: %v", err)
	}

	got := out.String()
	micro := strings.Index(got, "micro")
	early := strings.Index(got, "timer-early")
	late := strings.Index(got, "timer-late")
	if micro == -1 || early == -1 || late == -1 {
		t.Fatalf("stdout = %q", got)
	}
	if !(micro < early && early < late) {
		t.Errorf("task order wrong: stdout = %q", got)
	}
}

func TestWorkerUncaughtError(t *testing.T) {
	w, _ := startWorker(t, engine.Config{}, `throw new TypeError("boom");`)

	err := w.ExecuteModule(testContext(t), loader.EmbeddedSpecifier)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "Uncaught TypeError: boom") {
		t.Errorf("err = %v", err)
	}
}

func TestWorkerEvalKeepsState(t *testing.T) {
	w, out := startWorker(t, engine.Config{}, `/* repl */`)
	ctx := testContext(t)

	if err := w.Eval(ctx, "var x = 2;"); err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if err := w.Eval(ctx, "console.log(x + 3);"); err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if !strings.Contains(out.String(), "5") {
		t.Errorf("stdout = %q", out.String())
	}
}

func TestWorkerHostCallReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.txt")
	if err := os.WriteFile(path, []byte("file payload"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := engine.Config{Permissions: permissions.AllowAll()}
	w, out := startWorker(t, cfg,
		`console.log(monojs.readTextFile(`+jsString(path)+`));`)

	if err := w.ExecuteModule(testContext(t), loader.EmbeddedSpecifier); err != nil {
		t.Fatalf("ExecuteModule: %v", err)
	}
	if !strings.Contains(out.String(), "file payload") {
		t.Errorf("stdout = %q", out.String())
	}
}

func TestWorkerPermissionDenied(t *testing.T) {
	cfg := engine.Config{Permissions: permissions.None()}
	w, _ := startWorker(t, cfg, `monojs.readTextFile("/etc/hosts");`)

	err := w.ExecuteModule(testContext(t), loader.EmbeddedSpecifier)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "permission denied") {
		t.Errorf("err = %v", err)
	}
}

// jsString quotes s as a JavaScript string literal. Test paths contain no
// characters that need more than backslash escaping.
func jsString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
