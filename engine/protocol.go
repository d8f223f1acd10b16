package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/monojs/monojs/hostcall"
)

// Wire protocol between the host and the interpreter driver. The driver
// writes NUL-framed frames to stderr; everything else on stderr is script
// output and passes through. Host-call responses and commands travel as
// JSON lines on stdin.
const (
	callPrefix  = "\x00MJS:"
	readySignal = "\x00MJS_READY\x00"
	doneSignal  = "\x00MJS_DONE\x00"
	errorPrefix = "\x00MJS_ERROR:"
	frameSuffix = "\x00"
	frameStart  = "\x00MJS"
)

type callRequest struct {
	Fn   string         `json:"fn"`
	Args map[string]any `json:"args"`
}

type callResponse struct {
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// protocolHandler intercepts the interpreter's stderr. Frames become
// signals or host calls; the rest is forwarded to passthrough.
type protocolHandler struct {
	ctx         context.Context
	registry    *hostcall.Registry
	stdinWriter *io.PipeWriter
	passthrough io.Writer

	mu      sync.Mutex
	buf     bytes.Buffer
	readyCh chan struct{}
	ready   bool
	doneCh  chan error

	writeMu sync.Mutex
}

func newProtocolHandler(ctx context.Context, registry *hostcall.Registry, stdinWriter *io.PipeWriter, passthrough io.Writer) *protocolHandler {
	return &protocolHandler{
		ctx:         ctx,
		registry:    registry,
		stdinWriter: stdinWriter,
		passthrough: passthrough,
		readyCh:     make(chan struct{}),
		doneCh:      make(chan error, 1),
	}
}

func (p *protocolHandler) Write(data []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.buf.Write(data)
	for p.step() {
	}
	return len(data), nil
}

// step consumes at most one complete frame or passthrough chunk. It
// reports false when nothing complete remains buffered.
func (p *protocolHandler) step() bool {
	content := p.buf.String()
	if content == "" {
		return false
	}

	idx := strings.Index(content, frameStart)
	if idx == -1 {
		// Flush everything except a tail that could begin a frame.
		keep := tailOverlap(content, frameStart)
		if keep == len(content) {
			return false
		}
		p.passthrough.Write([]byte(content[:len(content)-keep]))
		p.rebuffer(content[len(content)-keep:])
		return false
	}
	if idx > 0 {
		p.passthrough.Write([]byte(content[:idx]))
		p.rebuffer(content[idx:])
		content = p.buf.String()
	}

	switch {
	case strings.HasPrefix(content, readySignal):
		p.rebuffer(content[len(readySignal):])
		if !p.ready {
			p.ready = true
			close(p.readyCh)
		}
		return true

	case strings.HasPrefix(content, doneSignal):
		p.rebuffer(content[len(doneSignal):])
		p.signalDone(nil)
		return true

	case strings.HasPrefix(content, errorPrefix):
		end := strings.Index(content[len(errorPrefix):], frameSuffix)
		if end == -1 {
			return false
		}
		msg := content[len(errorPrefix) : len(errorPrefix)+end]
		p.rebuffer(content[len(errorPrefix)+end+1:])
		p.signalDone(errors.New(msg))
		return true

	case strings.HasPrefix(content, callPrefix):
		end := strings.Index(content[len(callPrefix):], frameSuffix)
		if end == -1 {
			return false
		}
		payload := content[len(callPrefix) : len(callPrefix)+end]
		p.rebuffer(content[len(callPrefix)+end+1:])
		p.handleCall(payload)
		return true

	default:
		if couldExtendFrame(content) {
			return false
		}
		// Stray script output that merely resembles a frame start.
		p.passthrough.Write([]byte(content[:1]))
		p.rebuffer(content[1:])
		return true
	}
}

func (p *protocolHandler) rebuffer(rest string) {
	p.buf.Reset()
	p.buf.WriteString(rest)
}

func (p *protocolHandler) handleCall(payload string) {
	var req callRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		go p.respond(callResponse{Error: "invalid call format"})
		return
	}

	// Execute and respond off the Write path: the interpreter is blocked
	// inside its stderr write until Write returns.
	go func() {
		var resp callResponse
		fn, ok := p.registry.Get(req.Fn)
		switch {
		case !ok:
			resp = callResponse{Error: "unknown host function: " + req.Fn}
		default:
			result, err := fn(p.ctx, req.Args)
			if err != nil {
				resp = callResponse{Error: err.Error()}
			} else {
				resp = callResponse{Data: result}
			}
		}
		p.respond(resp)
	}()
}

func (p *protocolHandler) respond(resp callResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		data = []byte(`{"error":"internal: failed to marshal response"}`)
	}
	p.writeLine(data)
}

// writeLine serializes writes to the interpreter's stdin so host-call
// responses and commands never interleave.
func (p *protocolHandler) writeLine(data []byte) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	_, err := p.stdinWriter.Write(append(data, '\n'))
	return err
}

// signalDone is called with p.mu held.
func (p *protocolHandler) signalDone(err error) {
	select {
	case p.doneCh <- err:
	default:
	}
}

// resetDone discards any stale completion before a new command is sent.
func (p *protocolHandler) resetDone() {
	p.mu.Lock()
	p.doneCh = make(chan error, 1)
	p.mu.Unlock()
}

func (p *protocolHandler) done() <-chan error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.doneCh
}

func (p *protocolHandler) readySignaled() <-chan struct{} {
	return p.readyCh
}

// tailOverlap returns the length of the longest suffix of s that is a
// proper prefix of frame.
func tailOverlap(s, frame string) int {
	max := len(frame) - 1
	if max > len(s) {
		max = len(s)
	}
	for n := max; n > 0; n-- {
		if s[len(s)-n:] == frame[:n] {
			return n
		}
	}
	return 0
}

// couldExtendFrame reports whether s, which starts with frameStart, is a
// prefix of some complete frame header.
func couldExtendFrame(s string) bool {
	for _, f := range []string{readySignal, doneSignal, errorPrefix, callPrefix} {
		if len(s) < len(f) && strings.HasPrefix(f, s) {
			return true
		}
	}
	return false
}
