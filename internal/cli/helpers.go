package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/aretw0/stepflow"
	"github.com/aretw0/stepflow/internal/config"
	"github.com/aretw0/stepflow/pkg/domain"
)

// StdinArg names standard input in place of a file path.
const StdinArg = "-"

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// Unlike signal.NotifyContext it allows retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sc.sigCh)
		select {
		case sig := <-sc.sigCh:
			sc.mu.Lock()
			sc.sigVal = sig
			sc.mu.Unlock()
			sc.Cancel()
		case <-sc.Context.Done():
			// Context cancelled elsewhere
		}
	}()

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// ReadDocument reads a flow document from path, or from stdin for "-".
func ReadDocument(path string, stdin io.Reader) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path == StdinArg {
		data, err = io.ReadAll(io.LimitReader(stdin, int64(maxDocumentSize())+1))
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
	} else {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read flow: %w", err)
		}
	}
	if err := checkDocument(data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return data, nil
}

// LoadFlow resolves arg as "-" for stdin, a path to a flow document, or
// the id of a flow in the engine's source, in that order.
func LoadFlow(ctx context.Context, eng *stepflow.Engine, arg string, stdin io.Reader) (*domain.Flow, error) {
	if arg == StdinArg || isFile(arg) {
		data, err := ReadDocument(arg, stdin)
		if err != nil {
			return nil, err
		}
		return eng.ParseSteps(data)
	}

	flow, err := eng.LoadFlow(ctx, arg)
	if errors.Is(err, stepflow.ErrNoSource) {
		return nil, fmt.Errorf("%s is not a file and no flows directory is configured", arg)
	}
	return flow, err
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// FlowIDs lists the flows of the engine's source, leaving out operator
// catalogs and configuration files that share the flows directory.
func FlowIDs(ctx context.Context, eng *stepflow.Engine) ([]string, error) {
	ids, err := eng.ListFlows(ctx)
	if err != nil {
		return nil, err
	}
	out := ids[:0]
	for _, id := range ids {
		if !isReservedID(id) {
			out = append(out, id)
		}
	}
	return out, nil
}

func isReservedID(id string) bool {
	for _, name := range append([]string{config.FileName}, catalogNames...) {
		if id == strings.TrimSuffix(name, filepath.Ext(name)) {
			return true
		}
	}
	return false
}
