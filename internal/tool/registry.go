package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
)

const defaultTimeout = 30 * time.Second

// Registry is the set of capabilities agents may invoke. It is built once
// at startup and read-only afterwards; Scope returns per-profile views
// sharing the same tools and compiled schemas.
type Registry struct {
	tools   map[string]Tool
	schemas map[string]*gojsonschema.Schema
}

func NewRegistry() *Registry {
	return &Registry{
		tools:   make(map[string]Tool),
		schemas: make(map[string]*gojsonschema.Schema),
	}
}

// Register adds a tool and compiles its input schema. Duplicate names and
// invalid schemas are configuration mistakes, reported at startup.
func (r *Registry) Register(t Tool) error {
	if t.Name == "" {
		return errors.New("tool: empty name")
	}
	if _, ok := r.tools[t.Name]; ok {
		return fmt.Errorf("tool: duplicate registration of %q", t.Name)
	}
	if len(t.InputSchema) > 0 {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(t.InputSchema))
		if err != nil {
			return fmt.Errorf("tool %q: compiling input schema: %w", t.Name, err)
		}
		r.schemas[t.Name] = schema
	}
	r.tools[t.Name] = t
	return nil
}

func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Names returns the registered tool names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns the registered tools ordered by name.
func (r *Registry) All() []Tool {
	names := r.Names()
	out := make([]Tool, 0, len(names))
	for _, name := range names {
		out = append(out, r.tools[name])
	}
	return out
}

// Scope returns a view restricted to the named tools. An empty list means
// the full registry. Names that match nothing are ignored.
func (r *Registry) Scope(names []string) *Registry {
	if len(names) == 0 {
		return r
	}
	scoped := NewRegistry()
	for _, name := range names {
		if t, ok := r.tools[name]; ok {
			scoped.tools[name] = t
			if s, ok := r.schemas[name]; ok {
				scoped.schemas[name] = s
			}
		}
	}
	return scoped
}

// Invoke validates args against the tool's schema and dispatches the
// handler under its timeout. Every outcome is a Result; handler errors,
// panics and timeouts are converted, never propagated.
func (r *Registry) Invoke(ctx context.Context, name string, args json.RawMessage) Result {
	t, ok := r.tools[name]
	if !ok {
		return fail(FailUnknownTool,
			fmt.Sprintf("no tool named %q; available tools: %s", name, strings.Join(r.Names(), ", ")))
	}

	if len(bytes.TrimSpace(args)) == 0 {
		args = json.RawMessage("{}")
	}
	if schema, ok := r.schemas[name]; ok {
		res, err := schema.Validate(gojsonschema.NewBytesLoader(args))
		if err != nil {
			return fail(FailValidation, fmt.Sprintf("arguments must be a JSON object: %v", err))
		}
		if !res.Valid() {
			msgs := make([]string, 0, len(res.Errors()))
			for _, e := range res.Errors() {
				msgs = append(msgs, e.String())
			}
			return fail(FailValidation, strings.Join(msgs, "; "))
		}
	}

	timeout := t.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		content string
		err     error
	}
	ch := make(chan outcome, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				ch <- outcome{err: fmt.Errorf("handler panicked: %v", p)}
			}
		}()
		content, err := t.Handler(ctx, args)
		ch <- outcome{content: content, err: err}
	}()

	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fail(FailTimeout, fmt.Sprintf("%s exceeded its %s timeout", name, timeout))
		}
		return fail(FailExecution, ctx.Err().Error())
	case out := <-ch:
		if out.err != nil {
			return fail(FailExecution, out.err.Error())
		}
		return Result{Content: out.content}
	}
}
