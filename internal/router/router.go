package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"switchboard/internal/agent"
	"switchboard/internal/llm"
)

// ErrUnknownAgent reports an explicit agent_type that names no registered
// profile. Explicit selectors never fall back silently.
var ErrUnknownAgent = errors.New("router: unknown agent type")

// Router selects which agent profile, or ordered chain of profiles, handles
// a request. An explicit selector is authoritative; otherwise a single-shot
// classification call picks the best capability match. Classification
// verdicts are cached by message so repeated requests do not re-ask the
// backend.
type Router struct {
	factory      *agent.Factory
	classifier   llm.Provider
	defaultAgent string
	chaining     bool
	cache        *lru.Cache[string, string]
}

func New(factory *agent.Factory, classifier llm.Provider, defaultAgent string, chaining bool, cacheSize int) (*Router, error) {
	if _, ok := factory.Profile(defaultAgent); !ok {
		return nil, fmt.Errorf("router: default agent %q is not a registered profile", defaultAgent)
	}
	if cacheSize <= 0 {
		cacheSize = 256
	}
	cache, err := lru.New[string, string](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Router{
		factory:      factory,
		classifier:   classifier,
		defaultAgent: defaultAgent,
		chaining:     chaining,
		cache:        cache,
	}, nil
}

// Decision names the profiles a request will run, in order. More than one
// entry means a sequential chain.
type Decision struct {
	Profiles []string
}

// Route decides which profile(s) serve the request. The classification call
// is a bounded single-shot operation outside the run's budget.
func (r *Router) Route(ctx context.Context, explicit, message string) (Decision, error) {
	if explicit != "" {
		if _, ok := r.factory.Profile(explicit); !ok {
			return Decision{}, fmt.Errorf("%w: %q", ErrUnknownAgent, explicit)
		}
		return Decision{Profiles: []string{explicit}}, nil
	}

	verdict, ok := r.cache.Get(message)
	if !ok {
		var err error
		verdict, err = r.classify(ctx, message)
		if err != nil {
			return Decision{}, err
		}
		r.cache.Add(message, verdict)
	}

	decision := r.parseVerdict(verdict)
	slog.Debug("router: classified", "verdict", verdict, "profiles", decision.Profiles)
	return decision, nil
}

func (r *Router) classify(ctx context.Context, message string) (string, error) {
	var b strings.Builder
	b.WriteString("Analyze this request and decide which specialist agent should handle it:\n\n")
	fmt.Fprintf(&b, "Request: %q\n\nAvailable agents:\n", message)
	for _, name := range r.factory.Profiles() {
		p, _ := r.factory.Profile(name)
		fmt.Fprintf(&b, "- %s: %s\n", name, p.Description)
	}
	b.WriteString("\nRespond with ONLY ONE line in one of these formats:\nSINGLE: agent_name\n")
	if r.chaining {
		b.WriteString("CHAIN: agent1, agent2\n\nUse CHAIN only when the request genuinely needs one agent's output handed to another.\n")
	}

	return r.classifier.Complete(ctx, []llm.Message{
		{Role: "system", Content: b.String()},
	})
}

// parseVerdict decodes the classifier's reply. Unknown names and malformed
// verdicts degrade to the default profile; a CHAIN verdict degrades to its
// first profile when chaining is disabled.
func (r *Router) parseVerdict(verdict string) Decision {
	line := strings.TrimSpace(verdict)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	upper := strings.ToUpper(line)

	switch {
	case strings.HasPrefix(upper, "SINGLE:"):
		name := strings.ToLower(strings.TrimSpace(line[len("SINGLE:"):]))
		if _, ok := r.factory.Profile(name); ok {
			return Decision{Profiles: []string{name}}
		}
	case strings.HasPrefix(upper, "CHAIN:"):
		var known []string
		for _, part := range strings.Split(line[len("CHAIN:"):], ",") {
			name := strings.ToLower(strings.TrimSpace(part))
			if _, ok := r.factory.Profile(name); ok {
				known = append(known, name)
			}
		}
		if len(known) > 0 {
			if !r.chaining {
				return Decision{Profiles: known[:1]}
			}
			return Decision{Profiles: known}
		}
	}

	slog.Debug("router: falling back to default profile", "verdict", verdict)
	return Decision{Profiles: []string{r.defaultAgent}}
}
