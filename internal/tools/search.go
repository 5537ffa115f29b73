package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	bravesearch "github.com/cnosuke/go-brave-search"

	"switchboard/internal/tool"
)

// Search returns a web search tool backed by Brave.
func Search(braveAPIKey string) (tool.Tool, error) {
	client, err := bravesearch.NewClient(braveAPIKey)
	if err != nil {
		return tool.Tool{}, fmt.Errorf("creating brave client: %w", err)
	}
	s := &searcher{brave: client}

	return tool.Tool{
		Name: "search",
		Description: "Search the web for information. " +
			"Returns result titles, URLs and snippets. " +
			"Example: {\"query\": \"fusion energy breakthroughs\"}",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"query": {
					"type": "string",
					"description": "The search query"
				},
				"count": {
					"type": "integer",
					"description": "Number of results to return (default 5, max 20)"
				}
			},
			"required": ["query"],
			"additionalProperties": false
		}`),
		Timeout: 30 * time.Second,
		Handler: s.run,
	}, nil
}

type searcher struct {
	brave *bravesearch.Client
}

func (s *searcher) run(ctx context.Context, args json.RawMessage) (string, error) {
	var in struct {
		Query string `json:"query"`
		Count int    `json:"count"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("parsing search input: %w", err)
	}
	if in.Count <= 0 {
		in.Count = 5
	}
	if in.Count > 20 {
		in.Count = 20
	}

	slog.Debug("search: querying", "query", in.Query, "count", in.Count)

	resp, err := s.brave.WebSearch(ctx, in.Query, &bravesearch.WebSearchParams{
		Count: in.Count,
	})
	if err != nil {
		return "", fmt.Errorf("brave search: %w", err)
	}

	results := resp.GetWebResults()
	if len(results) == 0 {
		return "No results found.", nil
	}

	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n---\n")
		}
		fmt.Fprintf(&b, "%s\n%s\n%s", r.Title, r.URL, r.Description)
	}

	slog.Debug("search: done", "query", in.Query, "results", len(results))
	return truncate([]byte(b.String())), nil
}
