package agent

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	"switchboard/internal/tool"
	"switchboard/internal/trace"
)

// invokeTraced runs one tool invocation inside its own span.
func invokeTraced(ctx context.Context, reg *tool.Registry, name string, args json.RawMessage) tool.Result {
	ctx, span := trace.Tracer().Start(ctx, "tool."+name,
		oteltrace.WithAttributes(
			attribute.String("gen_ai.tool.name", name),
			attribute.String("gen_ai.tool.input", string(args)),
		),
	)
	defer span.End()

	res := reg.Invoke(ctx, name, args)
	if res.Failure != nil {
		span.SetStatus(codes.Error, res.Failure.Message)
		span.SetAttributes(attribute.String("gen_ai.tool.failure_kind", string(res.Failure.Kind)))
		return res
	}
	span.SetAttributes(attribute.Int("gen_ai.tool.output_length", len(res.Content)))
	return res
}
