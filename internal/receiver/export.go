package receiver

import (
	"context"

	semconv "go.opentelemetry.io/otel/semconv/v1.25.0"
	coltracepb "go.opentelemetry.io/proto/otlp/collector/trace/v1"
	tracepb "go.opentelemetry.io/proto/otlp/trace/v1"
	"go.uber.org/zap"
)

const noChannelMessage = "receiver has no event channel"

func (s *server) Export(
	ctx context.Context, in *coltracepb.ExportTraceServiceRequest,
) (*coltracepb.ExportTraceServiceResponse, error) {
	total := countSpans(in)
	if s.ch == nil {
		return rejected(int64(total), noChannelMessage), nil
	}

	delivered := 0
	for _, resourceSpan := range in.ResourceSpans {
		source := extractServiceName(resourceSpan)

		for _, scopeSpan := range resourceSpan.ScopeSpans {
			for _, span := range scopeSpan.Spans {
				event := &Event{
					Kind:        span.Name,
					Source:      source,
					TimestampMs: int64(span.StartTimeUnixNano / 1e6),
				}

				select {
				case s.ch <- event:
					delivered++
				case <-ctx.Done():
					s.logger.Warn("export cancelled before all events were delivered",
						zap.Int("delivered", delivered),
						zap.Int("total", total),
						zap.Error(ctx.Err()))

					return rejected(int64(total-delivered), ctx.Err().Error()), nil
				}
			}
		}
	}

	s.logger.Debug("exported activity events", zap.Int("events", delivered))

	return rejected(0, ""), nil
}

func rejected(count int64, message string) *coltracepb.ExportTraceServiceResponse {
	return &coltracepb.ExportTraceServiceResponse{
		PartialSuccess: &coltracepb.ExportTracePartialSuccess{
			RejectedSpans: count,
			ErrorMessage:  message,
		},
	}
}

func countSpans(in *coltracepb.ExportTraceServiceRequest) int {
	total := 0
	for _, resourceSpan := range in.ResourceSpans {
		for _, scopeSpan := range resourceSpan.ScopeSpans {
			total += len(scopeSpan.Spans)
		}
	}

	return total
}

func extractServiceName(spans *tracepb.ResourceSpans) string {
	if spans.Resource == nil || spans.Resource.Attributes == nil {
		return ""
	}

	for _, attribute := range spans.Resource.Attributes {
		if attribute.Key == string(semconv.ServiceNameKey) {
			return attribute.Value.GetStringValue()
		}
	}

	return ""
}
