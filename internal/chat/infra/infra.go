// Package infra holds the text-generation clients behind port.TextGenerator.
package infra

import (
	"context"
	"errors"

	"github.com/boddenberg/cargo-chat-bfa-go/internal/domain"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
)

// tracer is the OpenTelemetry tracer for the chat/infra module.
var tracer = otel.Tracer("chat/infra")

// classify turns a guarded-call error into one of the domain error types.
func classify(service string, err error) error {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return &domain.ErrCircuitOpen{Service: service}
	case errors.Is(err, context.DeadlineExceeded):
		return &domain.ErrTimeout{Operation: service + ".generate"}
	}
	return &domain.ErrExternalService{Service: service, Err: err}
}
