package otel

import (
	"go.opentelemetry.io/otel"

	"github.com/greenplate/ordering/internal/constants"
)

var Tracer = otel.Tracer(constants.AppCartStore)
