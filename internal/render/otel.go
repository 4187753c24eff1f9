package render

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/csdemo/siteview/internal/render"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
