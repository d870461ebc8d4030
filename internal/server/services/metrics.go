package services

import (
	"context"

	"github.com/dmitrijs2005/fitkeeper/internal/logging"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "fitkeeper/services"

// newCounter creates a counter on mp. A counter that cannot be created is
// logged and replaced by a no-op one.
func newCounter(mp metric.MeterProvider, logger logging.Logger, name, description string) metric.Int64Counter {
	c, err := mp.Meter(meterName).Int64Counter(name, metric.WithDescription(description))
	if err != nil {
		logger.Warn(context.Background(), "metric instrument unavailable", "name", name, "error", err)
		return noop.Int64Counter{}
	}
	return c
}
