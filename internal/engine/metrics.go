package engine

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/scutrobotlab/SimulatorX-sub000/pkg/logger"
)

const instrumentationName = "github.com/scutrobotlab/SimulatorX-sub000/internal/engine"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// kernelMetrics - счётчики шины и цикла. Без настроенного провайдера OTel это no-op.
type kernelMetrics struct {
	sent      metric.Int64Counter
	delivered metric.Int64Counter
	faults    metric.Int64Counter
	dropped   metric.Int64Counter
	ticks     metric.Int64Counter
	tickTime  metric.Float64Histogram
}

func newKernelMetrics() *kernelMetrics {
	km, err := buildKernelMetrics(meter())
	if err != nil {
		logger.Log.WithError(err).Warn("otel metrics unavailable, falling back to noop")
		km, _ = buildKernelMetrics(noop.NewMeterProvider().Meter(instrumentationName))
	}
	return km
}

func buildKernelMetrics(m metric.Meter) (*kernelMetrics, error) {
	km := &kernelMetrics{}
	var err error

	if km.sent, err = m.Int64Counter("dispatch.actions.sent",
		metric.WithDescription("Actions published on the bus")); err != nil {
		return nil, err
	}
	if km.delivered, err = m.Int64Counter("dispatch.deliveries",
		metric.WithDescription("Action deliveries to receivers")); err != nil {
		return nil, err
	}
	if km.faults, err = m.Int64Counter("dispatch.faults",
		metric.WithDescription("Receivers that panicked during delivery")); err != nil {
		return nil, err
	}
	if km.dropped, err = m.Int64Counter("dispatch.dropped",
		metric.WithDescription("Actions dropped because of dispatch depth")); err != nil {
		return nil, err
	}
	if km.ticks, err = m.Int64Counter("sim.ticks",
		metric.WithDescription("Simulation ticks executed")); err != nil {
		return nil, err
	}
	if km.tickTime, err = m.Float64Histogram("sim.tick.duration",
		metric.WithDescription("Wall time of one simulation tick"),
		metric.WithUnit("ms")); err != nil {
		return nil, err
	}
	return km, nil
}

func actionAttr(name string) metric.AddOption {
	return metric.WithAttributes(attribute.String("action", name))
}
