// Package metrics exports the latest poll report as Prometheus gauges.
package metrics

import (
	"context"
	"math"
	"net/http"

	"github.com/devskill-org/sunclock/report"
	"github.com/devskill-org/sunclock/solar"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Exporter is a watch.Sink that keeps a set of gauges up to date.
type Exporter struct {
	registry   *prometheus.Registry
	altitude   prometheus.Gauge
	azimuth    prometheus.Gauge
	isDaylight prometheus.Gauge
	dayPart    prometheus.Gauge
	sunrise    prometheus.Gauge
	sunset     prometheus.Gauge
	solarNoon  prometheus.Gauge
	polls      prometheus.Counter
}

// NewExporter registers the gauges on a new registry.
func NewExporter() *Exporter {
	e := &Exporter{
		registry: prometheus.NewRegistry(),
		altitude: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sun",
			Name:      "altitude",
			Help:      "sun altitude in degrees above horizon (negative = below horizon)",
		}),
		azimuth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sun",
			Name:      "azimuth",
			Help:      "sun azimuth in degrees from North (0=N, 90=E, 180=S, 270=W)",
		}),
		isDaylight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sun",
			Name:      "is_daylight",
			Help:      "1 if the day part is Day, 0 otherwise",
		}),
		dayPart: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sun",
			Name:      "day_part",
			Help:      "0 night, 1 astronomical, 2 nautical, 3 civil twilight, 4 day",
		}),
		sunrise: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sun",
			Name:      "sunrise_time",
			Help:      "today's sunrise time as Unix timestamp, NaN if there is none",
		}),
		sunset: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sun",
			Name:      "sunset_time",
			Help:      "today's sunset time as Unix timestamp, NaN if there is none",
		}),
		solarNoon: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sun",
			Name:      "solar_noon_time",
			Help:      "today's solar noon as Unix timestamp",
		}),
		polls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sunclock",
			Name:      "polls_total",
			Help:      "number of poll reports exported",
		}),
	}
	e.registry.MustRegister(
		e.altitude,
		e.azimuth,
		e.isDaylight,
		e.dayPart,
		e.sunrise,
		e.sunset,
		e.solarNoon,
		e.polls,
	)
	return e
}

// Publish implements watch.Sink.
func (e *Exporter) Publish(_ context.Context, r *report.PollReport) error {
	e.altitude.Set(r.Elevation)
	e.azimuth.Set(r.Azimuth)
	if r.DayPart == solar.Day {
		e.isDaylight.Set(1)
	} else {
		e.isDaylight.Set(0)
	}
	e.dayPart.Set(float64(r.DayPart))
	e.sunrise.Set(unix(r.Sunrise))
	e.sunset.Set(unix(r.Sunset))
	e.solarNoon.Set(unix(r.SolarNoon))
	e.polls.Inc()
	return nil
}

// Handler serves the registry in the Prometheus exposition format.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

func unix(e solar.EventTime) float64 {
	t, ok := e.Time()
	if !ok {
		return math.NaN()
	}
	return float64(t.Unix())
}
