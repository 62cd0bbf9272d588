package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	LocationUpdates *prometheus.CounterVec
	SharingDrivers  prometheus.Gauge
	FeedClients     prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		LocationUpdates: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "fleet_location_updates_total",
			Help: "Total number of driver position reports, by outcome.",
		}, []string{"status"}),
		SharingDrivers: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "fleet_sharing_drivers",
			Help: "Number of drivers in the most recent fleet view.",
		}),
		FeedClients: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "fleet_feed_clients",
			Help: "Connected websocket feed clients.",
		}),
	}
}
