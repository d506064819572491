package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.mongodb.org/mongo-driver/event"
)

var (
	MongoOpenConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mongo_open_connections",
			Help: "Current number of open MongoDB connections",
		},
	)

	MongoConnectionsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mongo_connections_created_total",
			Help: "Total number of MongoDB connections created",
		},
	)

	MongoConnectionsClosed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mongo_connections_closed_total",
			Help: "Total number of MongoDB connections closed",
		},
	)
)

// PoolMonitor feeds driver pool events into the Prometheus gauges above.
func PoolMonitor() *event.PoolMonitor {
	return &event.PoolMonitor{
		Event: func(evt *event.PoolEvent) {
			switch evt.Type {
			case event.ConnectionCreated:
				MongoConnectionsCreated.Inc()
				MongoOpenConnections.Inc()
			case event.ConnectionClosed:
				MongoConnectionsClosed.Inc()
				MongoOpenConnections.Dec()
			}
		},
	}
}
