package core

import (
	"github.com/prometheus/client_golang/prometheus"

	"hallcore/pkg/domain"
)

// OccupancyCollector exports per-block occupancy gauges to Prometheus. The
// gauges are computed by full tree traversal at collect time, so they always
// reflect the committed state.
type OccupancyCollector struct {
	store     domain.PersistentStore
	rooms     *prometheus.Desc
	occupancy *prometheus.Desc
	capacity  *prometheus.Desc
}

var _ prometheus.Collector = (*OccupancyCollector)(nil)

// NewOccupancyCollector builds a collector over the store.
func NewOccupancyCollector(store domain.PersistentStore) *OccupancyCollector {
	return &OccupancyCollector{
		store: store,
		rooms: prometheus.NewDesc(
			"hall_rooms",
			"Number of rooms per block.",
			[]string{"block"}, nil,
		),
		occupancy: prometheus.NewDesc(
			"hall_occupancy",
			"Number of resident students per block.",
			[]string{"block"}, nil,
		),
		capacity: prometheus.NewDesc(
			"hall_capacity",
			"Total bed capacity per block.",
			[]string{"block"}, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *OccupancyCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.rooms
	ch <- c.occupancy
	ch <- c.capacity
}

// Collect implements prometheus.Collector.
func (c *OccupancyCollector) Collect(ch chan<- prometheus.Metric) {
	type agg struct {
		rooms     int
		occupancy int
	}
	perBlock := make(map[string]agg)
	for _, b := range c.store.Blocks() {
		perBlock[b.ID] = agg{}
	}
	for _, f := range c.store.Floors() {
		a := perBlock[f.BlockID]
		a.rooms += len(f.Rooms)
		for _, r := range f.Rooms {
			a.occupancy += len(r.Students)
		}
		perBlock[f.BlockID] = a
	}
	for block, a := range perBlock {
		ch <- prometheus.MustNewConstMetric(c.rooms, prometheus.GaugeValue, float64(a.rooms), block)
		ch <- prometheus.MustNewConstMetric(c.occupancy, prometheus.GaugeValue, float64(a.occupancy), block)
		ch <- prometheus.MustNewConstMetric(c.capacity, prometheus.GaugeValue, float64(a.rooms*domain.RoomCapacity), block)
	}
}
