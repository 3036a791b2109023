// Package metrics exposes lottery counters to Prometheus.
package metrics

import (
	"net/http"
	"strconv"

	"classdraw/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the lottery service reports to.
type Recorder interface {
	RecordDraw(won bool, level int)
	RecordRegistration()
	SetRemaining(prizes []models.Prize)
}

// Collector is the Prometheus-backed Recorder.
type Collector struct {
	draws         *prometheus.CounterVec
	awards        *prometheus.CounterVec
	registrations prometheus.Counter
	remaining     *prometheus.GaugeVec
}

// NewCollector creates a Collector and registers it with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		draws: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "classdraw_draws_total",
			Help: "Completed draws by outcome.",
		}, []string{"outcome"}),
		awards: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "classdraw_awards_total",
			Help: "Prizes awarded by level.",
		}, []string{"level"}),
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "classdraw_registrations_total",
			Help: "Students registered on first login.",
		}),
		remaining: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "classdraw_prize_remaining",
			Help: "Remaining stock per prize.",
		}, []string{"prize_id", "level"}),
	}

	reg.MustRegister(c.draws, c.awards, c.registrations, c.remaining)
	return c
}

func (c *Collector) RecordDraw(won bool, level int) {
	if !won {
		c.draws.WithLabelValues("lose").Inc()
		return
	}
	c.draws.WithLabelValues("win").Inc()
	c.awards.WithLabelValues(strconv.Itoa(level)).Inc()
}

func (c *Collector) RecordRegistration() {
	c.registrations.Inc()
}

func (c *Collector) SetRemaining(prizes []models.Prize) {
	for _, p := range prizes {
		c.remaining.WithLabelValues(strconv.Itoa(p.ID), strconv.Itoa(p.Level)).Set(float64(p.Remaining))
	}
}

// Handler serves the registry in the Prometheus text format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordDraw(bool, int) {}
func (Nop) RecordRegistration() {}
func (Nop) SetRemaining([]models.Prize) {}

var (
	_ Recorder = (*Collector)(nil)
	_ Recorder = Nop{}
)
