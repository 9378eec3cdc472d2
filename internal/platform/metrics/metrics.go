package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRegistry returns a registry preloaded with Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler exposes reg in the Prometheus text format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// Metrics holds the account-level counters shared by the identity module.
type Metrics struct {
	UsersCreated  prometheus.Counter
	LoginAttempts *prometheus.CounterVec
}

// New registers the account counters with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		UsersCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "onboard_users_created_total",
			Help: "Total number of accounts registered",
		}),
		LoginAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "onboard_login_attempts_total",
			Help: "Login attempts labelled by result",
		}, []string{"result"}),
	}
}

func (m *Metrics) IncrementUsersCreated() {
	m.UsersCreated.Inc()
}

func (m *Metrics) IncrementLogin(result string) {
	m.LoginAttempts.WithLabelValues(result).Inc()
}
