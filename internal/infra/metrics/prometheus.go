package metrics

import (
	"net/http"
	"time"

	"github.com/Anmepod44/website/internal/domain/consts"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type PrometheusRecorder struct {
	stageDuration      *prom.HistogramVec
	stageResults       *prom.CounterVec
	deploymentDuration prom.Histogram
	deploymentOutcome  *prom.CounterVec
}

// NewPrometheusRecorder registers the pipeline metrics on reg, a fresh registry when nil.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "sitebuilder",
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual deployment stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		stageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitebuilder",
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"}),
		deploymentDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "sitebuilder",
			Name:      "deployment_duration_seconds",
			Help:      "Total deployment duration",
			Buckets:   []float64{1, 2.5, 5, 10, 20, 40, 80, 160},
		}),
		deploymentOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitebuilder",
			Name:      "deployment_outcomes_total",
			Help:      "Deployment outcomes by final status",
		}, []string{"outcome"}),
	}
	reg.MustRegister(pr.stageDuration, pr.stageResults, pr.deploymentDuration, pr.deploymentOutcome)
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage consts.Stage, d time.Duration) {
	p.stageDuration.WithLabelValues(string(stage)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage consts.Stage, result ResultLabel) {
	p.stageResults.WithLabelValues(string(stage), string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveDeploymentDuration(d time.Duration) {
	p.deploymentDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncDeploymentOutcome(outcome consts.Outcome) {
	p.deploymentOutcome.WithLabelValues(string(outcome)).Inc()
}

// HTTPHandler serves the metrics of reg.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
