package metrics

import (
	"time"

	"github.com/Anmepod44/website/internal/domain/consts"
)

type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultFailed   ResultLabel = "failed"
	ResultCanceled ResultLabel = "canceled"
)

// Recorder receives deployment pipeline observations.
type Recorder interface {
	ObserveStageDuration(stage consts.Stage, d time.Duration)
	IncStageResult(stage consts.Stage, result ResultLabel)
	ObserveDeploymentDuration(d time.Duration)
	IncDeploymentOutcome(outcome consts.Outcome)
}

// NoopRecorder is used when metrics are not configured.
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(consts.Stage, time.Duration) {}
func (NoopRecorder) IncStageResult(consts.Stage, ResultLabel)         {}
func (NoopRecorder) ObserveDeploymentDuration(time.Duration)          {}
func (NoopRecorder) IncDeploymentOutcome(consts.Outcome)              {}
