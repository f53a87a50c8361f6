package commands

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Anmepod44/website/internal/application/errs"
	"github.com/Anmepod44/website/internal/application/interfaces"
	"github.com/Anmepod44/website/internal/domain/consts"
	"github.com/Anmepod44/website/internal/domain/entity"
	"github.com/Anmepod44/website/internal/infra/config"
	"github.com/Anmepod44/website/internal/infra/metrics"
	"github.com/google/uuid"
)

type DeploySiteInput struct {
	Request entity.BuildRequest
	Paths   entity.SitePaths
	// Region of the new bucket, the configured region when empty.
	Region string
}

type DeploySite struct {
	cfg          *config.DeployConfig
	personalizer interfaces.Personalizer
	names        interfaces.NameGenerator
	provisioner  interfaces.Provisioner
	recorder     metrics.Recorder
	outputLocks  *keyedMutex
}

func NewDeploySite(
	cfg *config.DeployConfig, personalizer interfaces.Personalizer, names interfaces.NameGenerator,
	provisioner interfaces.Provisioner, recorder metrics.Recorder,
) *DeploySite {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &DeploySite{
		cfg:          cfg,
		personalizer: personalizer,
		names:        names,
		provisioner:  provisioner,
		recorder:     recorder,
		outputLocks:  newKeyedMutex(),
	}
}

type stage struct {
	name    consts.Stage
	timeout time.Duration
	run     func(ctx context.Context) error
}

// personalize template
// generate bucket name
// create bucket, unblock public access, upload folder, apply policy, enable hosting
// return website url
//
// The first failing stage stops the pipeline. Nothing is cleaned up, a bucket created
// before the failure stays as it is.
func (c *DeploySite) Execute(ctx context.Context, in DeploySiteInput) (*entity.DeploymentResult, error) {
	result := &entity.DeploymentResult{ID: uuid.NewString()}
	log := slog.With("deployment", result.ID)
	started := time.Now()
	defer func() {
		c.recorder.ObserveDeploymentDuration(time.Since(started))
	}()

	region := in.Region
	if region == "" {
		region = c.cfg.Region
	}

	// the rendered file lives at a shared path until it has been uploaded
	unlock := c.outputLocks.lock(in.Paths.OutputPath)
	defer unlock()

	err := c.runStage(ctx, log, result, stage{
		name:    consts.StagePersonalize,
		timeout: c.cfg.StageTimeout,
		run: func(context.Context) error {
			return c.personalizer.Personalize(in.Paths.TemplatePath, in.Paths.OutputPath, in.Request)
		},
	})
	if err != nil {
		return c.fail(log, result, err)
	}

	bucket := entity.Bucket{Name: c.names.Generate(c.cfg.BucketNameLength), Region: region}
	result.Bucket = bucket
	log.Info("Generated bucket name", "bucket", bucket.Name, "region", region)

	stages := []stage{
		{consts.StageCreateBucket, c.cfg.StageTimeout, func(ctx context.Context) error {
			return c.provisioner.CreateBucket(ctx, bucket)
		}},
		{consts.StageUnblockPublicAccess, c.cfg.StageTimeout, func(ctx context.Context) error {
			return c.provisioner.UnblockPublicAccess(ctx, bucket)
		}},
		{consts.StageUploadFolder, c.cfg.UploadTimeout, func(ctx context.Context) error {
			return c.provisioner.UploadFolder(ctx, bucket, in.Paths.FolderPath)
		}},
		{consts.StageApplyPolicy, c.cfg.StageTimeout, func(ctx context.Context) error {
			return c.provisioner.ApplyPublicReadPolicy(ctx, bucket)
		}},
		{consts.StageEnableHosting, c.cfg.StageTimeout, func(ctx context.Context) error {
			return c.provisioner.EnableWebsiteHosting(ctx, bucket)
		}},
	}
	for _, s := range stages {
		err := c.runStage(ctx, log, result, s)
		if s.name == consts.StageUploadFolder {
			unlock()
		}
		if err != nil {
			return c.fail(log, result, err)
		}
	}

	result.WebsiteURL = c.provisioner.WebsiteURL(bucket)
	result.Succeeded = true
	c.recorder.IncDeploymentOutcome(consts.OutcomeSucceeded)
	log.Info("Website deployed", "bucket", bucket.Name, "url", result.WebsiteURL, "took", time.Since(started))
	return result, nil
}

func (c *DeploySite) runStage(ctx context.Context, log *slog.Logger, result *entity.DeploymentResult, s stage) error {
	result.Stage = s.name
	if err := ctx.Err(); err != nil {
		c.recorder.IncStageResult(s.name, metrics.ResultCanceled)
		return &errs.StageError{Stage: s.name, Err: err}
	}

	stageCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	started := time.Now()
	err := s.run(stageCtx)
	took := time.Since(started)
	c.recorder.ObserveStageDuration(s.name, took)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			c.recorder.IncStageResult(s.name, metrics.ResultCanceled)
		} else {
			c.recorder.IncStageResult(s.name, metrics.ResultFailed)
		}
		return &errs.StageError{Stage: s.name, Err: err}
	}
	c.recorder.IncStageResult(s.name, metrics.ResultSuccess)
	log.Info("Stage completed", "stage", s.name, "took", took)
	return nil
}

func (c *DeploySite) fail(log *slog.Logger, result *entity.DeploymentResult, err error) (*entity.DeploymentResult, error) {
	result.Succeeded = false
	result.Cause = err
	if errors.Is(err, context.Canceled) {
		c.recorder.IncDeploymentOutcome(consts.OutcomeCanceled)
	} else {
		c.recorder.IncDeploymentOutcome(consts.OutcomeFailed)
	}
	log.Error("Deployment failed", "stage", result.Stage, "bucket", result.Bucket.Name, "err", err)
	return result, err
}

type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refMutex)}
}

// lock returns an unlock func that is safe to call more than once.
// A key's entry is dropped once nobody holds or waits for it.
func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	var once sync.Once
	return func() {
		once.Do(func() {
			m.Unlock()
			k.mu.Lock()
			m.refs--
			if m.refs == 0 {
				delete(k.locks, key)
			}
			k.mu.Unlock()
		})
	}
}
