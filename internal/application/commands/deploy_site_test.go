package commands_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Anmepod44/website/internal/application/commands"
	"github.com/Anmepod44/website/internal/application/errs"
	"github.com/Anmepod44/website/internal/domain/consts"
	"github.com/Anmepod44/website/internal/domain/entity"
	"github.com/Anmepod44/website/internal/infra/config"
	"github.com/Anmepod44/website/internal/infra/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type callLog struct {
	mu    sync.Mutex
	calls []consts.Stage
}

func (l *callLog) add(s consts.Stage) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, s)
}

func (l *callLog) all() []consts.Stage {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]consts.Stage(nil), l.calls...)
}

type fakePersonalizer struct {
	log *callLog
	err error
	got entity.BuildRequest
}

func (f *fakePersonalizer) Personalize(_, _ string, req entity.BuildRequest) error {
	f.log.add(consts.StagePersonalize)
	f.got = req
	return f.err
}

type fixedNames struct{ name string }

func (f fixedNames) Generate(int) string { return f.name }

type fakeProvisioner struct {
	log      *callLog
	failAt   consts.Stage
	err      error
	blockAt  consts.Stage
	buckets  []entity.Bucket
	uploaded string
}

func (f *fakeProvisioner) step(ctx context.Context, s consts.Stage) error {
	f.log.add(s)
	if f.blockAt == s {
		<-ctx.Done()
		return ctx.Err()
	}
	if f.failAt == s {
		return f.err
	}
	return nil
}

func (f *fakeProvisioner) CreateBucket(ctx context.Context, bucket entity.Bucket) error {
	f.buckets = append(f.buckets, bucket)
	return f.step(ctx, consts.StageCreateBucket)
}

func (f *fakeProvisioner) UnblockPublicAccess(ctx context.Context, _ entity.Bucket) error {
	return f.step(ctx, consts.StageUnblockPublicAccess)
}

func (f *fakeProvisioner) UploadFolder(ctx context.Context, _ entity.Bucket, dir string) error {
	f.uploaded = dir
	return f.step(ctx, consts.StageUploadFolder)
}

func (f *fakeProvisioner) ApplyPublicReadPolicy(ctx context.Context, _ entity.Bucket) error {
	return f.step(ctx, consts.StageApplyPolicy)
}

func (f *fakeProvisioner) EnableWebsiteHosting(ctx context.Context, _ entity.Bucket) error {
	return f.step(ctx, consts.StageEnableHosting)
}

func (f *fakeProvisioner) WebsiteURL(bucket entity.Bucket) string {
	return storage.WebsiteURL(bucket.Name, bucket.Region)
}

var allStages = []consts.Stage{
	consts.StagePersonalize,
	consts.StageCreateBucket,
	consts.StageUnblockPublicAccess,
	consts.StageUploadFolder,
	consts.StageApplyPolicy,
	consts.StageEnableHosting,
}

func testConfig() *config.DeployConfig {
	return &config.DeployConfig{
		Region:            "eu-north-1",
		BucketNameLength:  8,
		UploadConcurrency: 2,
		StageTimeout:      time.Second,
		UploadTimeout:     time.Second,
	}
}

func testInput() commands.DeploySiteInput {
	return commands.DeploySiteInput{
		Request: entity.BuildRequest{
			Name:         "Jane",
			Phone:        "555-1234",
			Email:        "jane@x.com",
			BusinessName: "acme plumbing",
			CTALinks:     entity.CTALinks{consts.Facebook: "https://fb.com/acme"},
		},
		Paths: entity.SitePaths{
			TemplatePath: "templates/personal.html",
			OutputPath:   "site/index.html",
			FolderPath:   "site",
		},
	}
}

func newSUT(personalizer *fakePersonalizer, provisioner *fakeProvisioner) *commands.DeploySite {
	return commands.NewDeploySite(testConfig(), personalizer, fixedNames{"k3j9x0ab"}, provisioner, nil)
}

func Test_Execute_When_All_Stages_Succeed_Then_Returns_Website_URL(t *testing.T) {
	log := &callLog{}
	personalizer := &fakePersonalizer{log: log}
	provisioner := &fakeProvisioner{log: log}
	SUT := newSUT(personalizer, provisioner)

	result, err := SUT.Execute(context.Background(), testInput())
	require.NoError(t, err)

	require.True(t, result.Succeeded)
	require.NotEmpty(t, result.ID)
	require.Equal(t, "http://k3j9x0ab.s3-website.eu-north-1.amazonaws.com/", result.WebsiteURL)
	require.Equal(t, entity.Bucket{Name: "k3j9x0ab", Region: "eu-north-1"}, result.Bucket)
	require.Equal(t, consts.StageEnableHosting, result.Stage)
	require.Equal(t, allStages, log.all())
	require.Equal(t, "site", provisioner.uploaded)
	require.Equal(t, "acme plumbing", personalizer.got.BusinessName)
}

func Test_Execute_Given_Region_Then_Bucket_Created_There(t *testing.T) {
	log := &callLog{}
	provisioner := &fakeProvisioner{log: log}
	SUT := newSUT(&fakePersonalizer{log: log}, provisioner)
	in := testInput()
	in.Region = "us-west-2"

	result, err := SUT.Execute(context.Background(), in)
	require.NoError(t, err)

	require.Equal(t, "us-west-2", provisioner.buckets[0].Region)
	require.Equal(t, "http://k3j9x0ab.s3-website-us-west-2.amazonaws.com/", result.WebsiteURL)
}

func Test_Execute_When_Stage_Fails_Then_Later_Stages_Never_Run(t *testing.T) {
	for i, failing := range allStages {
		t.Run(string(failing), func(t *testing.T) {
			log := &callLog{}
			stageErr := fmt.Errorf("%s exploded", failing)
			personalizer := &fakePersonalizer{log: log}
			provisioner := &fakeProvisioner{log: log}
			if failing == consts.StagePersonalize {
				personalizer.err = stageErr
			} else {
				provisioner.failAt = failing
				provisioner.err = stageErr
			}
			SUT := newSUT(personalizer, provisioner)

			result, err := SUT.Execute(context.Background(), testInput())

			require.ErrorIs(t, err, stageErr)
			var se *errs.StageError
			require.ErrorAs(t, err, &se)
			require.Equal(t, failing, se.Stage)

			require.False(t, result.Succeeded)
			require.Empty(t, result.WebsiteURL)
			require.Equal(t, failing, result.Stage)
			require.ErrorIs(t, result.Cause, stageErr)
			require.Equal(t, allStages[:i+1], log.all())
		})
	}
}

func Test_Execute_When_Bucket_Name_Taken_Then_Nothing_Is_Uploaded(t *testing.T) {
	log := &callLog{}
	provisioner := &fakeProvisioner{
		log:    log,
		failAt: consts.StageCreateBucket,
		err:    fmt.Errorf("creating bucket k3j9x0ab: %w", errs.ErrBucketNameTaken),
	}
	SUT := newSUT(&fakePersonalizer{log: log}, provisioner)

	result, err := SUT.Execute(context.Background(), testInput())

	require.ErrorIs(t, err, errs.ErrBucketNameTaken)
	require.False(t, result.Succeeded)
	require.Empty(t, provisioner.uploaded)
	require.NotContains(t, log.all(), consts.StageUploadFolder)
	require.NotContains(t, log.all(), consts.StageApplyPolicy)
	require.NotContains(t, log.all(), consts.StageEnableHosting)
}

func Test_Execute_When_Context_Already_Canceled_Then_No_Stage_Runs(t *testing.T) {
	log := &callLog{}
	SUT := newSUT(&fakePersonalizer{log: log}, &fakeProvisioner{log: log})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := SUT.Execute(ctx, testInput())

	require.ErrorIs(t, err, context.Canceled)
	require.False(t, result.Succeeded)
	require.Equal(t, consts.StagePersonalize, result.Stage)
	require.Empty(t, log.all())
}

func Test_Execute_When_Stage_Hangs_Then_Times_Out_And_Aborts(t *testing.T) {
	log := &callLog{}
	provisioner := &fakeProvisioner{log: log, blockAt: consts.StageUnblockPublicAccess}
	cfg := testConfig()
	cfg.StageTimeout = 20 * time.Millisecond
	SUT := commands.NewDeploySite(cfg, &fakePersonalizer{log: log}, fixedNames{"k3j9x0ab"}, provisioner, nil)

	result, err := SUT.Execute(context.Background(), testInput())

	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Equal(t, consts.StageUnblockPublicAccess, result.Stage)
	require.Equal(t, allStages[:3], log.all())
}

func Test_Execute_Concurrent_Deployments_Do_Not_Interleave_Render_And_Upload(t *testing.T) {
	log := &callLog{}
	provisioner := &sharedProvisioner{fakeProvisioner: fakeProvisioner{log: log}}
	SUT := commands.NewDeploySite(testConfig(), &lockedPersonalizer{log: log}, fixedNames{"k3j9x0ab"}, provisioner, nil)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := SUT.Execute(context.Background(), testInput())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// every render must be followed by its upload before the next render
	var pending bool
	for _, s := range log.all() {
		switch s {
		case consts.StagePersonalize:
			require.False(t, pending, "render started before previous upload finished")
			pending = true
		case consts.StageUploadFolder:
			require.True(t, pending)
			pending = false
		}
	}
	require.False(t, pending)
}

type lockedPersonalizer struct {
	log *callLog
}

func (p *lockedPersonalizer) Personalize(string, string, entity.BuildRequest) error {
	p.log.add(consts.StagePersonalize)
	return nil
}

// sharedProvisioner guards the fake's bucket slice for concurrent deployments.
type sharedProvisioner struct {
	mu sync.Mutex
	fakeProvisioner
}

func (p *sharedProvisioner) CreateBucket(ctx context.Context, bucket entity.Bucket) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fakeProvisioner.CreateBucket(ctx, bucket)
}

func (p *sharedProvisioner) UploadFolder(ctx context.Context, bucket entity.Bucket, dir string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fakeProvisioner.UploadFolder(ctx, bucket, dir)
}
