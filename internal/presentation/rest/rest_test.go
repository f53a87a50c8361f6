package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Anmepod44/website/internal/application"
	"github.com/Anmepod44/website/internal/application/commands"
	"github.com/Anmepod44/website/internal/application/dto"
	"github.com/Anmepod44/website/internal/application/errs"
	"github.com/Anmepod44/website/internal/domain/entity"
	"github.com/Anmepod44/website/internal/infra/config"
	"github.com/Anmepod44/website/internal/infra/naming"
	"github.com/Anmepod44/website/internal/infra/storage"
	"github.com/Anmepod44/website/internal/infra/template"
	"github.com/Anmepod44/website/internal/presentation/rest"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

type recordingProvisioner struct {
	mu        sync.Mutex
	createErr error
	calls     []string
	uploaded  []byte
	output    string
}

func (p *recordingProvisioner) record(call string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, call)
}

func (p *recordingProvisioner) CreateBucket(context.Context, entity.Bucket) error {
	p.record("create")
	return p.createErr
}

func (p *recordingProvisioner) UnblockPublicAccess(context.Context, entity.Bucket) error {
	p.record("unblock")
	return nil
}

func (p *recordingProvisioner) UploadFolder(context.Context, entity.Bucket, string) error {
	p.record("upload")
	uploaded, err := os.ReadFile(p.output)
	p.uploaded = uploaded
	return err
}

func (p *recordingProvisioner) ApplyPublicReadPolicy(context.Context, entity.Bucket) error {
	p.record("policy")
	return nil
}

func (p *recordingProvisioner) EnableWebsiteHosting(context.Context, entity.Bucket) error {
	p.record("hosting")
	return nil
}

func (p *recordingProvisioner) WebsiteURL(bucket entity.Bucket) string {
	return storage.WebsiteURL(bucket.Name, bucket.Region)
}

func newApp(t *testing.T, provisioner *recordingProvisioner) *fiber.App {
	t.Helper()
	siteFolder := t.TempDir()
	deployCfg := &config.DeployConfig{
		TemplatesFolder:   filepath.Join("testdata", "templates"),
		SiteFolder:        siteFolder,
		OutputPath:        filepath.Join(siteFolder, "index.html"),
		Region:            "eu-north-1",
		BucketNameLength:  8,
		UploadConcurrency: 1,
		StageTimeout:      time.Second,
		UploadTimeout:     time.Second,
	}
	provisioner.output = deployCfg.OutputPath
	serverCfg := &config.ServerConfig{RequestTimeout: 5 * time.Second}

	handlers := &application.Handlers{
		DeploySite: commands.NewDeploySite(deployCfg, template.NewPersonalizer(), naming.NewSeededGenerator(1), provisioner, nil),
	}
	app := fiber.New()
	rest.RegisterHandlers(app, rest.NewServer(handlers, deployCfg, serverCfg))
	return app
}

func decodeMessage(t *testing.T, resp *http.Response) string {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var msg dto.MessageResponse
	require.NoError(t, json.Unmarshal(body, &msg))
	return msg.Message
}

func Test_BuildSite_Given_JSON_Body_When_Deployed_Then_Returns_URL(t *testing.T) {
	provisioner := &recordingProvisioner{}
	app := newApp(t, provisioner)
	body, _ := json.Marshal(map[string]any{
		"name":          "Jane",
		"phone":         "555-1234",
		"email":         "jane@x.com",
		"business_name": "acme plumbing",
		"cta_links":     map[string]string{"facebook": "https://fb.com/acme"},
	})

	req := httptest.NewRequest(http.MethodPost, "/build", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	message := decodeMessage(t, resp)
	require.Regexp(t, `^http://[a-z0-9]{8}\.s3-website\.eu-north-1\.amazonaws\.com/$`, message)
	require.Equal(t, []string{"create", "unblock", "upload", "policy", "hosting"}, provisioner.calls)

	uploaded := string(provisioner.uploaded)
	require.Contains(t, uploaded, "<title>AcmePlumbing</title>")
	require.Contains(t, uploaded, `<a href="https://fb.com/acme"><ion-icon name="logo-facebook"></ion-icon></a>`)
	require.Contains(t, uploaded, `<a href="#"><ion-icon name="logo-twitter"></ion-icon></a>`)
}

func Test_BuildSite_Given_Form_Body_Then_Accepted(t *testing.T) {
	provisioner := &recordingProvisioner{}
	app := newApp(t, provisioner)
	form := url.Values{
		"name":          {"Jane"},
		"phone":         {"555-1234"},
		"email":         {"jane@x.com"},
		"business_name": {"acme plumbing"},
		"linkedin":      {"https://linkedin.com/company/acme"},
	}

	req := httptest.NewRequest(http.MethodPost, "/build", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(provisioner.uploaded), `<a href="https://linkedin.com/company/acme"><ion-icon name="logo-linkedin"></ion-icon></a>`)
}

func Test_BuildSite_When_Bucket_Creation_Fails_Then_Generic_Failure_And_Nothing_Uploaded(t *testing.T) {
	provisioner := &recordingProvisioner{createErr: errs.ErrBucketNameTaken}
	app := newApp(t, provisioner)
	body := `{"name":"Jane","phone":"555-1234","email":"jane@x.com","business_name":"acme plumbing"}`

	req := httptest.NewRequest(http.MethodPost, "/build", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.Equal(t, "deployment failed", decodeMessage(t, resp))
	require.Equal(t, []string{"create"}, provisioner.calls)
}

func Test_BuildSite_Given_Invalid_Input_Then_Bad_Request(t *testing.T) {
	for name, body := range map[string]string{
		"missing email":    `{"name":"Jane","phone":"555-1234","business_name":"acme"}`,
		"unknown template": `{"name":"Jane","phone":"555-1234","email":"jane@x.com","business_name":"acme","template":"blog"}`,
		"malformed json":   `{"name":`,
	} {
		provisioner := &recordingProvisioner{}
		app := newApp(t, provisioner)

		req := httptest.NewRequest(http.MethodPost, "/build", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)

		require.Equal(t, http.StatusBadRequest, resp.StatusCode, name)
		require.Empty(t, provisioner.calls, name)
	}
}

func Test_Healthcheck(t *testing.T) {
	app := newApp(t, &recordingProvisioner{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
