package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/Anmepod44/website/internal/application"
	"github.com/Anmepod44/website/internal/application/commands"
	"github.com/Anmepod44/website/internal/infra/config"
	"github.com/Anmepod44/website/internal/infra/metrics"
	"github.com/Anmepod44/website/internal/infra/naming"
	"github.com/Anmepod44/website/internal/infra/storage"
	"github.com/Anmepod44/website/internal/infra/template"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type components struct {
	deployCfg *config.DeployConfig
	serverCfg *config.ServerConfig
	registry  *prometheus.Registry
	handlers  *application.Handlers
}

func setupLogger(format string) {
	if format == "json" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}
}

func newComponents(ctx context.Context) (*components, error) {
	serverCfg := config.NewServerConfig()
	setupLogger(serverCfg.LogFormat)

	deployCfg := config.NewDeployConfig()
	if err := deployCfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid deploy config: %w", err)
	}

	// AWS
	cfg, err := awsConfig.LoadDefaultConfig(ctx, awsConfig.WithDefaultRegion(deployCfg.Region))
	if err != nil {
		return nil, fmt.Errorf("can't load aws config: %w", err)
	}
	s3 := storage.NewStorage(cfg, deployCfg)

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewPrometheusRecorder(registry)

	handlers := &application.Handlers{
		DeploySite: commands.NewDeploySite(deployCfg, template.NewPersonalizer(), naming.NewGenerator(), s3, recorder),
	}
	return &components{
		deployCfg: deployCfg,
		serverCfg: serverCfg,
		registry:  registry,
		handlers:  handlers,
	}, nil
}
