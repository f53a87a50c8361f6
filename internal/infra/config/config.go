package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Anmepod44/website/internal/domain/consts"
	"github.com/Anmepod44/website/internal/domain/entity"
	"github.com/Anmepod44/website/pkg/env"
)

const (
	minBucketNameLength = 3
	maxBucketNameLength = 63
)

type DeployConfig struct {
	TemplatesFolder   string
	SiteFolder        string
	OutputPath        string
	Region            string
	BucketNameLength  int
	UploadConcurrency int
	StageTimeout      time.Duration
	UploadTimeout     time.Duration
	IndexDocument     string
	ErrorDocument     string
	UsePathStyle      bool
}

func NewDeployConfig() *DeployConfig {
	wd, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	slog.Info("Current working directory", "config", wd)
	siteFolder := env.GetEnv("SB_SITE_FOLDER", filepath.Join(wd, "web", "site"))
	return &DeployConfig{
		TemplatesFolder:   env.GetEnv("SB_TEMPLATES_FOLDER", filepath.Join(wd, "web", "templates")),
		SiteFolder:        siteFolder,
		OutputPath:        env.GetEnv("SB_OUTPUT_PATH", filepath.Join(siteFolder, "index.html")),
		Region:            env.GetEnv("AWS_DEFAULT_REGION", "eu-north-1"),
		BucketNameLength:  env.GetEnvInt("SB_BUCKET_NAME_LENGTH", 8),
		UploadConcurrency: env.GetEnvInt("SB_UPLOAD_CONCURRENCY", 4),
		StageTimeout:      env.GetEnvDuration("SB_STAGE_TIMEOUT", 30*time.Second),
		UploadTimeout:     env.GetEnvDuration("SB_UPLOAD_TIMEOUT", 120*time.Second),
		IndexDocument:     env.GetEnv("SB_INDEX_DOCUMENT", "index.html"),
		ErrorDocument:     env.GetEnv("SB_ERROR_DOCUMENT", "error.html"),
		UsePathStyle:      env.GetEnvBool("SB_S3_PATH_STYLE", false),
	}
}

func (c *DeployConfig) Validate() error {
	if c.BucketNameLength < minBucketNameLength || c.BucketNameLength > maxBucketNameLength {
		return fmt.Errorf("bucket name length must be between %d and %d, got %d",
			minBucketNameLength, maxBucketNameLength, c.BucketNameLength)
	}
	if c.UploadConcurrency < 1 {
		return fmt.Errorf("upload concurrency must be positive, got %d", c.UploadConcurrency)
	}
	if c.StageTimeout <= 0 || c.UploadTimeout <= 0 {
		return fmt.Errorf("stage timeouts must be positive")
	}
	return nil
}

// SitePaths resolves the template variant to concrete files. An empty variant means the personal template.
func (c *DeployConfig) SitePaths(variant consts.TemplateVariant) (entity.SitePaths, error) {
	if variant == "" {
		variant = consts.PersonalTemplate
	}
	switch variant {
	case consts.PersonalTemplate, consts.PortfolioTemplate:
	default:
		return entity.SitePaths{}, fmt.Errorf("unknown template %q", variant)
	}
	return entity.SitePaths{
		TemplatePath: filepath.Join(c.TemplatesFolder, string(variant)+".html"),
		OutputPath:   c.OutputPath,
		FolderPath:   c.SiteFolder,
	}, nil
}

type ServerConfig struct {
	ListenAddr     string
	AllowOrigins   string
	RequestTimeout time.Duration
	LogFormat      string
}

func NewServerConfig() *ServerConfig {
	return &ServerConfig{
		ListenAddr:     env.GetEnv("SB_LISTEN_ADDR", ":8080"),
		AllowOrigins:   env.GetEnv("SB_CORS_ORIGINS", "http://localhost:3000"),
		RequestTimeout: env.GetEnvDuration("SB_REQUEST_TIMEOUT", 5*time.Minute),
		LogFormat:      strings.ToLower(env.GetEnv("SB_LOG_FORMAT", "text")),
	}
}
