package testinfra

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/localstack"
)

const localstackImage = "localstack/localstack:3.8"

// SetupAWS starts an S3-only localstack container and points the AWS SDK at it through env.
// The returned func terminates the container.
func SetupAWS(ctx context.Context) (aws.Config, func()) {
	slog.Info("SETUP AWS CONFIG")
	ls, err := localstack.Run(ctx,
		localstackImage,
		testcontainers.WithEnv(map[string]string{"SERVICES": "s3"}),
	)
	if err != nil {
		log.Panicf("failed to start localstack: %v", err)
	}
	terminate := func() {
		if err := ls.Terminate(ctx); err != nil {
			slog.Error("failed to terminate localstack", "err", err)
		}
	}

	mappedPort, err := ls.MappedPort(ctx, "4566/tcp")
	if err != nil {
		terminate()
		log.Panicf("failed to get port: %v", err)
	}
	host, err := ls.Host(ctx)
	if err != nil {
		terminate()
		log.Panicf("failed to get host: %v", err)
	}

	os.Setenv("AWS_ACCESS_KEY_ID", "test")
	os.Setenv("AWS_SECRET_ACCESS_KEY", "test")
	os.Setenv("AWS_REGION", "us-east-1")
	os.Setenv("AWS_ENDPOINT_URL", "http://"+host+":"+mappedPort.Port())

	awsCfg, err := awsConfig.LoadDefaultConfig(ctx)
	if err != nil {
		terminate()
		log.Panic("can't load aws config", err)
	}
	return awsCfg, terminate
}
