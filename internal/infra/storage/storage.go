package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Anmepod44/website/internal/application/errs"
	"github.com/Anmepod44/website/internal/domain/entity"
	"github.com/Anmepod44/website/internal/infra/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"golang.org/x/sync/errgroup"
)

// S3API is the part of *s3.Client the provisioner needs.
type S3API interface {
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	PutPublicAccessBlock(ctx context.Context, params *s3.PutPublicAccessBlockInput, optFns ...func(*s3.Options)) (*s3.PutPublicAccessBlockOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	PutBucketPolicy(ctx context.Context, params *s3.PutBucketPolicyInput, optFns ...func(*s3.Options)) (*s3.PutBucketPolicyOutput, error)
	PutBucketWebsite(ctx context.Context, params *s3.PutBucketWebsiteInput, optFns ...func(*s3.Options)) (*s3.PutBucketWebsiteOutput, error)
}

// Storage provisions public static-website buckets. Each step is a single call against S3,
// nothing is rolled back when a later step fails.
type Storage struct {
	client        S3API
	defaultRegion string
	cfg           *config.DeployConfig
}

func NewStorage(awsConfig aws.Config, cfg *config.DeployConfig) *Storage {
	return NewStorageWithClient(initClient(awsConfig, cfg.UsePathStyle), awsConfig.Region, cfg)
}

func NewStorageWithClient(client S3API, defaultRegion string, cfg *config.DeployConfig) *Storage {
	return &Storage{
		client:        client,
		defaultRegion: defaultRegion,
		cfg:           cfg,
	}
}

func initClient(awsConfig aws.Config, usePathStyle bool) *s3.Client {
	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		o.UsePathStyle = usePathStyle
	})
	return client
}

func (s *Storage) region(bucket entity.Bucket) string {
	if bucket.Region != "" {
		return bucket.Region
	}
	return s.defaultRegion
}

// inRegion pins a call to the bucket's region, S3 redirects cross-region calls otherwise.
func (s *Storage) inRegion(bucket entity.Bucket) func(*s3.Options) {
	region := s.region(bucket)
	return func(o *s3.Options) {
		if region != "" {
			o.Region = region
		}
	}
}

func (s *Storage) CreateBucket(ctx context.Context, bucket entity.Bucket) error {
	input := &s3.CreateBucketInput{
		Bucket: aws.String(bucket.Name),
	}
	// us-east-1 is the implicit location and is rejected as an explicit constraint
	if region := s.region(bucket); region != "" && region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(region),
		}
	}

	_, err := s.client.CreateBucket(ctx, input, s.inRegion(bucket))
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			switch apiErr.ErrorCode() {
			case "BucketAlreadyExists", "BucketAlreadyOwnedByYou":
				return fmt.Errorf("creating bucket %s: %w", bucket.Name, errs.ErrBucketNameTaken)
			}
		}
		return fmt.Errorf("creating bucket %s: %w", bucket.Name, err)
	}
	slog.Info("Bucket created", "bucket", bucket.Name, "region", s.region(bucket))
	return nil
}

// UnblockPublicAccess clears all four public access block flags. Must run before the policy is applied.
func (s *Storage) UnblockPublicAccess(ctx context.Context, bucket entity.Bucket) error {
	_, err := s.client.PutPublicAccessBlock(ctx, &s3.PutPublicAccessBlockInput{
		Bucket: aws.String(bucket.Name),
		PublicAccessBlockConfiguration: &types.PublicAccessBlockConfiguration{
			BlockPublicAcls:       aws.Bool(false),
			IgnorePublicAcls:      aws.Bool(false),
			BlockPublicPolicy:     aws.Bool(false),
			RestrictPublicBuckets: aws.Bool(false),
		},
	}, s.inRegion(bucket))
	if err != nil {
		return fmt.Errorf("disabling public access block for %s: %w", bucket.Name, err)
	}
	slog.Info("Public access block disabled", "bucket", bucket.Name)
	return nil
}

// UploadFolder uploads every file under dir, keyed by its slash separated path relative to dir.
// Uploads run concurrently up to the configured limit and the first failure cancels the rest.
func (s *Storage) UploadFolder(ctx context.Context, bucket entity.Bucket, dir string) error {
	files, err := readFilesFromDir(dir)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.cfg.UploadConcurrency, 1))
	for _, f := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			return s.uploadFile(gctx, bucket, dir, f)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	// a cancellation seen before any upload failed still has to fail the step
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("uploading %s: %w", dir, err)
	}
	return nil
}

func (s *Storage) uploadFile(ctx context.Context, bucket entity.Bucket, dir, path string) error {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return fmt.Errorf("malformed filepath, %s: %w", path, err)
	}
	key := filepath.ToSlash(rel)

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()
	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	ct := ContentType(path)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket.Name),
		Key:           aws.String(key),
		Body:          file,
		ContentType:   aws.String(ct),
		ContentLength: aws.Int64(info.Size()),
	}, s.inRegion(bucket))
	if err != nil {
		return fmt.Errorf("can't put object %s: %w", key, err)
	}
	slog.Info("Uploaded file", "bucket", bucket.Name, "key", key, "contentType", ct)
	return nil
}

type policyDocument struct {
	Version   string            `json:"Version"`
	Statement []policyStatement `json:"Statement"`
}

type policyStatement struct {
	Sid       string `json:"Sid"`
	Effect    string `json:"Effect"`
	Principal string `json:"Principal"`
	Action    string `json:"Action"`
	Resource  string `json:"Resource"`
}

// PublicReadPolicy allows anyone to read every object of the bucket.
func PublicReadPolicy(bucketName string) (string, error) {
	doc := policyDocument{
		Version: "2012-10-17",
		Statement: []policyStatement{{
			Sid:       "PublicReadGetObject",
			Effect:    "Allow",
			Principal: "*",
			Action:    "s3:GetObject",
			Resource:  fmt.Sprintf("arn:aws:s3:::%s/*", bucketName),
		}},
	}
	policy, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal policy: %w", err)
	}
	return string(policy), nil
}

func (s *Storage) ApplyPublicReadPolicy(ctx context.Context, bucket entity.Bucket) error {
	policy, err := PublicReadPolicy(bucket.Name)
	if err != nil {
		return err
	}
	_, err = s.client.PutBucketPolicy(ctx, &s3.PutBucketPolicyInput{
		Bucket: aws.String(bucket.Name),
		Policy: aws.String(policy),
	}, s.inRegion(bucket))
	if err != nil {
		return fmt.Errorf("updating bucket policy for %s: %w", bucket.Name, err)
	}
	slog.Info("Bucket policy updated to allow public access", "bucket", bucket.Name)
	return nil
}

func (s *Storage) EnableWebsiteHosting(ctx context.Context, bucket entity.Bucket) error {
	_, err := s.client.PutBucketWebsite(ctx, &s3.PutBucketWebsiteInput{
		Bucket: aws.String(bucket.Name),
		WebsiteConfiguration: &types.WebsiteConfiguration{
			IndexDocument: &types.IndexDocument{Suffix: aws.String(s.cfg.IndexDocument)},
			ErrorDocument: &types.ErrorDocument{Key: aws.String(s.cfg.ErrorDocument)},
		},
	}, s.inRegion(bucket))
	if err != nil {
		return fmt.Errorf("enabling static website hosting for %s: %w", bucket.Name, err)
	}
	slog.Info("Static website hosting enabled", "bucket", bucket.Name)
	return nil
}

func (s *Storage) WebsiteURL(bucket entity.Bucket) string {
	return WebsiteURL(bucket.Name, s.region(bucket))
}

func readFilesFromDir(dir string) ([]string, error) {
	var files []string
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("can't read directory %s: %w", dir, err)
	}
	for _, entry := range entries {
		fullPath := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			subFiles, err := readFilesFromDir(fullPath)
			if err != nil {
				return nil, err
			}
			files = append(files, subFiles...)
		} else {
			files = append(files, fullPath)
		}
	}
	return files, nil
}
