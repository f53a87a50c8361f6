package interfaces

import (
	"context"

	"github.com/Anmepod44/website/internal/domain/entity"
)

type Personalizer interface {
	Personalize(templatePath, outputPath string, req entity.BuildRequest) error
}

type NameGenerator interface {
	Generate(length int) string
}

// Provisioner runs the external storage steps of a deployment, in order:
// create, unblock public access, upload, apply policy, enable hosting.
type Provisioner interface {
	CreateBucket(ctx context.Context, bucket entity.Bucket) error
	UnblockPublicAccess(ctx context.Context, bucket entity.Bucket) error
	UploadFolder(ctx context.Context, bucket entity.Bucket, dir string) error
	ApplyPublicReadPolicy(ctx context.Context, bucket entity.Bucket) error
	EnableWebsiteHosting(ctx context.Context, bucket entity.Bucket) error
	WebsiteURL(bucket entity.Bucket) string
}
