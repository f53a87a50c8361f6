package entity

import "github.com/Anmepod44/website/internal/domain/consts"

// Bucket is created per deployment and never tracked afterwards.
type Bucket struct {
	Name   string
	Region string
}

type DeploymentResult struct {
	ID         string
	Bucket     Bucket
	WebsiteURL string
	// Stage is the last stage attempted, the failing one when Succeeded is false.
	Stage     consts.Stage
	Succeeded bool
	Cause     error
}
