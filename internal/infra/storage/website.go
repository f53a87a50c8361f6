package storage

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"
)

const fallbackContentType = "text/html"

// Regions whose website endpoint uses the older dash form, s3-website-<region>.
var dashEndpointRegions = map[string]struct{}{
	"us-east-1":      {},
	"us-west-1":      {},
	"us-west-2":      {},
	"ap-southeast-1": {},
	"ap-southeast-2": {},
	"ap-northeast-1": {},
	"eu-west-1":      {},
	"sa-east-1":      {},
	"us-gov-west-1":  {},
}

func WebsiteEndpoint(region string) string {
	if region == "" {
		region = "us-east-1"
	}
	if _, ok := dashEndpointRegions[region]; ok {
		return fmt.Sprintf("s3-website-%s.amazonaws.com", region)
	}
	return fmt.Sprintf("s3-website.%s.amazonaws.com", region)
}

// WebsiteURL is derived from the name and region only, nothing checks that the site is served.
func WebsiteURL(bucketName, region string) string {
	return fmt.Sprintf("http://%s.%s/", bucketName, WebsiteEndpoint(region))
}

// ContentType guesses from the file extension and falls back to text/html.
func ContentType(path string) string {
	ct := mime.TypeByExtension(filepath.Ext(path))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	ct = strings.TrimSpace(ct)
	if ct == "" {
		return fallbackContentType
	}
	return ct
}
