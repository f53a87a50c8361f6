package entity

import "github.com/Anmepod44/website/internal/domain/consts"

type CTALinks map[consts.Platform]string

// DefaultCTALinks points every known platform at the placeholder anchor.
func DefaultCTALinks() CTALinks {
	links := make(CTALinks, len(consts.Platforms))
	for _, p := range consts.Platforms {
		links[p] = consts.DefaultCTALink
	}
	return links
}

// BuildRequest carries the customer details of a single site build. It is not persisted.
type BuildRequest struct {
	Name         string
	Phone        string
	Email        string
	BusinessName string
	CTALinks     CTALinks
}

// MergedCTALinks returns the defaults overridden by the caller's links, key by key.
// Keys the caller did not send keep the placeholder.
func (r BuildRequest) MergedCTALinks() CTALinks {
	merged := DefaultCTALinks()
	for platform, link := range r.CTALinks {
		merged[platform] = link
	}
	return merged
}

// SitePaths locates the template, where its rendered copy goes and the folder that gets uploaded.
type SitePaths struct {
	TemplatePath string
	OutputPath   string
	FolderPath   string
}
