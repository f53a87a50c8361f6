package dto

import (
	"net/mail"
	"net/url"
	"strings"

	"github.com/Anmepod44/website/internal/application/errs"
	"github.com/Anmepod44/website/internal/domain/consts"
	"github.com/Anmepod44/website/internal/domain/entity"
)

// BuildSiteRequest accepts social links either flat, as form fields do, or in cta_links.
// A non-empty flat field wins over the same platform in cta_links.
type BuildSiteRequest struct {
	Name         string            `json:"name" form:"name"`
	Phone        string            `json:"phone" form:"phone"`
	Email        string            `json:"email" form:"email"`
	BusinessName string            `json:"business_name" form:"business_name"`
	Template     string            `json:"template" form:"template"`
	Facebook     string            `json:"facebook" form:"facebook"`
	Twitter      string            `json:"twitter" form:"twitter"`
	LinkedIn     string            `json:"linkedin" form:"linkedin"`
	Instagram    string            `json:"instagram" form:"instagram"`
	YouTube      string            `json:"youtube" form:"youtube"`
	Pinterest    string            `json:"pinterest" form:"pinterest"`
	CTALinks     map[string]string `json:"cta_links" form:"-"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func (r BuildSiteRequest) ToBuildRequest() (entity.BuildRequest, error) {
	req := entity.BuildRequest{
		Name:         strings.TrimSpace(r.Name),
		Phone:        strings.TrimSpace(r.Phone),
		Email:        strings.TrimSpace(r.Email),
		BusinessName: strings.TrimSpace(r.BusinessName),
		CTALinks:     entity.CTALinks{},
	}
	required := []struct{ field, value string }{
		{"name", req.Name},
		{"phone", req.Phone},
		{"email", req.Email},
		{"business_name", req.BusinessName},
	}
	for _, f := range required {
		if f.value == "" {
			return entity.BuildRequest{}, errs.ValidationError{Field: f.field, Reason: "is required"}
		}
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return entity.BuildRequest{}, errs.ValidationError{Field: "email", Reason: "is not a valid address"}
	}

	for platform, link := range r.CTALinks {
		if !consts.IsPlatform(platform) {
			return entity.BuildRequest{}, errs.ValidationError{Field: "cta_links", Reason: "unknown platform " + platform}
		}
		if link = strings.TrimSpace(link); link != "" {
			req.CTALinks[consts.Platform(platform)] = link
		}
	}
	flat := map[consts.Platform]string{
		consts.Facebook:  r.Facebook,
		consts.Twitter:   r.Twitter,
		consts.LinkedIn:  r.LinkedIn,
		consts.Instagram: r.Instagram,
		consts.YouTube:   r.YouTube,
		consts.Pinterest: r.Pinterest,
	}
	for platform, link := range flat {
		if link = strings.TrimSpace(link); link != "" {
			req.CTALinks[platform] = link
		}
	}

	for platform, link := range req.CTALinks {
		if !validLink(link) {
			return entity.BuildRequest{}, errs.ValidationError{Field: string(platform), Reason: "must be an absolute http(s) URL or #"}
		}
	}
	return req, nil
}

func validLink(link string) bool {
	if link == consts.DefaultCTALink {
		return true
	}
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
