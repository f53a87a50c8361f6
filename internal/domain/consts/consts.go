package consts

type Stage string

const (
	StagePersonalize         Stage = "personalize"
	StageCreateBucket        Stage = "create_bucket"
	StageUnblockPublicAccess Stage = "unblock_public_access"
	StageUploadFolder        Stage = "upload_folder"
	StageApplyPolicy         Stage = "apply_policy"
	StageEnableHosting       Stage = "enable_hosting"
)

type Platform string

const (
	Facebook  Platform = "facebook"
	Twitter   Platform = "twitter"
	LinkedIn  Platform = "linkedin"
	Instagram Platform = "instagram"
	YouTube   Platform = "youtube"
	Pinterest Platform = "pinterest"
)

// Platforms in the order the social icons appear in the shipped templates.
var Platforms = []Platform{Facebook, Twitter, LinkedIn, Instagram, YouTube, Pinterest}

const DefaultCTALink = "#"

func IsPlatform(name string) bool {
	for _, p := range Platforms {
		if string(p) == name {
			return true
		}
	}
	return false
}

type TemplateVariant string

const (
	PersonalTemplate  TemplateVariant = "personal"
	PortfolioTemplate TemplateVariant = "portfolio"
)

type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
	OutcomeCanceled  Outcome = "canceled"
)
