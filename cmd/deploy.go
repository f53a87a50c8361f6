package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Anmepod44/website/internal/application/commands"
	"github.com/Anmepod44/website/internal/application/dto"
	"github.com/Anmepod44/website/internal/application/errs"
	"github.com/Anmepod44/website/internal/domain/consts"
	"github.com/spf13/cobra"
)

func deployEntry() *cobra.Command {
	var (
		req    dto.BuildSiteRequest
		region string
	)

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Builds and deploys one site, prints its URL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			url, err := deploy(ctx, req, region)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), url)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "Owner name")
	cmd.Flags().StringVar(&req.Phone, "phone", "", "Contact phone")
	cmd.Flags().StringVar(&req.Email, "email", "", "Contact email")
	cmd.Flags().StringVar(&req.BusinessName, "business-name", "", "Business name, also used for the page title")
	cmd.Flags().StringVar(&req.Template, "template", string(consts.PersonalTemplate), "Template variant: personal or portfolio")
	cmd.Flags().StringToStringVar(&req.CTALinks, "cta", nil, "Social links, e.g. --cta facebook=https://fb.com/acme")
	cmd.Flags().StringVar(&region, "region", "", "Bucket region, defaults to AWS_DEFAULT_REGION")
	for _, required := range []string{"name", "phone", "email", "business-name"} {
		_ = cmd.MarkFlagRequired(required)
	}

	return cmd
}

func deploy(ctx context.Context, req dto.BuildSiteRequest, region string) (string, error) {
	c, err := newComponents(ctx)
	if err != nil {
		return "", err
	}

	buildReq, err := req.ToBuildRequest()
	if err != nil {
		return "", err
	}
	paths, err := c.deployCfg.SitePaths(consts.TemplateVariant(req.Template))
	if err != nil {
		return "", err
	}

	result, err := c.handlers.DeploySite.Execute(ctx, commands.DeploySiteInput{
		Request: buildReq,
		Paths:   paths,
		Region:  region,
	})
	if err != nil {
		return "", fmt.Errorf("%w at stage %s, bucket %q may be left behind: %v",
			errs.ErrDeploymentFailed, result.Stage, result.Bucket.Name, err)
	}
	return result.WebsiteURL, nil
}
