package rest

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Anmepod44/website/internal/application"
	"github.com/Anmepod44/website/internal/application/commands"
	"github.com/Anmepod44/website/internal/application/dto"
	"github.com/Anmepod44/website/internal/application/errs"
	"github.com/Anmepod44/website/internal/domain/consts"
	"github.com/Anmepod44/website/internal/infra/config"
	"github.com/gofiber/fiber/v2"
)

var _ ServerInterface = (*Server)(nil)

type Server struct {
	handlers  *application.Handlers
	deployCfg *config.DeployConfig
	serverCfg *config.ServerConfig
}

func NewServer(handlers *application.Handlers, deployCfg *config.DeployConfig, serverCfg *config.ServerConfig) *Server {
	return &Server{handlers: handlers, deployCfg: deployCfg, serverCfg: serverCfg}
}

func (s *Server) BuildSite(c *fiber.Ctx) error {
	var req dto.BuildSiteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.MessageResponse{Message: err.Error()})
	}

	buildReq, err := req.ToBuildRequest()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.MessageResponse{Message: err.Error()})
	}
	paths, err := s.deployCfg.SitePaths(consts.TemplateVariant(req.Template))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.MessageResponse{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), s.serverCfg.RequestTimeout)
	defer cancel()

	result, err := s.handlers.DeploySite.Execute(ctx, commands.DeploySiteInput{
		Request: buildReq,
		Paths:   paths,
	})
	if err != nil {
		var stageErr *errs.StageError
		if errors.As(err, &stageErr) {
			slog.Warn("build request failed", "stage", stageErr.Stage, "deployment", result.ID)
		}
		// callers only ever see the generic failure, the stage detail stays in the logs
		return c.Status(fiber.StatusInternalServerError).JSON(dto.MessageResponse{Message: errs.ErrDeploymentFailed.Error()})
	}

	return c.Status(fiber.StatusOK).JSON(dto.MessageResponse{Message: result.WebsiteURL})
}

func (s *Server) Healthcheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(dto.MessageResponse{Message: "ok"})
}
