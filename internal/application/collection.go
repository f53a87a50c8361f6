package application

import "github.com/Anmepod44/website/internal/application/commands"

type Handlers struct {
	DeploySite *commands.DeploySite
}
