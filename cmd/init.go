package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func Init() {
	// a missing .env is fine, the process environment is used as is
	_ = godotenv.Load()

	app := &cobra.Command{
		Use:   "website",
		Short: "Personalizes site templates and deploys them as public S3 websites",
	}
	app.AddCommand(serveEntry())
	app.AddCommand(deployEntry())

	if err := app.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
