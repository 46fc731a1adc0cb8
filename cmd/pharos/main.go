package main

import (
	"os"

	"github.com/spf13/cobra"

	"pharos/internal/interfaces/cli/migrate"
	"pharos/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pharos",
		Short: "Pharos - PII trust layer for pharma CRM",
		Long:  `Pharos provides field-level PII encryption, an append-only audit trail, a consent ledger, and GDPR erasure for healthcare professional data.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
