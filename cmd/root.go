package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/urocare/clinic/cmd/worker"
)

var (
	cfgPath string
	rootCmd = &cobra.Command{
		Use:   "clinic",
		Short: "Clinic site backend: public intake and admin dashboard",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// a local .env is optional
			_ = godotenv.Load()
		},
	}
)

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "path to YAML config file")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(worker.NewWorkerCmd())
}
