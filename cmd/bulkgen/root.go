package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app carries what every subcommand shares.
type app struct {
	debug bool
	log   *zap.Logger
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "bulkgen [command]",
		Short: "Generate bulk CSV data for the congress review schema",
		Long: `Generates synthetic CSV files for the ten tables of the congress/article
review schema (users, addresses, cards, roles, congresses, articles,
authorship, evaluations, reviews), ready for bulk loading.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setupLogger()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.log.Sync()
		},
	}

	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable development logging")

	root.AddCommand(
		newGenerateCmd(a),
		newInspectCmd(a),
		newVerifyCmd(a),
		newVersionCmd(),
	)
	return root
}

func (a *app) setupLogger() error {
	if a.log != nil {
		return nil
	}

	var (
		log *zap.Logger
		err error
	)
	if a.debug {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("can't initialize zap logger: %w", err)
	}
	a.log = log
	return nil
}
