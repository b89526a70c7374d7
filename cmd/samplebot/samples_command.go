package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"samplebot/internal/logging"
	"samplebot/internal/sample"
	"samplebot/internal/services/dropbox"
)

func newSamplesCommand(ctx *commandContext) *cobra.Command {
	var random bool
	cmd := &cobra.Command{
		Use:   "samples",
		Short: "Print the shared link to the samples folder",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			client, err := dropbox.New(cfg, logging.NewNop())
			if err != nil {
				return err
			}
			svc := sample.NewService(cfg, nil, client, logging.NewNop())
			if random {
				out := svc.PickRandom(cmd.Context())
				if out.Rejected {
					return fmt.Errorf("pick random sample: %s", out.Reason)
				}
				fmt.Fprintln(cmd.OutOrStdout(), out.Link)
				return nil
			}
			link, err := svc.SamplesLink(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), link)
			return nil
		},
	}
	cmd.Flags().BoolVar(&random, "random", false, "Print a link to one random sample instead")
	return cmd
}
