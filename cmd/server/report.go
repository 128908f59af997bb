package main

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/jrsteele09/ga-dashboard/credentials"
	"github.com/jrsteele09/ga-dashboard/internal/config"
	"github.com/jrsteele09/ga-dashboard/internal/logging"
	"github.com/jrsteele09/ga-dashboard/reports"
	"github.com/jrsteele09/ga-dashboard/shaper"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
)

type reportOptions struct {
	refreshToken string
	startDate    string
	endDate      string
	raw          bool
}

func newReportCmd(envFiles *[]string) *cobra.Command {
	opts := reportOptions{}

	cmd := &cobra.Command{
		Use:       "report <name>",
		Short:     "Run one report with a refresh token and print it as JSON",
		Args:      cobra.ExactArgs(1),
		ValidArgs: reports.Names(),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := reports.Lookup(args[0])
			if err != nil {
				return err
			}
			if opts.refreshToken == "" {
				return fmt.Errorf("--refresh-token or GA_REFRESH_TOKEN is required")
			}

			cfg, err := config.Load(*envFiles...)
			if err != nil {
				return err
			}
			logging.Init(cfg.GetEnv(), cfg.GetLogLevel())

			ctx := cmd.Context()
			source := newOAuthConfig(cfg).TokenSource(ctx, &oauth2.Token{RefreshToken: opts.refreshToken})
			dr := reports.DateRange{StartDate: opts.startDate, EndDate: opts.endDate}

			res, err := newGateway(cfg).Run(ctx, spec, credentials.NewAuthorizedClient(source), dr)
			if err != nil {
				return err
			}

			var out any = res.Raw
			if !opts.raw {
				if out, err = shaper.Shape(spec.Name, res.Rows, shaper.NewPrinter(cfg.GetDisplayLocale())); err != nil {
					return err
				}
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}

	cmd.Flags().StringVar(&opts.refreshToken, "refresh-token", config.GetEnv("GA_REFRESH_TOKEN", ""), "OAuth refresh token with analytics.readonly scope")
	cmd.Flags().StringVar(&opts.startDate, "start", reports.DefaultStartDate, "start date (YYYY-MM-DD or NdaysAgo)")
	cmd.Flags().StringVar(&opts.endDate, "end", reports.DefaultEndDate, "end date (YYYY-MM-DD, today or yesterday)")
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "print the upstream response instead of the shaped rows")
	return cmd
}
