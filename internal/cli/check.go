// internal/cli/check.go
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"package-pulse/internal/app"
	"package-pulse/internal/config"
	custom_errors "package-pulse/internal/errors"
	"package-pulse/internal/model"
)

// checker is the subset of the resolver the check command needs.
type checker interface {
	Check(ctx context.Context, name string) (*model.HealthReport, error)
}

type checkOptions struct {
	json  bool
	token string
}

func newCheckCmd() *cobra.Command {
	var opts checkOptions

	cmd := &cobra.Command{
		Use:   "check <package>...",
		Short: "Report the maintenance status of one or more packages",
		Example: `  pulse check express
  pulse check --json react @types/node`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if opts.token != "" {
				cfg.GithubToken = opts.token
			}
			// A one-shot process gains nothing from a shared cache.
			cfg.RedisURL = ""

			res, cleanup, err := app.NewResolver(ctx, cfg, nil, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			return runCheck(ctx, res, args, opts, cmd.OutOrStdout(), cmd.ErrOrStderr(), time.Now())
		},
	}

	cmd.Flags().BoolVar(&opts.json, "json", false, "print reports as JSON")
	cmd.Flags().StringVar(&opts.token, "token", "", "GitHub token (defaults to $GITHUB_TOKEN)")
	return cmd
}

// runCheck resolves every package, printing failures to errOut. It returns an
// error if any package could not be resolved.
func runCheck(ctx context.Context, c checker, names []string, opts checkOptions, out, errOut io.Writer, now time.Time) error {
	var (
		reports []*model.HealthReport
		failed  int
	)
	for _, name := range names {
		report, err := c.Check(ctx, name)
		if err != nil {
			failed++
			fmt.Fprintf(errOut, "%s: %s\n", name, describeError(err))
			continue
		}
		reports = append(reports, report)
	}

	if opts.json {
		if len(reports) > 0 {
			if err := writeJSON(out, reports); err != nil {
				return err
			}
		}
	} else {
		for i, r := range reports {
			if i > 0 {
				fmt.Fprintln(out)
			}
			if err := writeReport(out, r, now); err != nil {
				return err
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d packages could not be checked", failed, len(names))
	}
	return nil
}

func describeError(err error) string {
	var (
		validation *custom_errors.ValidationError
		notFound   *custom_errors.NotFoundError
		upstream   *custom_errors.UpstreamError
	)
	switch {
	case errors.As(err, &validation):
		return "package name is required"
	case errors.As(err, &notFound):
		return "not found on npm"
	case errors.As(err, &upstream):
		return fmt.Sprintf("registry lookup failed: %v", upstream.Err)
	default:
		return err.Error()
	}
}
