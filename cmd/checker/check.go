package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"gas_checker/internal/app/provider"
	"gas_checker/internal/app/service"
	"gas_checker/internal/domain/entity"
	"gas_checker/internal/infrastructure/accountloader"
	"gas_checker/internal/pkg/logger"
	"gas_checker/internal/pkg/utils"
)

var errInsufficientGas = errors.New("insufficient gas")

type checkOptions struct {
	routePath    string
	account      string
	connector    string
	accountsPath string
	watch        bool
}

func newCheckCmd(configPath *string) *cobra.Command {
	opts := checkOptions{}
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check whether accounts hold enough gas for the pending steps of routes",
		Long: `Check evaluates every (account, route) pair once and exits with an error when any
of them lacks gas. With --watch the pairs are re-evaluated on the configured refetch
interval until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app, err := newApplication(ctx, *configPath)
			if err != nil {
				return err
			}
			defer app.Close()

			targets, err := buildTargets(app.targets, opts)
			if err != nil {
				return err
			}
			if opts.watch {
				return watchTargets(ctx, app, targets, cmd.OutOrStdout())
			}
			return checkTargets(ctx, app, targets, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.routePath, "route", "", "route JSON file or directory of route files")
	cmd.Flags().StringVar(&opts.account, "account", "", "account address")
	cmd.Flags().StringVar(&opts.connector, "connector", "", "wallet connector id of --account")
	cmd.Flags().StringVar(&opts.accountsPath, "accounts", "", "file with one \"<address> [connectorId]\" per line")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "re-evaluate on the refetch interval until interrupted")
	_ = cmd.MarkFlagRequired("route")
	return cmd
}

func buildTargets(targets *provider.TargetProvider, opts checkOptions) ([]provider.Target, error) {
	var extra []entity.Account
	if opts.account != "" {
		account, ok := accountloader.ParseAccount(opts.account)
		if !ok {
			return nil, fmt.Errorf("invalid account address %q", opts.account)
		}
		account.Connector.ID = opts.connector
		extra = append(extra, account)
	}
	if opts.accountsPath == "" && len(extra) == 0 {
		return nil, errors.New("either --account or --accounts is required")
	}
	return targets.Targets(opts.routePath, opts.accountsPath, extra...)
}

func checkTargets(ctx context.Context, app *application, targets []provider.Target, out io.Writer) error {
	insufficient := 0
	for _, target := range targets {
		route := target.Route
		results, err := app.sufficiency.Check(ctx, target.Account, &route)
		if err != nil {
			return fmt.Errorf("check of route %s for %s: %w", route.ID, target.Account.Address, err)
		}
		printResults(out, target, results)
		if len(results) > 0 {
			insufficient++
		}
	}
	if insufficient > 0 {
		return fmt.Errorf("%w: %d of %d checks", errInsufficientGas, insufficient, len(targets))
	}
	return nil
}

func watchTargets(ctx context.Context, app *application, targets []provider.Target, out io.Writer) error {
	var (
		wg    sync.WaitGroup
		outMu sync.Mutex
	)
	monitors := make([]*service.SufficiencyMonitor, 0, len(targets))
	for _, target := range targets {
		monitor := service.NewSufficiencyMonitor(app.sufficiency, app.sufficiency.RefetchInterval(), logger.Named("monitor"))
		updates, cancel := monitor.Subscribe()
		defer cancel()

		wg.Add(1)
		go func() {
			defer wg.Done()
			for snapshot := range updates {
				outMu.Lock()
				if snapshot.Err != nil {
					fmt.Fprintf(out, "%s %s: check failed: %v\n", snapshot.Key.RouteID, snapshot.Key.AccountAddress, snapshot.Err)
				} else {
					printResults(out, target, snapshot.Results)
				}
				outMu.Unlock()
			}
		}()

		if err := monitor.Start(); err != nil {
			return err
		}
		route := target.Route
		monitor.Track(target.Account, &route)
		monitors = append(monitors, monitor)
	}

	<-ctx.Done()
	for _, monitor := range monitors {
		monitor.Stop()
	}
	wg.Wait()
	return nil
}

func printResults(out io.Writer, target provider.Target, results []entity.GasSufficiency) {
	header := fmt.Sprintf("%s %s", target.Route.ID, target.Account.Address)
	if len(results) == 0 {
		fmt.Fprintf(out, "%s: gas OK\n", header)
		return
	}
	lines := make([]string, 0, len(results))
	for _, r := range results {
		chainName := fmt.Sprint(r.Token.ChainID)
		if r.Chain != nil && r.Chain.Name != "" {
			chainName = r.Chain.Name
		}
		lines = append(lines, fmt.Sprintf("  %s: need %s %s, have %s, missing %s",
			chainName,
			utils.FormatBigInt(r.GasAmount, r.Token.Decimals), r.Token.Symbol,
			utils.FormatBigInt(r.TokenAmount, r.Token.Decimals),
			utils.FormatBigInt(r.InsufficientAmount, r.Token.Decimals),
		))
	}
	fmt.Fprintf(out, "%s: insufficient gas\n%s\n", header, strings.Join(lines, "\n"))
}
