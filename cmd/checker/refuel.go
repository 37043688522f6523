package main

import (
	"context"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"gas_checker/internal/domain/entity"
)

func newRefuelCmd(configPath *string) *cobra.Command {
	req := entity.RefuelRequest{}
	cmd := &cobra.Command{
		Use:   "refuel",
		Short: "Decide whether a destination gas top-up should be offered for a transfer",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApplication(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer app.Close()

			timeout := time.Duration(app.cfg.GasRecommendation.RequestTimeoutMillis) * time.Millisecond * 2
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			result := app.refuel.Recommend(ctx, req)
			out, err := jsoniter.MarshalIndent(result, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode result: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().Uint64Var(&req.FromChainID, "from-chain", 0, "source chain id")
	cmd.Flags().Uint64Var(&req.ToChainID, "to-chain", 0, "destination chain id")
	cmd.Flags().StringVar(&req.FromTokenAddress, "from-token", entity.ZeroAddress, "source token address")
	cmd.Flags().StringVar(&req.ToAddress, "to-address", "", "destination address")
	cmd.Flags().StringVar(&req.FromAddress, "from-address", "", "sender address, used when --to-address is empty")
	_ = cmd.MarkFlagRequired("from-chain")
	_ = cmd.MarkFlagRequired("to-chain")
	return cmd
}
