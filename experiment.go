package main

import (
	"errors"
	"fmt"
	"net/http"

	"ismcts/experiments"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	metricsAddr string
	outputDir   string

	experimentCmd = &cobra.Command{
		Use:   "experiment [config.yaml]",
		Short: "Play the matchups of an experiment config and write CSV records",
		Args:  cobra.ExactArgs(1),
		RunE:  runExperiment,
	}
)

func init() {
	experimentCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus search metrics on this address while running, e.g. :2112")
	experimentCmd.Flags().StringVar(&outputDir, "output", "", "override the output directory of the config")
}

func runExperiment(cmd *cobra.Command, args []string) error {
	config, err := experiments.LoadConfig(args[0])
	if err != nil {
		return err
	}
	if outputDir != "" {
		config.Output = outputDir
	}

	var registerer prometheus.Registerer
	if metricsAddr != "" {
		reg := prometheus.NewRegistry()
		registerer = reg
		server := &http.Server{Addr: metricsAddr, Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{})}
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("metrics server stopped")
			}
		}()
		defer server.Close()
		log.Info().Msgf("serving metrics on %s/metrics", metricsAddr)
	}

	results, err := experiments.Run(config, registerer)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: records written to %s\n", config.Name, results.Dir)
	for _, r := range results.MatchUps {
		fmt.Fprintf(out, "agent %d vs agent %d: %d games, %d truncated, agent %d mean reward %.3f\n",
			r.Agent1, r.Agent2, r.Games, r.Truncated, r.Agent1, r.MeanReward)
	}
	return nil
}
