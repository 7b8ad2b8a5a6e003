// policyregex extracts fields from insurance policy documents with
// per-company regex configurations and normalizes the raw values with
// per-company mapping rules.
//
// Usage:
//
//	policyregex extract --company ak_E
//	policyregex normalize --all-companies
//	policyregex process --company ak_E [--skip-extraction]
//	policyregex check --company ak_E [--field police_no]
//	policyregex bootstrap --samples samples.csv --output config/mapping_rules/ak_E_map.json
//	policyregex field search --company ak_E "Poliçe No"
//	policyregex field test --company ak_E --pattern 'Poliçe No\s*:\s*(\d+)'
//	policyregex detect data/inbox
//	policyregex report xlsx --company ak_E
//	policyregex cache purge --max-age 720h
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/policyregex/internal/config"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error to the process exit status: 2 for configuration
// errors, 1 otherwise.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, config.ErrConfig):
		return 2
	}
	return 1
}
