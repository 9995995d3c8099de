package provisioning

import (
	"context"
	"log/slog"
)

type CandidateSource interface {
	Eligible(ctx context.Context) ([]Candidate, error)
}

type BackfillReport struct {
	Created int
	Skipped int
	Failed  int
}

// Backfill provisions every eligible record through the pool and waits
// for each one. onCreated, when set, receives each new account together
// with its one-time credential.
func Backfill(ctx context.Context, source CandidateSource, pool *Pool, logger *slog.Logger, onCreated func(Candidate, Result)) (BackfillReport, error) {
	var report BackfillReport

	candidates, err := source.Eligible(ctx)
	if err != nil {
		return report, err
	}
	logger.InfoContext(ctx, "provisioning backfill started", "candidates", len(candidates))

	for _, c := range candidates {
		result, err := pool.Do(ctx, c)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			report.Failed++
		case result.Outcome == OutcomeCreated:
			report.Created++
			if onCreated != nil {
				onCreated(c, result)
			}
		default:
			report.Skipped++
		}
	}

	logger.InfoContext(ctx, "provisioning backfill finished",
		"created", report.Created,
		"skipped", report.Skipped,
		"failed", report.Failed)
	return report, nil
}
