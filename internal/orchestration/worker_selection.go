package orchestration

import (
	"github.com/agbru/fanout/internal/config"
	"github.com/agbru/fanout/internal/worker"
)

// WorkersFromConfig builds the workers to fan out to, in the order listed in
// the configuration. Identities listed in cfg.Fail become always-failing
// doubles; the others are simulated services with either their configured
// fixed delay or a random delay bounded by cfg.MaxDelay.
//
// Parameters:
//   - cfg: The application configuration containing the worker selection.
//
// Returns:
//   - []worker.Worker: One worker per configured identity.
func WorkersFromConfig(cfg config.AppConfig) []worker.Worker {
	workers := make([]worker.Worker, 0, len(cfg.Workers))
	for _, id := range cfg.Workers {
		if cfg.Fails(id) {
			workers = append(workers, worker.Failing{Name: id})
			continue
		}
		delay := worker.RandomDelay(cfg.MaxDelay)
		if d, ok := cfg.Delays[id]; ok {
			delay = worker.FixedDelay(d)
		}
		workers = append(workers, worker.NewService(id, worker.WithDelay(delay)))
	}
	return workers
}

// RequestFromConfig assembles the Request described by cfg.
func RequestFromConfig(cfg config.AppConfig) (Request, error) {
	policy, err := ParsePolicy(cfg.Policy)
	if err != nil {
		return Request{}, err
	}
	return Request{
		Policy:   policy,
		Workers:  WorkersFromConfig(cfg),
		Inputs:   cfg.ResolvedInputs(),
		Fallback: cfg.Fallback,
	}, nil
}
