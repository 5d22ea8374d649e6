package orchestration

import (
	apperrors "github.com/agbru/fanout/internal/errors"
	"github.com/agbru/fanout/internal/worker"
)

// Task is one (worker, input) slot of a dispatch batch.
type Task struct {
	Worker worker.Worker
	Input  string
}

// Pair zips workers and inputs positionally. It fails with an
// InvalidArgumentError when the lengths differ.
func Pair(workers []worker.Worker, inputs []string) ([]Task, error) {
	if len(workers) != len(inputs) {
		return nil, apperrors.InvalidArgumentError{Workers: len(workers), Inputs: len(inputs)}
	}
	tasks := make([]Task, len(workers))
	for i, w := range workers {
		tasks[i] = Task{Worker: w, Input: inputs[i]}
	}
	return tasks, nil
}

// Broadcast returns an input slice sending the same input to every worker.
func Broadcast(workers []worker.Worker, input string) []string {
	inputs := make([]string, len(workers))
	for i := range inputs {
		inputs[i] = input
	}
	return inputs
}
