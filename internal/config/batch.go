package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/agbru/fanout/internal/errors"
)

// BatchFile is the YAML description of a batch.
//
//	policy: fail-soft
//	fallback: FALLBACK
//	timeout: 2s
//	workers:
//	  - id: A
//	    input: msg1
//	  - id: B
//	    input: msg2
//	    fail: true
//	  - id: C
//	    input: msg3
//	    delay: 100ms
type BatchFile struct {
	Policy   string        `yaml:"policy"`
	Fallback *string       `yaml:"fallback"`
	Timeout  time.Duration `yaml:"timeout"`
	MaxDelay time.Duration `yaml:"max_delay"`
	Workers  []BatchWorker `yaml:"workers"`
}

// BatchWorker is one worker entry of a BatchFile.
type BatchWorker struct {
	ID    string        `yaml:"id"`
	Input *string       `yaml:"input"`
	Fail  bool          `yaml:"fail"`
	Delay time.Duration `yaml:"delay"`
}

// LoadBatchFile reads and decodes a YAML batch file. Unknown keys are rejected.
func LoadBatchFile(path string) (BatchFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return BatchFile{}, apperrors.NewConfigError("cannot open batch file: %v", err)
	}
	defer f.Close()
	return decodeBatch(f)
}

func decodeBatch(r io.Reader) (BatchFile, error) {
	var batch BatchFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&batch); err != nil {
		return BatchFile{}, apperrors.NewConfigError("invalid batch file: %v", err)
	}
	for i, w := range batch.Workers {
		if w.ID == "" {
			return BatchFile{}, apperrors.ValidationError{Field: "workers", Message: fmt.Sprintf("entry %d has no id", i)}
		}
	}
	return batch, nil
}

// applyTo layers the batch over cfg for every value whose flag was not set
// explicitly. Inputs are only taken from the file when every entry has one.
func (b BatchFile) applyTo(cfg AppConfig, fs *flag.FlagSet) AppConfig {
	if b.Policy != "" && !isFlagSet(fs, "policy") {
		cfg.Policy = b.Policy
	}
	if b.Fallback != nil && !isFlagSet(fs, "fallback") {
		cfg.Fallback = *b.Fallback
	}
	if b.Timeout > 0 && !isFlagSet(fs, "timeout") {
		cfg.Timeout = b.Timeout
	}
	if b.MaxDelay > 0 && !isFlagSet(fs, "max-delay") {
		cfg.MaxDelay = b.MaxDelay
	}
	if len(b.Workers) == 0 || isFlagSet(fs, "workers") {
		return cfg
	}

	ids := make([]string, 0, len(b.Workers))
	inputs := make([]string, 0, len(b.Workers))
	var fail []string
	allInputs := true
	for _, w := range b.Workers {
		ids = append(ids, w.ID)
		if w.Input != nil {
			inputs = append(inputs, *w.Input)
		} else {
			allInputs = false
		}
		if w.Fail {
			fail = append(fail, w.ID)
		}
		if w.Delay > 0 {
			if cfg.Delays == nil {
				cfg.Delays = make(map[string]time.Duration)
			}
			cfg.Delays[w.ID] = w.Delay
		}
	}
	cfg.Workers = ids
	if allInputs && !isFlagSet(fs, "inputs") {
		cfg.Inputs = inputs
	}
	if len(fail) > 0 && !isFlagSet(fs, "fail") {
		cfg.Fail = fail
	}
	return cfg
}
