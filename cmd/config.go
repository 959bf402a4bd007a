package cmd

import (
	"encoding/json"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/runZeroInc/sshsigcheck/sshrsa"
	"github.com/sirupsen/logrus"
)

// RunConfig carries the state shared by a single command invocation.
type RunConfig struct {
	Logger       *logrus.Logger
	OutputWriter io.Writer
	Verifier     *sshrsa.Verifier
	outMutex     sync.Mutex
	statResult   atomic.Uint64
}

// newRunConfig sets up logging and the output writer from the global flags.
func newRunConfig() *RunConfig {
	conf := &RunConfig{
		Verifier: sshrsa.NewVerifier(nil),
	}

	// Configure logging
	configureLogging(conf)

	// Configure output
	w, err := openOutput(gOutput)
	if err != nil {
		conf.Logger.Fatalf("failed to create output file %s: %v", gOutput, err)
	}
	conf.OutputWriter = w
	return conf
}

func openOutput(name string) (io.Writer, error) {
	switch name {
	case "", "-", "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	default:
		return os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	}
}

// WriteOutput writes v as a single line of JSON.
func (conf *RunConfig) WriteOutput(v any) {
	conf.outMutex.Lock()
	defer conf.outMutex.Unlock()

	resb, err := json.Marshal(v)
	if err != nil {
		conf.Logger.Errorf("failed to serialize %v: %v", v, err)
		return
	}
	resb = append(resb, '\n')

	if _, err = conf.OutputWriter.Write(resb); err != nil {
		conf.Logger.Errorf("failed to write output: %v", err)
		return
	}
	conf.statResult.Add(1)
}
