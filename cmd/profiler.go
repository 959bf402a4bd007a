package cmd

import "github.com/mmcloughlin/professor"

// startProfiler launches a pprof listener when --pprof is set.
func startProfiler() {
	if gPProfAddr == "" {
		return
	}
	professor.Launch(gPProfAddr)
}
