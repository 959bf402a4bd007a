package cmd

import (
	"errors"
	"math"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/runZeroInc/sshsigcheck/authkeys"
	"github.com/runZeroInc/sshsigcheck/sshrsa"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gonum.org/v1/gonum/stat"
)

// benchCmd times repeated verifications
var benchCmd = &cobra.Command{
	Use:   "bench [-n 1000] [-w 4] -k key -s signature -d base64",
	Short: "Measures verification time for a key and signature",
	Long:  "Repeats a verification across concurrent workers and reports timing statistics in microseconds.",
	Args:  cobra.NoArgs,
	Run:   runBench,
}

var (
	gBenchCount   uint
	gBenchWorkers uint
	gBenchInput   inputOptions
)

func init() {
	addInputFlags(benchCmd, &gBenchInput)
	benchCmd.Flags().UintVarP(&gBenchCount, "count", "n", 1000, "The number of verifications to run")
	benchCmd.Flags().UintVarP(&gBenchWorkers, "workers", "w", uint(runtime.NumCPU()), "The number of concurrent workers")
}

// BenchResult summarizes a benchmark run. Timings are in microseconds.
type BenchResult struct {
	Fingerprint string             `json:"fingerprint"`
	Count       int                `json:"count"`
	Workers     int                `json:"workers"`
	Verified    int                `json:"verified"`
	Stats       map[string]float64 `json:"stats"`
}

func runBench(cmd *cobra.Command, args []string) {
	conf := newRunConfig()

	in, err := loadInput(gBenchInput, viper.GetInt("key-cache-size"), conf.Logger)
	if err != nil {
		conf.Logger.Fatalf("%v", err)
	}
	if gBenchCount == 0 || gBenchWorkers == 0 {
		conf.Logger.Fatalf("count and workers must be more than 0")
	}

	entry, err := firstRSAEntry(in.Keys)
	if err != nil {
		conf.Logger.Fatalf("%v", err)
	}

	conf.Logger.Infof("running %d verifications with %d workers against %s", gBenchCount, gBenchWorkers, entry.Fingerprint)
	res := runVerifications(conf.Verifier, entry.RSA, in.Signature, in.Data, int(gBenchCount), int(gBenchWorkers))
	res.Fingerprint = entry.Fingerprint
	if res.Verified != res.Count {
		conf.Logger.Warnf("only %d of %d verifications succeeded", res.Verified, res.Count)
	}
	conf.WriteOutput(res)
}

func firstRSAEntry(keys *authkeys.Store) (*authkeys.Entry, error) {
	for _, e := range keys.Entries() {
		if e.RSA != nil {
			return e, nil
		}
	}
	return nil, errors.New("no ssh-rsa keys were loaded")
}

func runVerifications(v *sshrsa.Verifier, pub *sshrsa.RSAPublicKey, sig *sshrsa.RSASignature, msg []byte, count, workers int) *BenchResult {
	ch := make(chan struct{}, count)
	for i := 0; i < count; i++ {
		ch <- struct{}{}
	}
	close(ch)

	var (
		mu       sync.Mutex
		raw      = make([]float64, 0, count)
		verified int
		wg       sync.WaitGroup
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var times []float64
			ok := 0
			for range ch {
				start := time.Now()
				if v.Verify(pub, sig, msg) {
					ok++
				}
				times = append(times, float64(time.Since(start).Microseconds()))
			}
			mu.Lock()
			raw = append(raw, times...)
			verified += ok
			mu.Unlock()
		}()
	}
	wg.Wait()

	return &BenchResult{
		Count:    count,
		Workers:  workers,
		Verified: verified,
		Stats:    timingStats(raw),
	}
}

func timingStats(raw []float64) map[string]float64 {
	res := map[string]float64{}
	if len(raw) == 0 {
		return res
	}

	// Quantile needs the input slice to be sorted.
	sort.Float64s(raw)

	res["min"] = raw[0]
	res["max"] = raw[len(raw)-1]
	res["avg"] = math.Floor(stat.Mean(raw, nil))
	res["var"] = math.Floor(stat.Variance(raw, nil))
	res["dev"] = math.Floor(math.Sqrt(res["var"]))
	res["med"] = math.Floor(stat.Quantile(0.5, stat.Empirical, raw, nil))
	return res
}
