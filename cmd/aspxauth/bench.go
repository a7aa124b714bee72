package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/aspxauth"
)

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

// cmdBench encodes --ops cookies, then decodes them, each phase spread over
// --concurrency workers.
func cmdBench(w io.Writer) error {
	if flags.ops <= 0 || flags.concurrency <= 0 {
		return errors.New("ops and concurrency must be > 0")
	}

	engine, err := flags.engine()
	if err != nil {
		return err
	}

	cookies := make([]string, flags.ops)
	encode := runPhase(flags.ops, flags.concurrency, func(i int) error {
		c, err := engine.EncodeString(aspxauth.TicketRequest{
			Name:       fmt.Sprintf("user-%d@example.com", i),
			CustomData: "bench",
		})
		cookies[i] = c
		return err
	})
	printStats(w, "encode", encode)

	decode := runPhase(flags.ops, flags.concurrency, func(i int) error {
		if cookies[i] == "" {
			return errors.New("no cookie")
		}
		_, err := engine.DecodeString(cookies[i])
		return err
	})
	printStats(w, "decode", decode)

	if encode.failures > 0 || decode.failures > 0 {
		return fmt.Errorf("%d encode and %d decode failures", encode.failures, decode.failures)
	}
	return nil
}

// runPhase calls op for every index in [0, ops) from concurrency workers and times
// each call.
func runPhase(ops, concurrency int, op func(i int) error) phaseStats {
	var (
		cursor   int64 = -1
		failures int64
		mu       sync.Mutex
		samples  = make([]time.Duration, 0, ops)
		wg       sync.WaitGroup
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]time.Duration, 0, ops/concurrency+1)
			for {
				i := int(atomic.AddInt64(&cursor, 1))
				if i >= ops {
					break
				}
				t0 := time.Now()
				if err := op(i); err != nil {
					atomic.AddInt64(&failures, 1)
				}
				local = append(local, time.Since(t0))
			}
			mu.Lock()
			samples = append(samples, local...)
			mu.Unlock()
		}()
	}
	wg.Wait()

	return computeStats(time.Since(start), samples, failures)
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })

	opsPerS := 0.0
	if total > 0 {
		opsPerS = float64(len(samples)) / total.Seconds()
	}
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  opsPerS,
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(w io.Writer, name string, s phaseStats) {
	fmt.Fprintf(w, "%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
