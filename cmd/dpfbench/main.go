// Command dpfbench measures DPF key generation and evaluation throughput
// across one or more parameter sweeps, the way the teacher's cmd/stress
// measures PIR answer throughput.
package main

import (
	"crypto/rand"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/paulbellamy/ratecounter"
	"lukechampine.com/uint128"

	"github.com/distributed-point-functions/dpf-go/dpf"
)

func main() {
	logDomains := flag.String("log-domains", "16", "comma-separated log_domain_size per hierarchy level (ignored if -config is set)")
	elementBits := flag.String("element-bits", "8", "comma-separated element_bitsize per hierarchy level (ignored if -config is set)")
	config := flag.String("config", "", "path to a JSON file listing parameter sweeps, read at startup (later edits are reloaded by a watcher but do not change the running sweeps)")
	workers := flag.Int("workers", 4, "concurrent keygen+eval workers per sweep")
	cpuProfile := flag.String("cpuprofile", "", "write cpu profile to `file`")
	flag.Parse()

	prof := newCPUProfiler(*cpuProfile)
	defer prof.close()

	var sweeps [][]dpf.Parameters
	var watcher *sweepWatcher
	if *config != "" {
		watcher = newSweepWatcher(*config)
		defer watcher.close()
		sweeps = watcher.current()
	} else {
		sweeps = [][]dpf.Parameters{parseParams(*logDomains, *elementBits)}
	}

	keygenRate := ratecounter.NewRateCounter(1 * time.Second)
	evalRate := ratecounter.NewRateCounter(1 * time.Second)

	stop := make(chan struct{})
	var wg sync.WaitGroup
	runSweep := func(params []dpf.Parameters) {
		d, err := dpf.CreateIncremental(params)
		if err != nil {
			log.Fatalf("CreateIncremental(%v): %v", params, err)
		}
		beta := make([]uint128.Uint128, len(params))
		for i := range beta {
			beta[i] = uint128.From64(1)
		}
		for w := 0; w < *workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for {
					select {
					case <-stop:
						return
					default:
					}
					keyA, _, err := d.GenerateKeysIncremental(rand.Reader, uint128.Zero, beta)
					if err != nil {
						log.Fatalf("GenerateKeysIncremental: %v", err)
					}
					keygenRate.Incr(1)

					ctx, err := d.CreateEvaluationContext(keyA)
					if err != nil {
						log.Fatalf("CreateEvaluationContext: %v", err)
					}
					prefixes := []uint128.Uint128{uint128.Zero}
					for _, p := range params {
						switch p.ElementBitsize {
						case 1, 2, 4, 8:
							_, err = ctx.EvaluateNextUint8(prefixes)
						case 16:
							_, err = ctx.EvaluateNextUint16(prefixes)
						case 32:
							_, err = ctx.EvaluateNextUint32(prefixes)
						case 64:
							_, err = ctx.EvaluateNextUint64(prefixes)
						case 128:
							_, err = ctx.EvaluateNextUint128(prefixes)
						}
						if err != nil {
							log.Fatalf("EvaluateNext: %v", err)
						}
						evalRate.Incr(1)
					}
				}
			}()
		}
	}

	for _, params := range sweeps {
		runSweep(params)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		close(stop)
	}()

	for {
		select {
		case <-stop:
			wg.Wait()
			return
		default:
			fmt.Printf("\rkeygen: %d/s  eval: %d/s", keygenRate.Rate(), evalRate.Rate())
			time.Sleep(1 * time.Second)
		}
	}
}

func parseParams(logDomains, elementBits string) []dpf.Parameters {
	ld := strings.Split(logDomains, ",")
	eb := strings.Split(elementBits, ",")
	if len(ld) != len(eb) {
		log.Fatalf("-log-domains and -element-bits must have the same number of entries")
	}
	params := make([]dpf.Parameters, len(ld))
	for i := range ld {
		l, err := strconv.Atoi(strings.TrimSpace(ld[i]))
		if err != nil {
			log.Fatalf("bad log_domain_size %q: %v", ld[i], err)
		}
		b, err := strconv.Atoi(strings.TrimSpace(eb[i]))
		if err != nil {
			log.Fatalf("bad element_bitsize %q: %v", eb[i], err)
		}
		params[i] = dpf.Parameters{LogDomainSize: l, ElementBitsize: b}
	}
	return params
}
