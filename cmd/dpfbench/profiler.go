package main

import (
	"log"
	"os"
	"runtime/pprof"
)

// profiler mirrors the teacher's driver.Profiler: an optional, file-backed
// CPU profile spanning the benchmark run.
type profiler struct {
	f *os.File
}

func newCPUProfiler(filename string) *profiler {
	p := new(profiler)
	if filename != "" {
		var err error
		p.f, err = os.Create(filename)
		if err != nil {
			log.Fatalf("could not create CPU profile: %v", err)
		}
		if err := pprof.StartCPUProfile(p.f); err != nil {
			log.Fatalf("could not start CPU profile: %v", err)
		}
	}
	return p
}

func (p *profiler) close() {
	if p.f == nil {
		return
	}
	pprof.StopCPUProfile()
	p.f.Close()
}
