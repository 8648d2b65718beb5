// Command dpfgen generates a pair of DPF keys for a given parameter list,
// alpha and beta vector, and writes each party's key to its own file.
package main

import (
	"crypto/rand"
	"flag"
	"io/ioutil"
	"log"
	"strconv"
	"strings"

	"lukechampine.com/uint128"

	"github.com/distributed-point-functions/dpf-go/dpf"
)

func main() {
	logDomains := flag.String("log-domains", "8", "comma-separated log_domain_size per hierarchy level")
	elementBits := flag.String("element-bits", "8", "comma-separated element_bitsize per hierarchy level")
	alphaFlag := flag.String("alpha", "0", "the point shared across keys")
	betaFlag := flag.String("beta", "1", "comma-separated beta per hierarchy level")
	outA := flag.String("out-a", "key_a.bin", "output path for party A's key")
	outB := flag.String("out-b", "key_b.bin", "output path for party B's key")
	flag.Parse()

	params := parseParams(*logDomains, *elementBits)
	d, err := dpf.CreateIncremental(params)
	if err != nil {
		log.Fatalf("CreateIncremental: %v", err)
	}

	alpha := parseUint128(*alphaFlag)
	beta := parseUint128List(*betaFlag)
	if len(beta) != len(params) {
		log.Fatalf("-beta has %d entries, want %d (one per hierarchy level)", len(beta), len(params))
	}

	keyA, keyB, err := d.GenerateKeysIncremental(rand.Reader, alpha, beta)
	if err != nil {
		log.Fatalf("GenerateKeysIncremental: %v", err)
	}

	writeKey(*outA, keyA)
	writeKey(*outB, keyB)
	log.Printf("wrote %s and %s for %d hierarchy level(s)", *outA, *outB, len(params))
}

func writeKey(path string, key dpf.DpfKey) {
	data, err := key.MarshalBinary()
	if err != nil {
		log.Fatalf("marshaling key for %s: %v", path, err)
	}
	if err := ioutil.WriteFile(path, data, 0644); err != nil {
		log.Fatalf("writing %s: %v", path, err)
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

// parseUint128 parses a CLI-supplied decimal value as a uint64, which is
// plenty for every domain this tool is used to exercise interactively;
// dpf itself supports the full 128-bit range.
func parseUint128(s string) uint128.Uint128 {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		log.Fatalf("bad integer %q: %v", s, err)
	}
	return uint128.From64(v)
}

func parseUint128List(s string) []uint128.Uint128 {
	parts := strings.Split(s, ",")
	out := make([]uint128.Uint128, len(parts))
	for i, p := range parts {
		out[i] = parseUint128(p)
	}
	return out
}
