// Command dpfeval loads a DPF key and walks it level by level over a
// caller-supplied set of prefixes, printing the resulting shares.
package main

import (
	"flag"
	"fmt"
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
	keyPath := flag.String("key", "key_a.bin", "path to a key written by dpfgen")
	prefixesFlag := flag.String("prefixes", "", "semicolon-separated, per hierarchy level, comma-separated prefix lists; empty entries mean \"reuse the previous level's prefixes\"")
	flag.Parse()

	params := parseParams(*logDomains, *elementBits)
	d, err := dpf.CreateIncremental(params)
	if err != nil {
		log.Fatalf("CreateIncremental: %v", err)
	}

	data, err := ioutil.ReadFile(*keyPath)
	if err != nil {
		log.Fatalf("reading %s: %v", *keyPath, err)
	}
	var key dpf.DpfKey
	if err := key.UnmarshalBinary(data); err != nil {
		log.Fatalf("unmarshaling %s: %v", *keyPath, err)
	}

	ctx, err := d.CreateEvaluationContext(key)
	if err != nil {
		log.Fatalf("CreateEvaluationContext: %v", err)
	}

	levels := parsePrefixLevels(*prefixesFlag, len(params))
	var prefixes []uint128.Uint128
	for i, p := range params {
		if levels[i] != nil {
			prefixes = levels[i]
		}
		switch p.ElementBitsize {
		case 1, 2, 4, 8:
			out, err := ctx.EvaluateNextUint8(prefixes)
			report(i, p, prefixes, err, func(idx int) string { return fmt.Sprint(out[idx]) })
		case 16:
			out, err := ctx.EvaluateNextUint16(prefixes)
			report(i, p, prefixes, err, func(idx int) string { return fmt.Sprint(out[idx]) })
		case 32:
			out, err := ctx.EvaluateNextUint32(prefixes)
			report(i, p, prefixes, err, func(idx int) string { return fmt.Sprint(out[idx]) })
		case 64:
			out, err := ctx.EvaluateNextUint64(prefixes)
			report(i, p, prefixes, err, func(idx int) string { return fmt.Sprint(out[idx]) })
		case 128:
			out, err := ctx.EvaluateNextUint128(prefixes)
			report(i, p, prefixes, err, func(idx int) string { return out[idx].String() })
		}
	}
}

func report(level int, p dpf.Parameters, prefixes []uint128.Uint128, err error, show func(int) string) {
	if err != nil {
		log.Fatalf("hierarchy %d (log_domain_size=%d element_bitsize=%d): %v", level, p.LogDomainSize, p.ElementBitsize, err)
	}
	for i, prefix := range prefixes {
		fmt.Printf("level %d prefix %s => %s\n", level, prefix.String(), show(i))
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

// parsePrefixLevels splits -prefixes on ";" into one comma-separated prefix
// list per hierarchy level; a blank segment leaves that level's entry nil,
// telling main to reuse whatever prefix list the previous level used.
func parsePrefixLevels(s string, numLevels int) [][]uint128.Uint128 {
	out := make([][]uint128.Uint128, numLevels)
	if s == "" {
		return out
	}
	segs := strings.Split(s, ";")
	for i := 0; i < numLevels && i < len(segs); i++ {
		seg := strings.TrimSpace(segs[i])
		if seg == "" {
			continue
		}
		var vals []uint128.Uint128
		for _, v := range strings.Split(seg, ",") {
			n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
			if err != nil {
				log.Fatalf("bad prefix %q: %v", v, err)
			}
			vals = append(vals, uint128.From64(n))
		}
		out[i] = vals
	}
	return out
}
