package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/big"
	"os"

	"github.com/shopspring/decimal"
	"golang.org/x/text/message"

	"CollatzScan/collatz"
	"CollatzScan/common"
	"CollatzScan/family"
)

/*
Inspects a single Collatz trajectory: resolution outcome, step count, peak
value and growth factor, efficient-family membership of the start value,
and how many steps pass before the trajectory first lands on a family
member. Optionally writes the result as one JSON row in the same shape the
reporting scripts consume (n, outcome, steps or cycle value, family a/j/z).
*/

type familyInfo struct {
	A int64 `json:"a"`
	J int   `json:"j"`
	Z int64 `json:"z"`
}

type row struct {
	N          string      `json:"n"`
	Outcome    string      `json:"outcome"`
	Steps      int         `json:"steps,omitempty"`
	CycleValue string      `json:"cycle_value,omitempty"`
	Peak       string      `json:"peak,omitempty"`
	Growth     string      `json:"growth_factor,omitempty"`
	Family     *familyInfo `json:"family,omitempty"`
	EntrySteps *int        `json:"family_entry_steps,omitempty"`
}

func main() {
	nString := flag.String("n", "27", "Starting value (decimal, any size)")
	steps := flag.Int("steps", 0, "Step budget (0 takes the config value)")
	configPath := flag.String("config", "", "YAML run configuration")
	out := flag.String("out", "", "Write the result row to this JSON file")
	show := flag.Int("show", 20, "How many leading trajectory values to print")
	flag.Parse()

	n, ok := new(big.Int).SetString(*nString, 10)
	if !ok {
		log.Fatalf("not a decimal number: %q", *nString)
	}

	cfg, err := common.LoadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *steps > 0 {
		cfg.MaxSteps = *steps
	}

	cache := collatz.NewCache()
	rec, err := collatz.Resolve(n, cfg.MaxSteps, cache)
	if err != nil {
		log.Fatal(err)
	}

	p := message.NewPrinter(message.MatchLanguage("en"))
	printHead(n, *show)

	r := row{N: n.String(), Outcome: rec.Outcome.String()}
	switch rec.Outcome {
	case collatz.Converged:
		r.Steps = rec.Steps
		r.Peak = rec.Peak.String()
		growth := decimal.NewFromBigInt(rec.Peak, 0).DivRound(decimal.NewFromBigInt(n, 0), 4)
		r.Growth = growth.String()
		_, _ = p.Printf("%v reaches 1 in %d steps, peak %v (growth factor %s)\n",
			n, rec.Steps, rec.Peak, growth)
	case collatz.Cycled:
		r.CycleValue = rec.CycleValue.String()
		_, _ = p.Printf("%v revisits %v without reaching 1\n", n, rec.CycleValue)
	case collatz.Unresolved:
		_, _ = p.Printf("%v is unresolved after %d steps\n", n, cfg.MaxSteps)
	}

	if m, ok := family.Classify(n, cfg.Generators, cfg.MaxExponent, cfg.Tolerance); ok {
		r.Family = &familyInfo{A: m.A, J: m.J, Z: m.Z}
		fmt.Printf("family member: %d*4^%d + 1 %+d\n", m.A, m.J, m.Z)
	} else {
		fmt.Printf("not in any configured family\n")
	}
	if k, at, m, ok := family.EntrySteps(n, cfg.Generators, cfg.MaxExponent, cfg.Tolerance, cfg.MaxSteps); ok {
		r.EntrySteps = &k
		_, _ = p.Printf("enters family a=%d at %v after %d steps\n", m.A, at, k)
	}

	if *out != "" {
		writeRow(*out, r)
	}
}

// printHead shows the first few trajectory values, enough to eyeball the
// climb-and-crash shape without dumping thousands of lines.
func printHead(n *big.Int, show int) {
	v := new(big.Int).Set(n)
	for i := 0; i < show; i++ {
		fmt.Printf("%v ", v)
		if v.Cmp(big.NewInt(1)) == 0 {
			break
		}
		v = collatz.Step(v)
	}
	fmt.Printf("...\n")
}

func writeRow(name string, r row) {
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0666)
	if err != nil {
		log.Fatal(err)
	}
	defer func(f *os.File) {
		_ = f.Close()
	}(f)
	txt, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		log.Fatal(err)
	}
	_, err = f.Write(txt)
	if err != nil {
		log.Fatal(err)
	}
	_ = f.Close()
}
