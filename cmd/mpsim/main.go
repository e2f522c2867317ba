// Command mpsim is a thin demonstration harness over package mps. It wires
// an environment-configured chain and RNG source against a handful of
// canned circuits and prints the resulting norm, bond dimensions,
// truncation history, and fingerprint to stdout. It contains no business
// logic of its own.
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/latticeqc/mps/gatelib"
	"github.com/latticeqc/mps/mps"
	"github.com/latticeqc/mps/qrand"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	if len(os.Args) < 2 {
		printUsage()
		return
	}

	circuit := os.Args[1]

	qudit, maxSVals, fidelityTol := loadEnvConfig()

	var (
		c   *mps.Chain
		err error
	)
	switch circuit {
	case "bell":
		c, err = runBell(qudit, maxSVals)
	case "ghz":
		c, err = runGHZ(qudit, maxSVals)
	case "random":
		c, err = runRandom(qudit)
	case "help":
		printUsage()
		return
	default:
		fmt.Printf("unknown circuit: %s\n", circuit)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("circuit %q failed: %v", circuit, err)
	}

	c.SetNormTolerance(fidelityTol)
	report(c, maxSVals)
}

func printUsage() {
	fmt.Println("mpsim - matrix product state circuit demo")
	fmt.Println()
	fmt.Println("Usage: mpsim <circuit>")
	fmt.Println()
	fmt.Println("Circuits:")
	fmt.Println("  bell   - two-qudit Bell pair")
	fmt.Println("  ghz    - three-qudit GHZ-family state via swap routing")
	fmt.Println("  random - random single-qudit rotations on a five-qudit chain")
	fmt.Println("  help   - show this help message")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  MPSIM_QUDIT_DIM    - local qudit dimension (default 2)")
	fmt.Println("  MPSIM_MAX_SVALS    - absolute bond cap applied to two-site gates (default: no cap)")
	fmt.Println("  MPSIM_FIDELITY_TOL - norm residual tolerance (default 1e-6)")
}

func loadEnvConfig() (qudit int, maxSVals *int, fidelityTol float64) {
	qudit = 2
	if v := os.Getenv("MPSIM_QUDIT_DIM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 2 {
			qudit = n
		} else {
			log.Printf("ignoring invalid MPSIM_QUDIT_DIM=%q", v)
		}
	}

	if v := os.Getenv("MPSIM_MAX_SVALS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			maxSVals = &n
		} else {
			log.Printf("ignoring invalid MPSIM_MAX_SVALS=%q", v)
		}
	}

	fidelityTol = mps.DefaultNormTolerance
	if v := os.Getenv("MPSIM_FIDELITY_TOL"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			fidelityTol = f
		} else {
			log.Printf("ignoring invalid MPSIM_FIDELITY_TOL=%q", v)
		}
	}

	return qudit, maxSVals, fidelityTol
}

func gateOptions(maxSVals *int) (mps.GateOptions, error) {
	policy, err := mps.NewTruncationPolicy(maxSVals, nil)
	if err != nil {
		return mps.GateOptions{}, err
	}
	return mps.GateOptions{KeepLeftCanonical: true, Truncation: policy}, nil
}

func runBell(qudit int, maxSVals *int) (*mps.Chain, error) {
	c, err := mps.New(2, qudit)
	if err != nil {
		return nil, err
	}
	if err := c.ApplyOneSite(gatelib.Hadamard(), 0); err != nil {
		return nil, err
	}
	opts, err := gateOptions(maxSVals)
	if err != nil {
		return nil, err
	}
	if err := c.ApplyTwoSite(gatelib.CNOT(), 0, 1, opts); err != nil {
		return nil, err
	}
	return c, nil
}

func runGHZ(qudit int, maxSVals *int) (*mps.Chain, error) {
	c, err := mps.New(3, qudit)
	if err != nil {
		return nil, err
	}
	opts, err := gateOptions(maxSVals)
	if err != nil {
		return nil, err
	}
	if err := c.ApplyOneSite(gatelib.Hadamard(), 0); err != nil {
		return nil, err
	}
	if err := c.SwapUntilAdjacent(0, 2, opts); err != nil {
		return nil, err
	}
	if err := c.ApplyTwoSite(gatelib.CNOT(), 1, 2, opts); err != nil {
		return nil, err
	}
	return c, nil
}

func runRandom(qudit int) (*mps.Chain, error) {
	const n = 5
	c, err := mps.New(n, qudit)
	if err != nil {
		return nil, err
	}
	src := qrand.FromSeed([]byte("mpsim-random-circuit-demo"))
	for i := 0; i < n; i++ {
		if qudit != 2 {
			continue // RandomSingleQubitRotation is defined for qubits only
		}
		if err := c.ApplyOneSite(gatelib.RandomSingleQubitRotation(src), i); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func report(c *mps.Chain, maxSVals *int) {
	norm, err := c.Norm()
	if err != nil {
		log.Fatalf("norm: %v", err)
	}
	bonds, err := c.BondDimensions()
	if err != nil {
		log.Fatalf("bond dimensions: %v", err)
	}
	fp, err := c.Fingerprint(false)
	if err != nil {
		log.Fatalf("fingerprint: %v", err)
	}

	fmt.Printf("sites:       %d\n", c.NumSites())
	fmt.Printf("qudit dim:   %d\n", c.QuditDimension())
	fmt.Printf("norm:        %.12f\n", norm)
	fmt.Printf("bonds:       %v\n", bonds)
	fmt.Printf("truncated:   %v\n", c.TruncationHistory())
	fmt.Printf("fidelity:    %v\n", c.FidelityHistory())
	fmt.Printf("fingerprint: %s\n", fp)
	if maxSVals != nil {
		fmt.Printf("max_svals:   %d\n", *maxSVals)
	}
}
