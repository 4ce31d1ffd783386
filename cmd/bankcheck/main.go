// bankcheck loads a question bank file and reports what a quiz session would
// actually see: usable question count, dropped rows with reasons, and answer
// keys that match none of their options.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/southeastwestnorth/tanzimapp/internal/bank"
)

func main() {
	var (
		shuffle bool
		seed    int64
	)
	flag.BoolVar(&shuffle, "shuffle", false, "Apply the load-time row permutation before printing")
	flag.Int64Var(&seed, "seed", 0, "Seed for -shuffle (0 uses the current time)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: bankcheck [-shuffle] [-seed N] <file.csv|file.xlsx>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	opts := bank.Options{}
	if shuffle {
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		opts.Shuffle = true
		opts.Rand = rand.New(rand.NewSource(seed))
	}

	loaded, err := bank.LoadFile(path, opts)
	if err != nil {
		log.Fatalf("Load failed: %v", err)
	}

	fmt.Printf("%s: %d usable question(s), %d dropped row(s)\n", path, len(loaded.Questions), loaded.Dropped)
	for _, rowErr := range loaded.DroppedRows {
		fmt.Printf("  dropped %s\n", rowErr)
	}

	mismatches := bank.Validate(loaded)
	for _, m := range mismatches {
		fmt.Printf("  key mismatch: %s\n", m)
	}

	if len(mismatches) > 0 {
		fmt.Printf("%d question(s) have an answer key that matches no option\n", len(mismatches))
		os.Exit(1)
	}
	fmt.Println("All answer keys match an option")
}
