package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"github.com/openlot/sealedbid/audit"
	"github.com/openlot/sealedbid/validation"
)

func main() {
	var (
		streamPath   = flag.String("stream", "", "Path to a CBOR audit stream exported by the host")
		auctionAddr  = flag.String("auction", "", "Auction address to verify (default: first auction in the stream)")
		reserveInput = flag.String("reserve", "", "The auction's reserve price")
		outputFormat = flag.String("format", "text", "Output format: text or json")
	)
	flag.Parse()

	if *streamPath == "" || *reserveInput == "" {
		flag.Usage()
		fmt.Fprintf(os.Stderr, "\nError: --stream and --reserve are required\n")
		os.Exit(1)
	}

	reserve, err := decimal.NewFromString(*reserveInput)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid reserve price %q: %v\n", *reserveInput, err)
		os.Exit(1)
	}

	data, err := os.ReadFile(*streamPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading stream: %v\n", err)
		os.Exit(2)
	}

	events, err := audit.DecodeCBOR(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error decoding stream: %v\n", err)
		os.Exit(2)
	}

	target := *auctionAddr
	if target == "" && len(events) > 0 {
		target = events[0].Auction
	}
	scoped := make([]audit.Event, 0, len(events))
	for _, ev := range events {
		if ev.Auction == target {
			scoped = append(scoped, ev)
		}
	}

	result, err := validation.ReplayAuction(scoped, reserve)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error replaying stream: %v\n", err)
		os.Exit(2)
	}

	if *outputFormat == "json" {
		out, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(out))
	} else {
		fmt.Printf("auction:       %s\n", target)
		fmt.Printf("events:        %d\n", len(scoped))
		fmt.Printf("stage order:   %s\n", verdict(result.StageMonotonic))
		fmt.Printf("ranking:       %s\n", verdict(result.RankingConsistent))
		fmt.Printf("conservation:  %s\n", verdict(result.ConservationValid))
		for _, detail := range result.ValidationDetails {
			fmt.Printf("  - %s\n", detail)
		}
	}

	if !result.IsValid() {
		os.Exit(3)
	}
}

func verdict(ok bool) string {
	if ok {
		return "PASS"
	}
	return "FAIL"
}
