package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ariadne-cps/pExplore/results"
	"github.com/ariadne-cps/pExplore/scorelog"
)

func summary(args []string) error {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	output := fs.String("output", "", "Write the summary as JSON to this file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: pexplore summary <history.jsonl> [options]

Summarise a generation history exported by 'pexplore search -jsonl'.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("history file required")
	}

	records, err := scorelog.LoadJSONL(fs.Arg(0))
	if err != nil {
		return err
	}
	s, err := results.FromRecords(records)
	if err != nil {
		return err
	}
	printSummary(s)

	if *output != "" {
		if err := s.SaveJSON(*output); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", *output)
	}
	return nil
}
