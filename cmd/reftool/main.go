// reftool is a CLI utility for maintaining the region reference document.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/neuroview/internal/reference"
	"github.com/Faultbox/neuroview/internal/region"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 1
	}

	command, rest := args[0], args[1:]
	var err error
	switch command {
	case "merge":
		err = cmdMerge(rest, stdout)
	case "show":
		err = cmdShow(rest, stdout)
	case "check":
		err = cmdCheck(rest, stdout)
	case "help", "-h", "--help":
		printUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", command)
		printUsage(stderr)
		return 1
	}

	var usage usageError
	switch {
	case errors.As(err, &usage):
		fmt.Fprintf(stderr, "Usage: reftool %s\n", string(usage))
		return 1
	case err != nil:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

type usageError string

func (u usageError) Error() string { return "usage: " + string(u) }

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `reftool - region reference document utility

Usage:
  reftool <command> [options]

Commands:
  merge [-o out] <reference.json> <updates.yaml|json>  Apply per-id field updates
  show <reference.json> <id>                          Print the info panel of a region
  check [-all] <reference.json>                       List entries with missing fields

Examples:
  reftool merge reference.json updates.yaml
  reftool merge -o merged.json reference.json updates.json
  reftool show reference.json 100
  reftool check reference.json`)
}

// cmdMerge applies updates and writes the result atomically. Without -o
// the reference file is updated in place.
func cmdMerge(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("merge", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	out := fs.String("o", "", "Output path (default: overwrite the reference)")
	if err := fs.Parse(args); err != nil || fs.NArg() != 2 {
		return usageError("merge [-o out] <reference.json> <updates.yaml|json>")
	}
	refPath, updPath := fs.Arg(0), fs.Arg(1)

	doc, err := os.ReadFile(refPath)
	if err != nil {
		return err
	}
	updates, err := readUpdates(updPath)
	if err != nil {
		return err
	}
	merged, err := reference.Merge(doc, updates)
	if err != nil {
		return err
	}

	dst := *out
	if dst == "" {
		dst = refPath
	}
	if err := writeFile(dst, merged); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Updated %d entries in %s\n", len(updates), dst)
	return nil
}

// readUpdates parses an update file. JSON documents are valid YAML.
func readUpdates(path string) (reference.Updates, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var updates reference.Updates
	if err := yaml.Unmarshal(data, &updates); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("%s contains no updates", path)
	}
	return updates, nil
}

func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".reftool-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func loadTable(path string) (reference.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return reference.Parse(data)
}

func cmdShow(args []string, stdout io.Writer) error {
	if len(args) != 2 {
		return usageError("show <reference.json> <id>")
	}
	table, err := loadTable(args[0])
	if err != nil {
		return err
	}
	base := args[1]
	entry, ok := table[base]
	if id := region.ID(base); !ok && id.Valid() {
		base = id.Base()
		entry, ok = table[base]
	}
	if !ok {
		return fmt.Errorf("%w: %s", reference.ErrUnknownID, base)
	}

	tip := reference.TooltipFor(base, entry)
	fmt.Fprintln(stdout, "Tooltip:")
	for _, l := range tip.Lines() {
		fmt.Fprintf(stdout, "  %s\n", l)
	}
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Panel:")
	for _, l := range reference.PanelFor(base, entry).Lines() {
		fmt.Fprintf(stdout, "  %s\n", l)
	}
	return nil
}

func cmdCheck(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	all := fs.Bool("all", false, "Also list complete entries")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return usageError("check [-all] <reference.json>")
	}
	table, err := loadTable(fs.Arg(0))
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(table))
	for id := range table {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	incomplete := 0
	for _, id := range ids {
		missing := reference.Missing(table[id])
		if len(missing) == 0 {
			if *all {
				fmt.Fprintf(stdout, "%-8s ok\n", id)
			}
			continue
		}
		incomplete++
		fmt.Fprintf(stdout, "%-8s missing: %s\n", id, strings.Join(missing, ", "))
	}
	fmt.Fprintf(stdout, "\n%d entries, %d incomplete\n", len(ids), incomplete)
	return nil
}
