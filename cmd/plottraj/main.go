// Command plottraj renders the trajectories of a saved session, one PNG per trial.
//
//	plottraj Results/data_01_20240711_003011.json
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"visuomotor/experiment/session"
	"visuomotor/internal/trajplot"
)

const defaultArtifact = "Results/data_25_20240712_115805.json"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run plots the artifact named by the single positional argument, taken verbatim
// even when it starts with a dash. With any other argument count it prints the
// usage and falls back to the default artifact.
func run(args []string, stdout, stderr io.Writer) int {
	path := defaultArtifact
	if len(args) == 1 {
		path = args[0]
	} else {
		fmt.Fprintln(stdout, "Usage: plottraj <artifact>")
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(stdout, "File %s does not exist.\n", path)
			return 0
		}
		fmt.Fprintf(stderr, "stat %s: %v\n", path, err)
		return 2
	}
	fmt.Fprintf(stdout, "filename=%q\n", path)

	rec, err := session.Open(path)
	if err != nil {
		fmt.Fprintf(stderr, "open: %v\n", err)
		return 2
	}
	written, skipped, err := trajplot.SaveSession(rec, path)
	for _, p := range written {
		fmt.Fprintf(stdout, "wrote %s\n", p)
	}
	for _, n := range skipped {
		fmt.Fprintf(stdout, "trial %d: no samples, skipped\n", n)
	}
	if err != nil {
		fmt.Fprintf(stderr, "plot: %v\n", err)
		return 2
	}
	return 0
}
