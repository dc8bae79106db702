package util

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
)

// Options holds every command-line-derived setting for one compiler run.
type Options struct {
	Src     string // Path to the entry source file.
	Out     string // Path to the output FASM file.
	Verbose bool   // Report the written output path on stdout.
	Tree    bool   // Print the program tree and exit without analyzing.
}

const appVersion = "ctildec 1.0"
const defaultOut = "out.asm"

// ParseArgs parses os.Args[1:] into Options.
func ParseArgs() (Options, error) {
	opt := Options{Out: defaultOut}
	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-h", "--h", "-help", "--help":
			printHelp()
			os.Exit(0)
		case "-v", "--v", "-version", "--version":
			fmt.Println(appVersion)
			os.Exit(0)
		case "-o":
			if i+1 >= len(args) {
				return opt, fmt.Errorf("got flag %s but no argument", args[i])
			}
			if strings.HasPrefix(args[i+1], "-") {
				return opt, fmt.Errorf("expected path to output file, got new flag %s", args[i+1])
			}
			opt.Out = args[i+1]
			i++
		case "-vb":
			opt.Verbose = true
		case "-tree":
			opt.Tree = true
		default:
			if strings.HasPrefix(args[i], "-") {
				return opt, fmt.Errorf("unexpected flag: %s", args[i])
			}
			opt.Src = args[i]
		}
	}
	if opt.Src == "" {
		return opt, fmt.Errorf("no source file given")
	}
	return opt, nil
}

// printHelp prints a usage summary to stdout.
func printHelp() {
	w := tabwriter.NewWriter(os.Stdout, 6, 1, 1, 0, 0)
	_, _ = fmt.Fprintln(w, "-h, -help\tPrints this help message and exits.")
	_, _ = fmt.Fprintln(w, "-o\tPath of the output FASM file. Defaults to out.asm.")
	_, _ = fmt.Fprintln(w, "-tree\tPrint the parsed program tree and exit without analyzing.")
	_, _ = fmt.Fprintln(w, "-v, -version\tPrints application version and exits.")
	_, _ = fmt.Fprintln(w, "-vb\tVerbose mode: report the written output file on stdout.")
	_ = w.Flush()
}
