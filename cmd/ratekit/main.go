package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/meenmo/ratekit/cmd/ratekit/internal/curves"
	"github.com/meenmo/ratekit/cmd/ratekit/internal/irs"
	"github.com/meenmo/ratekit/cmd/ratekit/internal/options"
)

func main() {
	// RATEKIT_* overrides may live in a local .env; a missing file is fine.
	_ = godotenv.Load()
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return 2
	}

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "calibrate", "curves":
		return curves.Run(args[1:], stdin, stdout, stderr)
	case "swap", "irs", "ois":
		return irs.Run(args[1:], stdin, stdout, stderr)
	case "swaption":
		return options.Run(args[1:], stdin, stdout, stderr)
	case "-h", "--help", "help":
		usage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
		usage(stderr)
		return 2
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: ratekit <command> [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  calibrate  Calibrate curve groups and print the curves")
	fmt.Fprintln(w, "  swap       Fixed-vs-floating swap NPV, par rate and PV01")
	fmt.Fprintln(w, "  swaption   Physical swaption PV, Greeks and PV01")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Settings may be overridden with RATEKIT_* environment variables,")
	fmt.Fprintln(w, "e.g. RATEKIT_SOLVER_TOLERANCE or RATEKIT_LOG_LEVEL.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run `ratekit <command> -h` for command-specific help.")
}
