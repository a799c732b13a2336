// funnelctl is the operator CLI for the diet funnel: run the calorie
// calculator from a terminal, hash the admin password, and check a plan
// catalog before deploying it.
// Usage: go run ./cmd/funnelctl <command>
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "funnelctl",
		Short:         "Operator tools for the diet funnel API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newCalcCmd(), newHashPasswordCmd(), newPlansCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// prompt prints label and reads one trimmed line from r.
func prompt(r *bufio.Reader, w io.Writer, label string) string {
	fmt.Fprint(w, label)
	line, _ := r.ReadString('\n')
	return strings.TrimSpace(line)
}
