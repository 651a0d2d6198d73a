package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var queryFlag string

var runCmd = &cobra.Command{
	Use:   "run [file...]",
	Short: "Load knowledge files and start an interactive session",
	Long: `Loads the given knowledge files (text or YAML) and reads commands from
stdin. With --query, answers a single ask and exits.`,
	RunE: runSession,
}

func init() {
	runCmd.Flags().StringVarP(&queryFlag, "query", "q", "", "One-shot query (non-interactive mode)")
}

func runSession(cmd *cobra.Command, args []string) error {
	comp, err := load(args)
	if err != nil {
		return err
	}
	defer comp.Logger.Sync()

	s := &session{kb: comp.KB, registry: comp.Registry}
	out := cmd.OutOrStdout()

	// One-shot query mode
	if queryFlag != "" {
		res, err := s.exec("ask " + queryFlag)
		if err != nil {
			return err
		}
		fmt.Fprint(out, res)
		return nil
	}

	// Interactive mode
	fmt.Fprintln(out, "===========================================")
	fmt.Fprintln(out, "  Chainer")
	fmt.Fprintln(out, "  Forward chaining with truth maintenance")
	fmt.Fprintln(out, "===========================================")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Type 'help' for commands (Ctrl+D to exit):")
	fmt.Fprintln(out)

	repl(s, cmd.InOrStdin(), out)

	fmt.Fprintln(out, "\nGoodbye!")
	return nil
}

func repl(s *session, in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}

		res, err := s.exec(line)
		if err != nil {
			fmt.Fprintln(out, "Error:", err)
			continue
		}
		fmt.Fprint(out, res)
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintln(os.Stderr, "read input:", err)
	}
}
