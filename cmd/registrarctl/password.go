package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

// readPassword and isTerminal are test seams for the terminal.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

func newHashPasswordCmd() *cobra.Command {
	var cost int
	cmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Print a bcrypt hash for a password read from the terminal or stdin",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := promptPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if len(pw) == 0 {
				return errors.New("empty password")
			}
			hash, err := bcrypt.GenerateFromPassword(pw, cost)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(hash))
			return nil
		},
	}
	cmd.Flags().IntVar(&cost, "cost", bcrypt.DefaultCost, "bcrypt cost")
	return cmd
}

// promptPassword reads without echo from a terminal, otherwise one line from in.
func promptPassword(in io.Reader, w io.Writer) ([]byte, error) {
	fd := int(os.Stdin.Fd())
	if in == os.Stdin && isTerminal(fd) {
		fmt.Fprint(w, "Enter password: ")
		pw, err := readPassword(fd)
		fmt.Fprintln(w)
		return pw, err
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
		return nil, err
	}
	return []byte(strings.TrimRight(line, "\r\n")), nil
}
