package main

import (
	"bufio"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"lg/diet-funnel-go-api/internal/plans"
)

// newHashPasswordCmd prints a bcrypt hash for ADMIN_PASSWORD_HASH.
func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password",
		Short: "Hash an admin password for ADMIN_PASSWORD_HASH",
		RunE: func(cmd *cobra.Command, args []string) error {
			password := prompt(bufio.NewReader(cmd.InOrStdin()), cmd.ErrOrStderr(), "Password: ")
			if password == "" {
				return errors.New("password must not be empty")
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(hash))
			return nil
		},
	}
}

// newPlansCmd validates a YAML catalog and lists its plans.
func newPlansCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plans [file]",
		Short: "Validate a plan catalog (or show the built-in one)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := plans.Default()
			if len(args) == 1 {
				var err error
				if catalog, err = plans.Load(args[0]); err != nil {
					return err
				}
			}
			for _, p := range catalog.Plans {
				cmd.Printf("%-8s %-24s %s %d.%02d  %d features\n",
					p.Key, p.Name, p.Currency, p.PriceCents/100, p.PriceCents%100, len(p.Features))
			}
			return nil
		},
	}
}
