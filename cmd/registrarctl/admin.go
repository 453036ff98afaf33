package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"registrar-portal/backend/internal/model"
	"registrar-portal/backend/internal/store"
)

func newOTPSettingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "otp-setting",
		Short: "Read or change the OTP requirement of an account",
	}

	get := &cobra.Command{
		Use:   "get <user|prof> <person_id>",
		Short: "Show whether an account requires OTP",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := model.ParseAccountSource(args[0])
			if err != nil {
				return err
			}
			return withStore(func(st adminStore) error {
				require, err := st.GetRequireOTP(cmd.Context(), src, args[1])
				if errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("no %s account for person %s", src, args[1])
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s require_otp=%t\n", src, args[1], require)
				return nil
			})
		},
	}

	set := &cobra.Command{
		Use:   "set <user|prof> <person_id> <on|off>",
		Short: "Enable or disable OTP for an account",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := model.ParseAccountSource(args[0])
			if err != nil {
				return err
			}
			var require bool
			switch args[2] {
			case "on", "1", "true":
				require = true
			case "off", "0", "false":
			default:
				return fmt.Errorf("want on or off, got %q", args[2])
			}
			return withStore(func(st adminStore) error {
				err := st.SetRequireOTP(cmd.Context(), src, args[1], require)
				if errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("no %s account for person %s", src, args[1])
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s require_otp=%t\n", src, args[1], require)
				return nil
			})
		},
	}

	cmd.AddCommand(get, set)
	return cmd
}

func newPageAccessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "page-access <employee_id> [page_id]",
		Short: "List the pages an employee can open, or show the privilege on one page",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			employeeID := args[0]
			return withStore(func(st adminStore) error {
				out := cmd.OutOrStdout()
				if len(args) == 1 {
					pages, err := st.ListPageAccess(cmd.Context(), employeeID)
					if err != nil {
						return err
					}
					if len(pages) == 0 {
						fmt.Fprintln(out, "No pages found")
						return nil
					}
					for _, p := range pages {
						fmt.Fprintln(out, p)
					}
					return nil
				}

				pageID, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("invalid page id %q", args[1])
				}
				p, err := st.GetPagePrivilege(cmd.Context(), employeeID, pageID)
				if errors.Is(err, store.ErrNotFound) {
					p = 0
				} else if err != nil {
					return err
				}
				fmt.Fprintf(out, "page %d privilege=%d\n", pageID, p)
				return nil
			})
		},
	}
}
