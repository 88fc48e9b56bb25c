package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PIS-2020-2021/PIS/internal/localstate"
	"github.com/PIS-2020-2021/PIS/internal/store"
)

func init() {
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create the configured user with its default ambito",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = a.close(ctx) }()

			created, err := localstate.EnsureDefaultUser(ctx, a.storage.Store, a.cfg.UserID)
			if err != nil {
				return err
			}
			if created {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "User %s created.\n", a.cfg.UserID)
			} else {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "User %s already exists.\n", a.cfg.UserID)
			}
			return nil
		},
	}
	rootCmd.AddCommand(initCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Check that the configured store is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = a.close(ctx) }()

			if err := store.NewHealthChecker(a.storage.Store, a.log, 0).Check(ctx); err != nil {
				return fmt.Errorf("store %s unhealthy: %w", a.cfg.DBDriver, err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Store %s is healthy.\n", a.cfg.DBDriver)
			return nil
		},
	}
	rootCmd.AddCommand(statusCmd)

	userCmd := &cobra.Command{Use: "user", Short: "User operations"}

	var name, lastName, mail, password string
	editCmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit the profile of the current user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, a *app) error {
				u := a.sess.CurrentUser()
				n, l, m := u.Name, u.LastName, u.Mail
				if cmd.Flags().Changed("name") {
					n = name
				}
				if cmd.Flags().Changed("last-name") {
					l = lastName
				}
				if cmd.Flags().Changed("mail") {
					m = mail
				}
				if err := a.sess.EditUser(n, l, m, password); err != nil {
					return err
				}
				printStatus(cmd, a)
				return nil
			})
		},
	}
	editCmd.Flags().StringVar(&name, "name", "", "First name")
	editCmd.Flags().StringVar(&lastName, "last-name", "", "Last name")
	editCmd.Flags().StringVar(&mail, "mail", "", "Mail address")
	editCmd.Flags().StringVar(&password, "password", "", "New password (kept when empty)")
	userCmd.AddCommand(editCmd)

	rootCmd.AddCommand(userCmd)
}
