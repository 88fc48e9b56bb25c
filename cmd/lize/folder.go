package main

import (
	"context"

	"github.com/spf13/cobra"
)

func init() {
	folderCmd := &cobra.Command{Use: "folder", Short: "Folder operations"}

	var ambito string
	folderCmd.PersistentFlags().StringVarP(&ambito, "ambito", "a", "", "Ambito name (defaults to the first)")

	addCmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Create an empty folder (empty folders are not stored)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, a *app) error {
				if err := selectAmbito(a, ambito); err != nil {
					return err
				}
				if err := a.sess.AddFolder(args[0]); err != nil {
					return err
				}
				printStatus(cmd, a)
				return nil
			})
		},
	}
	folderCmd.AddCommand(addCmd)

	rmCmd := &cobra.Command{
		Use:   "rm NAME",
		Short: "Delete a folder and every note in it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, a *app) error {
				if err := selectAmbito(a, ambito); err != nil {
					return err
				}
				if err := a.sess.DeleteFolder(args[0]); err != nil {
					return err
				}
				printStatus(cmd, a)
				return nil
			})
		},
	}
	folderCmd.AddCommand(rmCmd)

	rootCmd.AddCommand(folderCmd)
}
