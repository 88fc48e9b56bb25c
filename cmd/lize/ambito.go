package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PIS-2020-2021/PIS/internal/model"
)

// parseColor accepts a palette index or a colour name.
func parseColor(s string) (int, error) {
	if i, err := strconv.Atoi(s); err == nil {
		return i, nil
	}
	for i, c := range model.Colors {
		if strings.EqualFold(c, s) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown color %q (one of %s)", s, strings.Join(model.Colors, ", "))
}

func init() {
	ambitoCmd := &cobra.Command{Use: "ambito", Short: "Ambito operations"}

	var color string
	addCmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Create an ambito",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := parseColor(color)
			if err != nil {
				return err
			}
			return withSession(cmd, func(ctx context.Context, a *app) error {
				if _, err := a.sess.AddAmbito(args[0], c); err != nil {
					return err
				}
				printStatus(cmd, a)
				return nil
			})
		},
	}
	addCmd.Flags().StringVarP(&color, "color", "c", model.Colors[model.DefaultAmbitoColor], "Palette colour (name or index)")
	ambitoCmd.AddCommand(addCmd)

	var newName, newColor string
	editCmd := &cobra.Command{
		Use:   "edit NAME",
		Short: "Rename or recolour an ambito",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, a *app) error {
				amb, err := ambitoByName(a, args[0])
				if err != nil {
					return err
				}
				name, c := amb.Name, amb.Color
				if cmd.Flags().Changed("name") {
					name = newName
				}
				if cmd.Flags().Changed("color") {
					if c, err = parseColor(newColor); err != nil {
						return err
					}
				}
				if err := a.sess.EditAmbito(amb.ID, name, c); err != nil {
					return err
				}
				printStatus(cmd, a)
				return nil
			})
		},
	}
	editCmd.Flags().StringVar(&newName, "name", "", "New name")
	editCmd.Flags().StringVarP(&newColor, "color", "c", "", "New palette colour")
	ambitoCmd.AddCommand(editCmd)

	rmCmd := &cobra.Command{
		Use:   "rm NAME",
		Short: "Delete an ambito and its notes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, a *app) error {
				amb, err := ambitoByName(a, args[0])
				if err != nil {
					return err
				}
				if err := a.sess.DeleteAmbito(amb.ID); err != nil {
					return err
				}
				printStatus(cmd, a)
				return nil
			})
		},
	}
	ambitoCmd.AddCommand(rmCmd)

	moveCmd := &cobra.Command{
		Use:   "move NAME INDEX",
		Short: "Move an ambito to a zero-based position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid index %q: %w", args[1], err)
			}
			return withSession(cmd, func(ctx context.Context, a *app) error {
				amb, err := ambitoByName(a, args[0])
				if err != nil {
					return err
				}
				if err := a.sess.ReorderAmbito(amb.ID, idx); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Ambito %s moved to position %d.\n", amb.Name, idx)
				return nil
			})
		},
	}
	ambitoCmd.AddCommand(moveCmd)

	rootCmd.AddCommand(ambitoCmd)
}
