package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	userFlag string
	rootCmd  = &cobra.Command{
		Use:           "lize",
		Short:         "Organise notes into ambitos and folders",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&userFlag, "user", "u", "", "User ID (overrides LIZE_USER_ID)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
