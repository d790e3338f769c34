package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

func settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect and change runtime settings",
	}

	cmd.AddCommand(settingsListCmd())
	cmd.AddCommand(settingsSetCmd())

	return cmd
}

func settingsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := buildApp(ctx)
			if err != nil {
				return err
			}
			defer app.close()

			values, err := app.settings.All(ctx)
			if err != nil {
				return err
			}
			if len(values) == 0 {
				fmt.Println("no settings stored")
				return nil
			}

			keys := make([]string, 0, len(values))
			for k := range values {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			for _, k := range keys {
				v := values[k]
				if strings.HasSuffix(k, "_api_key") && v != "" {
					v = "(set)"
				}
				fmt.Printf("%-30s %s\n", k, v)
			}
			return nil
		},
	}
}

func settingsSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := buildApp(ctx)
			if err != nil {
				return err
			}
			defer app.close()

			if err := app.settings.Set(ctx, args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("set %s\n", args[0])
			return nil
		},
	}
}
