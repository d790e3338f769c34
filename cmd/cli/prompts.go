package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/versecraft/versecraft/internal/prompts"
)

func promptsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompts",
		Short: "Manage prompt templates",
	}

	cmd.AddCommand(promptShowCmd())
	cmd.AddCommand(promptSaveCmd())
	cmd.AddCommand(promptHistoryCmd())
	cmd.AddCommand(promptRollbackCmd())

	return cmd
}

func promptShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <use-case>",
		Short: "Show the active prompt for a use case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			useCase, err := prompts.ParseUseCase(args[0])
			if err != nil {
				return err
			}

			app, err := buildApp(ctx)
			if err != nil {
				return err
			}
			defer app.close()

			rec, err := app.prompts.ActiveRecord(ctx, useCase)
			if err != nil {
				return err
			}
			if rec == nil {
				fmt.Printf("no custom prompt saved for %s, built-in default in use\n", useCase)
				return nil
			}

			fmt.Printf("use case: %s\nversion:  %d\neditor:   %s\n\n%s\n", rec.UseCase, rec.Version, rec.Editor, rec.Content)
			return nil
		},
	}
}

func promptSaveCmd() *cobra.Command {
	var (
		file            string
		editor          string
		expectedVersion int
	)

	cmd := &cobra.Command{
		Use:   "save <use-case>",
		Short: "Save a new prompt version from a file or stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			useCase, err := prompts.ParseUseCase(args[0])
			if err != nil {
				return err
			}

			var content []byte
			if file != "" {
				content, err = os.ReadFile(file)
			} else {
				content, err = os.ReadFile("/dev/stdin")
			}
			if err != nil {
				return fmt.Errorf("failed to read prompt content: %w", err)
			}

			app, err := buildApp(ctx)
			if err != nil {
				return err
			}
			defer app.close()

			var expected *int
			if cmd.Flags().Changed("expected-version") {
				expected = &expectedVersion
			}

			rec, err := app.prompts.Save(ctx, useCase, string(content), editor, expected)
			if err != nil {
				if prompts.IsConflict(err) {
					return fmt.Errorf("%w\nre-run 'prompts show %s' and retry with the current version", err, useCase)
				}
				return err
			}

			fmt.Printf("saved %s version %d\n", rec.UseCase, rec.Version)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "read prompt content from file (default stdin)")
	cmd.Flags().StringVarP(&editor, "editor", "e", "cli", "editor name recorded in the audit log")
	cmd.Flags().IntVar(&expectedVersion, "expected-version", 0, "fail if the active version differs")

	return cmd
}

func promptHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history <use-case>",
		Short: "List saved versions of a prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			useCase, err := prompts.ParseUseCase(args[0])
			if err != nil {
				return err
			}

			app, err := buildApp(ctx)
			if err != nil {
				return err
			}
			defer app.close()

			snaps, err := app.prompts.History(ctx, useCase, limit)
			if err != nil {
				return err
			}
			if len(snaps) == 0 {
				fmt.Println("no saved versions")
				return nil
			}

			for _, s := range snaps {
				fmt.Printf("v%-4d %s  %s\n", s.Version, s.CreatedAt.Format("2006-01-02 15:04"), s.Editor)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of versions to list")
	return cmd
}

func promptRollbackCmd() *cobra.Command {
	var editor string

	cmd := &cobra.Command{
		Use:   "rollback <use-case> <version>",
		Short: "Restore a previous prompt version",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			useCase, err := prompts.ParseUseCase(args[0])
			if err != nil {
				return err
			}
			var target int
			if _, err := fmt.Sscanf(args[1], "%d", &target); err != nil {
				return fmt.Errorf("invalid version %q", args[1])
			}

			app, err := buildApp(ctx)
			if err != nil {
				return err
			}
			defer app.close()

			rec, err := app.prompts.Rollback(ctx, useCase, target, editor)
			if err != nil {
				return err
			}

			fmt.Printf("rolled back %s to the content of v%d (now v%d)\n", rec.UseCase, target, rec.Version)
			return nil
		},
	}

	cmd.Flags().StringVarP(&editor, "editor", "e", "cli", "editor name recorded in the audit log")
	return cmd
}
