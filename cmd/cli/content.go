package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/versecraft/versecraft/internal/generation"
	"github.com/versecraft/versecraft/internal/provider"
)

func sourceCmd() *cobra.Command {
	var providerName string

	cmd := &cobra.Command{
		Use:   "source <content>",
		Short: "Look up the likely author of a piece of content",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := buildApp(ctx)
			if err != nil {
				return err
			}
			defer app.close()

			forced, _ := provider.Parse(providerName)
			res, err := app.generator.FindSource(ctx, strings.Join(args, " "), forced)
			if err != nil {
				return fmt.Errorf("source lookup failed: %w", err)
			}

			fmt.Printf("Author: %s\n", res.Author)
			if res.Source != "" {
				fmt.Printf("Source: %s\n", res.Source)
			}
			if res.Confidence != "" {
				fmt.Printf("Confidence: %s\n", res.Confidence)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&providerName, "provider", "p", "", "force a specific provider")
	return cmd
}

func explainCmd() *cobra.Command {
	return analysisCommand("explain", "Explain the meaning of a piece of content",
		func(app *app) analysisFunc { return app.generator.Explain })
}

func analyzeCmd() *cobra.Command {
	return analysisCommand("analyze", "Analyze the literary structure of a piece of content",
		func(app *app) analysisFunc { return app.generator.Analyze })
}

type analysisFunc = func(ctx context.Context, content string, forced provider.Provider) (*generation.Analysis, error)

func analysisCommand(use, short string, pick func(*app) analysisFunc) *cobra.Command {
	var (
		providerName string
		asJSON       bool
	)

	cmd := &cobra.Command{
		Use:   use + " <content>",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := buildApp(ctx)
			if err != nil {
				return err
			}
			defer app.close()

			forced, _ := provider.Parse(providerName)
			analysis, err := pick(app)(ctx, strings.Join(args, " "), forced)
			if err != nil {
				return fmt.Errorf("%s failed: %w", use, err)
			}

			if asJSON {
				return json.NewEncoder(os.Stdout).Encode(analysis)
			}
			printAnalysis(analysis)
			return nil
		},
	}

	cmd.Flags().StringVarP(&providerName, "provider", "p", "", "force a specific provider")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON")
	return cmd
}

func printAnalysis(a *generation.Analysis) {
	if a.Summary != "" {
		fmt.Println(a.Summary)
		fmt.Println()
	}
	printList("Themes", a.Themes)
	printList("Literary devices", a.LiteraryDevices)
	printList("Metaphors", a.Metaphors)
	printList("Imagery", a.Imagery)
	if a.Tone != "" {
		fmt.Printf("Tone: %s\n", a.Tone)
	}
	if a.Style != "" {
		fmt.Printf("Style: %s\n", a.Style)
	}
}

func printList(label string, values []string) {
	if len(values) == 0 {
		return
	}
	fmt.Printf("%s: %s\n", label, strings.Join(values, ", "))
}
