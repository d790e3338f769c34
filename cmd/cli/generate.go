package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/versecraft/versecraft/internal/generation"
	"github.com/versecraft/versecraft/internal/provider"
)

func generateCmd() *cobra.Command {
	var (
		category     string
		contentType  string
		theme        string
		tone         string
		quantity     int
		writingMode  string
		providerName string
		asJSON       bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a batch of content items",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := buildApp(ctx)
			if err != nil {
				return err
			}
			defer app.close()

			forced, _ := provider.Parse(providerName)

			items, err := app.generator.Generate(ctx, generation.Params{
				Category:    category,
				ContentType: generation.ContentType(contentType),
				Theme:       theme,
				Tone:        tone,
				Quantity:    quantity,
				WritingMode: generation.WritingMode(writingMode),
				Provider:    forced,
			})
			if err != nil {
				return fmt.Errorf("generation failed: %w", err)
			}

			if asJSON {
				return json.NewEncoder(os.Stdout).Encode(items)
			}
			for i, item := range items {
				fmt.Printf("%d. %s\n   — %s\n", i+1, item.Content, item.Author)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "content category (love, life, nature, wisdom, ...)")
	cmd.Flags().StringVarP(&contentType, "type", "t", "quote", "content type (quote, poem, reflection)")
	cmd.Flags().StringVar(&theme, "theme", "", "optional theme hint")
	cmd.Flags().StringVar(&tone, "tone", "", "optional tone hint")
	cmd.Flags().IntVarP(&quantity, "quantity", "n", 3, "number of items to generate")
	cmd.Flags().StringVarP(&writingMode, "mode", "m", "originalAI", "writing mode (originalAI, knownWriters)")
	cmd.Flags().StringVarP(&providerName, "provider", "p", "", "force a specific provider")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON")
	cmd.MarkFlagRequired("category")

	return cmd
}
