package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/castkeep/castkeep/internal/resolver"
	"github.com/castkeep/castkeep/internal/service"
)

func init() {
	addCmd := &cobra.Command{
		Use:   "add <url>...",
		Short: "Add media to the library",
		Long: `Adds one or more media pages to the library.

With a resolver configured, metadata and tracks are fetched for each
URL. Without one, --title is required and the record is created bare.
URLs already in the library are skipped.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAdd,
	}

	addCmd.Flags().String("title", "", "Title (required without a resolver)")
	addCmd.Flags().String("description", "", "Description")
	addCmd.Flags().String("genre", "", "Genre")
	addCmd.Flags().String("subgenre", "", "Sub-genre")
	addCmd.Flags().String("thumbnail", "", "Thumbnail URL")
	addCmd.Flags().String("mime", "", "MIME type")
	addCmd.Flags().String("resolver", "", "Resolver endpoint (overrides config)")

	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.closeEnv()

	resolverURL, _ := cmd.Flags().GetString("resolver")
	if resolverURL == "" {
		resolverURL = e.cfg.Resolver.URL
	}

	if resolverURL == "" {
		return addManual(cmd, e, args)
	}
	return addResolved(cmd, e, resolver.NewClient(resolverURL), args)
}

// addManual creates records from flags alone, one per URL.
func addManual(cmd *cobra.Command, e *env, urls []string) error {
	title, _ := cmd.Flags().GetString("title")
	if title == "" {
		return fmt.Errorf("--title is required when no resolver is configured")
	}
	description, _ := cmd.Flags().GetString("description")
	genre, _ := cmd.Flags().GetString("genre")
	subGenre, _ := cmd.Flags().GetString("subgenre")
	thumbnail, _ := cmd.Flags().GetString("thumbnail")
	mime, _ := cmd.Flags().GetString("mime")

	for _, u := range urls {
		rec, err := e.svc.Save(cmd.Context(), service.SaveParams{
			PageURL:      u,
			Title:        title,
			Description:  description,
			Genre:        genre,
			SubGenre:     subGenre,
			ThumbnailURL: thumbnail,
			MimeType:     mime,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Added: %s [ID: %d]\n", rec.Title, rec.ID)
	}
	return nil
}

// addResolved imports each URL through the resolver. Resolution runs
// concurrently; the service serializes the writes.
func addResolved(cmd *cobra.Command, e *env, r resolver.Resolver, urls []string) error {
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(4)

	results := make([]string, len(urls))
	for i, u := range urls {
		g.Go(func() error {
			rec, err := e.svc.ImportFromURL(ctx, r, u)
			if err != nil {
				return err
			}
			results[i] = fmt.Sprintf("Added: %s [ID: %d, tracks: %d]", rec.Title, rec.ID, len(rec.Tracks))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, line := range results {
		fmt.Println(line)
	}
	return nil
}
