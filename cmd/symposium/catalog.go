package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"symposium/config"
	"symposium/internal/adapters/catalogsource"
	"symposium/internal/catalog"
	"symposium/internal/services"
)

const catalogFetchTimeout = 10 * time.Second

// loadCatalog picks the catalog source: CATALOG_FILE, then CATALOG_URL, then the embedded default.
func loadCatalog(ctx context.Context, cfg *config.Config) (*catalog.Catalog, string, error) {
	switch {
	case cfg.CatalogFile != "":
		c, err := catalog.LoadFile(cfg.CatalogFile)
		return c, cfg.CatalogFile, err
	case cfg.CatalogURL != "":
		ctx, cancel := context.WithTimeout(ctx, catalogFetchTimeout)
		defer cancel()
		fetcher := catalogsource.NewHTTPFetcher(&http.Client{Timeout: catalogFetchTimeout})
		c, err := fetcher.Fetch(ctx, cfg.CatalogURL)
		return c, cfg.CatalogURL, err
	default:
		c, err := catalog.Default()
		return c, "embedded", err
	}
}

func newCatalogCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Validate and print the event catalog",
		Long: `Loads the catalog the server would use (or --file) and prints it.
Exits non-zero when the catalog is invalid, so it can gate deploys.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if file != "" {
				cfg.CatalogFile, cfg.CatalogURL = file, ""
			}
			c, source, err := loadCatalog(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("load catalog from %s: %w", source, err)
			}
			return printCatalog(cmd.OutOrStdout(), c, source)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "catalog YAML file to check instead of the configured source")
	return cmd
}

func printCatalog(w io.Writer, c *catalog.Catalog, source string) error {
	fmt.Fprintf(w, "catalog: %s (%d events)\n\n", source, c.Len())
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tDAY\tPRICE")
	for _, e := range c.Events() {
		day := "-"
		if e.Day > 0 {
			day = fmt.Sprint(e.Day)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.ID, e.Name, e.Category, day, services.FormatAmount(e.Price))
	}
	return tw.Flush()
}
