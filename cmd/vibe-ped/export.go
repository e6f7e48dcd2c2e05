package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-ped/internal/duckdb"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		variantsPath string
		dbPath       string
		force        bool
	)

	cmd := &cobra.Command{
		Use:   "export <people-file>",
		Short: "Export a validated pedigree to DuckDB",
		Long: `Load and validate a pedigree, then replace the contents of a DuckDB
database with its people and variants tables. The export is skipped when
the database was last written from the same, unchanged input files.`,
		Example: `  vibe-ped export family.tsv --variants variants.tsv
  vibe-ped export family.tsv --db ./family.duckdb --force
  duckdb ~/.vibe-ped/pedigree.duckdb "SELECT * FROM variants WHERE chrom='chr12'"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				dbPath = viper.GetString("db.path")
			}
			return runExport(cmd, a.logger, args[0], variantsPath, dbPath, force)
		},
	}

	cmd.Flags().StringVar(&variantsPath, "variants", "", "Variants file to export with the people")
	cmd.Flags().StringVar(&dbPath, "db", "", "DuckDB database path (default from config db.path)")
	cmd.Flags().BoolVar(&force, "force", false, "Export even if the database is up to date")
	return cmd
}

func runExport(cmd *cobra.Command, logger *zap.Logger, peoplePath, variantsPath, dbPath string, force bool) error {
	// Stdin has no fingerprint, so it is always exported.
	sources, tracked := fingerprintSources(peoplePath, variantsPath)

	store, err := duckdb.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if tracked && !force {
		current, err := store.Current(sources)
		if err != nil {
			return err
		}
		if current {
			logger.Info("export is up to date", zap.String("db", dbPath))
			fmt.Fprintf(cmd.OutOrStdout(), "%s is up to date\n", dbPath)
			return nil
		}
	}

	pd, err := loadPedigree(logger, peoplePath, variantsPath)
	if err != nil {
		return err
	}

	if err := store.ClearSources(); err != nil {
		return fmt.Errorf("clear sources: %w", err)
	}
	if err := store.WritePedigree(pd); err != nil {
		return fmt.Errorf("write pedigree: %w", err)
	}
	if tracked {
		for kind, fp := range sources {
			if err := store.RecordSource(kind, fp); err != nil {
				return err
			}
		}
	}

	people, variants, err := store.Counts()
	if err != nil {
		return err
	}
	logger.Info("exported pedigree",
		zap.String("db", dbPath),
		zap.Int("people", people),
		zap.Int("variants", variants))
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d people and %d variants to %s\n", people, variants, dbPath)
	return nil
}

// fingerprintSources stats the input files. The second result is false if
// any input cannot be fingerprinted.
func fingerprintSources(peoplePath, variantsPath string) (map[string]duckdb.FileFingerprint, bool) {
	paths := map[string]string{duckdb.SourcePeople: peoplePath}
	if variantsPath != "" {
		paths[duckdb.SourceVariants] = variantsPath
	}

	sources := make(map[string]duckdb.FileFingerprint, len(paths))
	for kind, path := range paths {
		if path == "-" {
			return nil, false
		}
		fp, err := duckdb.StatFile(path)
		if err != nil {
			return nil, false
		}
		sources[kind] = fp
	}
	return sources, true
}
