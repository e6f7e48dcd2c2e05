package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inodb/vibe-ped/internal/duckdb"
	"github.com/inodb/vibe-ped/internal/output"
	"github.com/inodb/vibe-ped/internal/pedigree"
)

func newDBCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "db",
		Short: "Query an exported DuckDB database",
		Long: `Answer people and variant queries from a database written by export,
without reading the input files again.`,
		Example: `  vibe-ped db people --gender female
  vibe-ped db variants --person proband
  vibe-ped db variants --at chr12:25245350 --db ./family.duckdb`,
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "DuckDB database path (default from config db.path)")

	cmd.AddCommand(newDBPeopleCmd(&dbPath))
	cmd.AddCommand(newDBVariantsCmd(&dbPath))
	return cmd
}

// openExported opens an existing database. Unlike duckdb.Open it does not
// create one.
func openExported(dbPath string) (*duckdb.Store, error) {
	if dbPath == "" {
		dbPath = viper.GetString("db.path")
	}
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("no database at %s (run export first): %w", dbPath, err)
	}
	return duckdb.Open(dbPath)
}

func newDBPeopleCmd(dbPath *string) *cobra.Command {
	var gender string

	cmd := &cobra.Command{
		Use:   "people",
		Short: "List stored people of one gender",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := pedigree.ResolveGender(gender)
			if err != nil {
				return err
			}

			store, err := openExported(*dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			rows, err := store.PeopleByGender(g)
			if err != nil {
				return err
			}

			w := output.NewPeopleWriter(cmd.OutOrStdout())
			if err := w.WriteHeader(); err != nil {
				return err
			}
			for _, p := range rows {
				if err := w.WriteFields(p.Name, p.Gender, p.Father, p.Mother); err != nil {
					return err
				}
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&gender, "gender", "", "Gender to list (any accepted synonym, e.g. f, male, 0)")
	_ = cmd.MarkFlagRequired("gender")
	return cmd
}

func newDBVariantsCmd(dbPath *string) *cobra.Command {
	var person, locus string

	cmd := &cobra.Command{
		Use:   "variants",
		Short: "List stored variants by carrier or position",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if person == "" && locus == "" {
				return fmt.Errorf("one of --person or --at is required")
			}

			store, err := openExported(*dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			var rows []duckdb.VariantRow
			if locus != "" {
				chrom, pos, err := parseLocus(locus)
				if err != nil {
					return err
				}
				if rows, err = store.CarriersAt(chrom, pos); err != nil {
					return err
				}
				if person != "" {
					rows = carriedBy(rows, person)
				}
			} else if rows, err = store.VariantsOf(person); err != nil {
				return err
			}

			w := output.NewVariantWriter(cmd.OutOrStdout())
			if err := w.WriteHeader(); err != nil {
				return err
			}
			for _, v := range rows {
				if err := w.WriteFields(v.Chrom, v.Pos, v.Ref, v.Alt, v.Person); err != nil {
					return err
				}
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&person, "person", "", "Only variants carried by this person")
	cmd.Flags().StringVar(&locus, "at", "", "Only variants at chrom:pos (0-based)")
	return cmd
}

func carriedBy(rows []duckdb.VariantRow, person string) []duckdb.VariantRow {
	var out []duckdb.VariantRow
	for _, v := range rows {
		if v.Person == person {
			out = append(out, v)
		}
	}
	return out
}
