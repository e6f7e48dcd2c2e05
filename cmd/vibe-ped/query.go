package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/inodb/vibe-ped/internal/output"
	"github.com/inodb/vibe-ped/internal/pedigree"
)

// depthFlags holds the generation range flags shared by ancestors and descendants.
type depthFlags struct {
	min int
	max int
	all bool
}

func (f *depthFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.min, "min", 1, "Nearest generation to include (0 is the person)")
	cmd.Flags().IntVar(&f.max, "max", 0, "Farthest generation to include (default: --min)")
	cmd.Flags().BoolVar(&f.all, "all", false, "Include every generation from --min on")
}

// depthRange converts the flags to a DepthRange. Without --max or --all
// the range collapses to the single generation --min.
func (f *depthFlags) depthRange(cmd *cobra.Command) (pedigree.DepthRange, error) {
	switch {
	case f.all && cmd.Flags().Changed("max"):
		return pedigree.DepthRange{}, fmt.Errorf("--all and --max are mutually exclusive")
	case f.all:
		return pedigree.AtLeast(f.min), nil
	case cmd.Flags().Changed("max"):
		return pedigree.Between(f.min, f.max), nil
	default:
		return pedigree.Exactly(f.min), nil
	}
}

func newAncestorsCmd(a *app) *cobra.Command {
	var depth depthFlags
	cmd := &cobra.Command{
		Use:   "ancestors <people-file> <name>",
		Short: "List a person's ancestors",
		Example: `  vibe-ped ancestors family.tsv proband            # parents
  vibe-ped ancestors family.tsv proband --min 2    # grandparents
  vibe-ped ancestors family.tsv proband --all      # every ancestor`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLineage(cmd, a, args, &depth, (*pedigree.Person).Ancestors)
		},
	}
	depth.register(cmd)
	return cmd
}

func newDescendantsCmd(a *app) *cobra.Command {
	var depth depthFlags
	cmd := &cobra.Command{
		Use:   "descendants <people-file> <name>",
		Short: "List a person's descendants",
		Example: `  vibe-ped descendants family.tsv founder            # children
  vibe-ped descendants family.tsv founder --min 2    # grandchildren
  vibe-ped descendants family.tsv founder --all      # every descendant`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLineage(cmd, a, args, &depth, (*pedigree.Person).Descendants)
		},
	}
	depth.register(cmd)
	return cmd
}

func runLineage(cmd *cobra.Command, a *app, args []string, depth *depthFlags,
	walk func(*pedigree.Person, pedigree.DepthRange) (pedigree.People, error)) error {
	r, err := depth.depthRange(cmd)
	if err != nil {
		return err
	}

	pd, err := loadPedigree(a.logger, args[0], "")
	if err != nil {
		return err
	}
	p, err := lookupPerson(pd, args[1])
	if err != nil {
		return err
	}
	people, err := walk(p, r)
	if err != nil {
		return err
	}

	w := output.NewPeopleWriter(cmd.OutOrStdout())
	if err := w.WriteHeader(); err != nil {
		return err
	}
	if err := w.WriteAll(people); err != nil {
		return err
	}
	return w.Flush()
}

func newRelativesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "relatives <people-file> <name>",
		Short: "List a person's close relatives by relation",
		Long: `List parents, grandparents, full and half siblings, sons, daughters and
grandchildren. Empty relations are omitted.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pd, err := loadPedigree(a.logger, args[0], "")
			if err != nil {
				return err
			}
			p, err := lookupPerson(pd, args[1])
			if err != nil {
				return err
			}
			return writeRelatives(cmd, p)
		},
	}
}

func writeRelatives(cmd *cobra.Command, p *pedigree.Person) error {
	gp := p.GrandparentsStructured()
	groups := []struct {
		relation string
		people   pedigree.People
	}{
		{"mother", single(p.Mother())},
		{"father", single(p.Father())},
		{"maternal_grandmother", single(gp[0])},
		{"maternal_grandfather", single(gp[1])},
		{"paternal_grandmother", single(gp[2])},
		{"paternal_grandfather", single(gp[3])},
		{"sibling", p.Siblings()},
		{"half_sibling", p.HalfSiblings()},
		{"son", p.Sons()},
		{"daughter", p.Daughters()},
		{"child", unknownGender(p.Children())},
		{"grandchild", p.Grandchildren()},
	}

	w := output.NewRelativesWriter(cmd.OutOrStdout())
	if err := w.WriteHeader(); err != nil {
		return err
	}
	for _, g := range groups {
		if err := w.Write(g.relation, g.people); err != nil {
			return err
		}
	}
	return w.Flush()
}

func single(p *pedigree.Person) pedigree.People {
	if p == nil {
		return nil
	}
	return pedigree.People{p}
}

// unknownGender keeps the children that are neither sons nor daughters.
func unknownGender(ps pedigree.People) pedigree.People {
	var out pedigree.People
	for _, p := range ps {
		if p.Gender() == pedigree.Unknown {
			out = append(out, p)
		}
	}
	return out
}

func newVariantsCmd(a *app) *cobra.Command {
	var (
		variantsPath string
		person       string
		locus        string
	)
	cmd := &cobra.Command{
		Use:   "variants <people-file>",
		Short: "List variants by carrier or position",
		Example: `  vibe-ped variants family.tsv --variants variants.tsv
  vibe-ped variants family.tsv --variants variants.tsv --person proband
  vibe-ped variants family.tsv --variants variants.tsv --at chr12:25245350`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pd, err := loadPedigree(a.logger, args[0], variantsPath)
			if err != nil {
				return err
			}

			var variants []*pedigree.Variant
			switch {
			case person != "" && locus != "":
				p, err := lookupPerson(pd, person)
				if err != nil {
					return err
				}
				chrom, pos, err := parseLocus(locus)
				if err != nil {
					return err
				}
				if v, ok := p.Variant(chrom, pos); ok {
					variants = append(variants, v)
				}
			case person != "":
				p, err := lookupPerson(pd, person)
				if err != nil {
					return err
				}
				variants = p.Variants()
			case locus != "":
				chrom, pos, err := parseLocus(locus)
				if err != nil {
					return err
				}
				variants = pd.VariantsAt(chrom, pos)
			default:
				variants = pd.Variants()
			}

			w := output.NewVariantWriter(cmd.OutOrStdout())
			if err := w.WriteHeader(); err != nil {
				return err
			}
			for _, v := range variants {
				if err := w.Write(v); err != nil {
					return err
				}
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&variantsPath, "variants", "", "Variants file (required)")
	cmd.Flags().StringVar(&person, "person", "", "Only variants carried by this person")
	cmd.Flags().StringVar(&locus, "at", "", "Only variants at chrom:pos (0-based)")
	_ = cmd.MarkFlagRequired("variants")
	return cmd
}

// parseLocus parses "chrom:pos".
func parseLocus(s string) (string, int64, error) {
	chrom, raw, ok := strings.Cut(s, ":")
	if !ok || chrom == "" {
		return "", 0, fmt.Errorf("invalid locus %q: want chrom:pos", s)
	}
	pos, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid locus %q: %w", s, err)
	}
	return chrom, pos, nil
}
