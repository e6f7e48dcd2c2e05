package main

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/vibe-ped/internal/output"
	"github.com/inodb/vibe-ped/internal/pedigree"
	"github.com/inodb/vibe-ped/internal/tsv"
)

func newValidateCmd(a *app) *cobra.Command {
	var variantsPath string

	cmd := &cobra.Command{
		Use:   "validate <people-file>",
		Short: "Validate a pedigree and its variants",
		Long: `Load a people file and optionally a variants file, reporting every
violation found. Loading stops at the first failing stage, so fixing the
reported rows may reveal violations of a later stage.

Exits 2 when the input is invalid.`,
		Example: `  vibe-ped validate family.tsv
  vibe-ped validate family.ped --variants variants.tsv.gz
  cat family.tsv | vibe-ped validate -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, a.logger, args[0], variantsPath)
		},
	}

	cmd.Flags().StringVar(&variantsPath, "variants", "", "Variants file to validate against the people")
	return cmd
}

func runValidate(cmd *cobra.Command, logger *zap.Logger, peoplePath, variantsPath string) error {
	report := output.NewValidationWriter(cmd.OutOrStdout())
	pd := pedigree.New()
	pd.SetLogger(logger)

	// check reports violations and passes other errors through.
	check := func(stage string, err error) error {
		if err == nil {
			return nil
		}
		var pe *pedigree.Error
		var parseErr *tsv.ParseError
		if !errors.As(err, &pe) && !errors.As(err, &parseErr) {
			return err
		}
		if report.Violations() == 0 {
			if werr := report.WriteHeader(); werr != nil {
				return werr
			}
		}
		if werr := report.WriteErrors(stage, err); werr != nil {
			return werr
		}
		return errInvalidInput
	}

	err := func() error {
		people, err := readPeople(peoplePath)
		if err := check("people", err); err != nil {
			return err
		}
		if err := check("people", pd.LoadPeople(people)); err != nil {
			return err
		}
		if variantsPath == "" {
			return nil
		}
		variants, err := readVariants(variantsPath)
		if err := check("variants", err); err != nil {
			return err
		}
		return check("variants", pd.LoadVariants(variants))
	}()

	if ferr := report.Flush(); ferr != nil {
		return ferr
	}
	if err != nil && !errors.Is(err, errInvalidInput) {
		return err
	}

	report.WriteSummary(cmd.ErrOrStderr(), pd.Len(), len(pd.Variants()))
	if err == nil {
		logger.Info("pedigree is valid", zap.String("people", peoplePath))
	}
	return err
}
