package main

import (
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-ped/internal/pedigree"
	"github.com/inodb/vibe-ped/internal/tsv"
)

// peopleOptions returns the reader options for a people file from config.
func peopleOptions() tsv.Options {
	return tsv.Options{
		Columns: pedigree.PeopleColumns,
		Header:  viper.GetBool("people.header"),
		Missing: viper.GetStringSlice("people.missing"),
	}
}

// variantOptions returns the reader options for a variants file from config.
func variantOptions() tsv.Options {
	return tsv.Options{
		Columns: pedigree.VariantColumns,
		Header:  viper.GetBool("variants.header"),
		Missing: viper.GetStringSlice("variants.missing"),
	}
}

// readPeople reads person records from path.
func readPeople(path string) ([]pedigree.PersonRecord, error) {
	r, err := tsv.NewReader(path, peopleOptions())
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return pedigree.ReadPeople(r)
}

// readVariants reads variant records from path.
func readVariants(path string) ([]pedigree.VariantRecord, error) {
	r, err := tsv.NewReader(path, variantOptions())
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return pedigree.ReadVariants(r)
}

// loadPedigree reads and loads a people file and, if variantsPath is not
// empty, a variants file.
func loadPedigree(logger *zap.Logger, peoplePath, variantsPath string) (*pedigree.Pedigree, error) {
	pd := pedigree.New()
	pd.SetLogger(logger)

	people, err := readPeople(peoplePath)
	if err != nil {
		return nil, err
	}
	if err := pd.LoadPeople(people); err != nil {
		return nil, fmt.Errorf("load people from %s: %w", peoplePath, err)
	}

	if variantsPath == "" {
		return pd, nil
	}
	variants, err := readVariants(variantsPath)
	if err != nil {
		return nil, err
	}
	if err := pd.LoadVariants(variants); err != nil {
		return nil, fmt.Errorf("load variants from %s: %w", variantsPath, err)
	}
	return pd, nil
}

// lookupPerson returns the named person or a pedigree error naming them.
func lookupPerson(pd *pedigree.Pedigree, name string) (*pedigree.Person, error) {
	p, ok := pd.Person(name)
	if !ok {
		return nil, &pedigree.Error{Kind: pedigree.ErrUnknownPerson, Subject: name, Detail: "not in the people file"}
	}
	return p, nil
}
