// Package pedigree models a kinship network of people connected by
// mother/father relationships, each optionally carrying SNV variants.
package pedigree

import (
	"fmt"
	"strings"
)

// Gender is a reference gender value.
type Gender string

const (
	Male    Gender = "male"
	Female  Gender = "female"
	Unknown Gender = "unknown"
)

// genderSynonyms maps each reference value to its accepted lowercase tokens.
// '1' and '2' follow the PED file sex coding; '0' and '-9' are PED missing values.
var genderSynonyms = []struct {
	gender   Gender
	synonyms []string
}{
	{Male, []string{"male", "m", "1"}},
	{Female, []string{"female", "f", "2"}},
	{Unknown, []string{"unknown", "na", "not specified", "-9", "0"}},
}

// ResolveGender converts a free-form token into a reference Gender.
// Matching is case-insensitive and ignores surrounding whitespace.
func ResolveGender(token string) (Gender, error) {
	t := strings.ToLower(strings.TrimSpace(token))
	for _, gs := range genderSynonyms {
		for _, s := range gs.synonyms {
			if t == s {
				return gs.gender, nil
			}
		}
	}
	return "", newError(ErrInvalidGender, token, "accepted values: %s", GenderMappings())
}

// GenderMappings describes the accepted tokens for each reference gender.
func GenderMappings() string {
	parts := make([]string, 0, len(genderSynonyms))
	for _, gs := range genderSynonyms {
		parts = append(parts, fmt.Sprintf("%s <- {%s}", gs.gender, strings.Join(gs.synonyms, ", ")))
	}
	return strings.Join(parts, "; ")
}
