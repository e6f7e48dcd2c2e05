package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/vibe-ped/internal/genome"
	"github.com/inodb/vibe-ped/internal/pedigree"
)

// PersonRow is one row of the people table. Unknown parents are empty.
type PersonRow struct {
	Name   string
	Gender string
	Mother string
	Father string
}

// VariantRow is one row of the variants table. Ref is empty when unknown.
type VariantRow struct {
	Person string
	Chrom  string
	Pos    int64
	Ref    string
	Alt    string
}

// WritePedigree replaces the stored pedigree with pd using the Appender API.
func (s *Store) WritePedigree(pd *pedigree.Pedigree) error {
	if err := s.ClearPedigree(); err != nil {
		return err
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	people := pd.People()
	if err := appendRows(conn, "people", len(people), func(i int) []driver.Value {
		p := people[i]
		return []driver.Value{p.Name(), string(p.Gender()), nameOrNull(p.Mother()), nameOrNull(p.Father())}
	}); err != nil {
		return fmt.Errorf("append person: %w", err)
	}

	variants := pd.Variants()
	if err := appendRows(conn, "variants", len(variants), func(i int) []driver.Value {
		v := variants[i]
		var ref driver.Value
		if v.HasRef() {
			ref = v.Ref()
		}
		return []driver.Value{v.Person().Name(), v.Chrom(), v.Pos(), ref, v.Alt()}
	}); err != nil {
		return fmt.Errorf("append variant: %w", err)
	}
	return nil
}

// appendRows appends n rows to table through a single appender.
func appendRows(conn *sql.Conn, table string, n int, row func(int) []driver.Value) error {
	if n == 0 {
		return nil
	}

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", table)
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for i := 0; i < n; i++ {
		if err := appender.AppendRow(row(i)...); err != nil {
			return err
		}
	}
	return appender.Flush()
}

func nameOrNull(p *pedigree.Person) driver.Value {
	if p == nil {
		return nil
	}
	return p.Name()
}

// ClearPedigree removes all stored people and variants.
func (s *Store) ClearPedigree() error {
	for _, table := range []string{"variants", "people"} {
		if _, err := s.db.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// Counts returns the number of stored people and variants.
func (s *Store) Counts() (people, variants int, err error) {
	err = s.db.QueryRow(`SELECT
		(SELECT count(*) FROM people),
		(SELECT count(*) FROM variants)`).Scan(&people, &variants)
	if err != nil {
		return 0, 0, fmt.Errorf("count rows: %w", err)
	}
	return people, variants, nil
}

// PeopleByGender returns the stored people of gender g, ordered by name.
func (s *Store) PeopleByGender(g pedigree.Gender) ([]PersonRow, error) {
	rows, err := s.db.Query(`SELECT name, gender, mother, father
		FROM people WHERE gender=? ORDER BY name`, string(g))
	if err != nil {
		return nil, fmt.Errorf("query people: %w", err)
	}
	defer rows.Close()

	var people []PersonRow
	for rows.Next() {
		var p PersonRow
		var mother, father sql.NullString
		if err := rows.Scan(&p.Name, &p.Gender, &mother, &father); err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		p.Mother, p.Father = mother.String, father.String
		people = append(people, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate people: %w", err)
	}
	return people, nil
}

// VariantsOf returns the variants stored for person, ordered by chrom and pos.
func (s *Store) VariantsOf(person string) ([]VariantRow, error) {
	rows, err := s.db.Query(`SELECT person, chrom, pos, ref, alt
		FROM variants WHERE person=? ORDER BY chrom, pos`, person)
	if err != nil {
		return nil, fmt.Errorf("query variants of %s: %w", person, err)
	}
	defer rows.Close()

	return scanVariantRows(rows)
}

// CarriersAt returns the variants stored at chrom:pos, ordered by person.
func (s *Store) CarriersAt(chrom string, pos int64) ([]VariantRow, error) {
	rows, err := s.db.Query(`SELECT person, chrom, pos, ref, alt
		FROM variants WHERE chrom=? AND pos=? ORDER BY person`,
		genome.Canonical(chrom), pos)
	if err != nil {
		return nil, fmt.Errorf("query carriers: %w", err)
	}
	defer rows.Close()

	return scanVariantRows(rows)
}

// scanVariantRows scans rows into VariantRow slices.
func scanVariantRows(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]VariantRow, error) {
	var out []VariantRow
	for rows.Next() {
		var v VariantRow
		var ref sql.NullString
		if err := rows.Scan(&v.Person, &v.Chrom, &v.Pos, &ref, &v.Alt); err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		v.Ref = ref.String
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate variants: %w", err)
	}
	return out, nil
}
