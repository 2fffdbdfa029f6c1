// Package sqlerr turns PostgreSQL integrity errors into a single
// constraint-violation error kind that callers can inspect without
// depending on the driver.
package sqlerr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Code classifies a constraint violation.
type Code string

const (
	UniqueViolation     Code = "unique_violation"
	ForeignKeyViolation Code = "foreign_key_violation"
	NotNullViolation    Code = "not_null_violation"
	CheckViolation      Code = "check_violation"
	ExclusionViolation  Code = "exclusion_violation"
	Other               Code = "other"
)

// MapCode maps a SQLSTATE to a Code.
func MapCode(sqlstate string) Code {
	switch sqlstate {
	case "23505":
		return UniqueViolation
	case "23503":
		return ForeignKeyViolation
	case "23502":
		return NotNullViolation
	case "23514":
		return CheckViolation
	case "23P01":
		return ExclusionViolation
	}
	return Other
}

// ConstraintError is raised by the database when a write breaks the schema:
// a duplicate unique key, a missing or still-referenced foreign key, or an
// omitted NOT NULL column.
type ConstraintError struct {
	Code       Code
	SQLState   string
	Table      string
	Column     string
	Constraint string
	Message    string

	driverErr *pgconn.PgError
}

func (e *ConstraintError) Error() string {
	if e.Constraint != "" {
		return fmt.Sprintf("%s on %s (%s): %s", e.Code, e.Table, e.Constraint, e.Message)
	}
	return fmt.Sprintf("%s on %s: %s", e.Code, e.Table, e.Message)
}

func (e *ConstraintError) Unwrap() error {
	if e.driverErr == nil {
		return nil
	}
	return e.driverErr
}

// Convert returns a *ConstraintError when err carries an integrity-constraint
// PgError (SQLSTATE class 23). Any other error is returned unchanged.
func Convert(err error) error {
	if err == nil {
		return nil
	}
	var ce *ConstraintError
	if errors.As(err, &ce) {
		return err
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || !strings.HasPrefix(pgErr.Code, "23") {
		return err
	}
	return &ConstraintError{
		Code:       MapCode(pgErr.Code),
		SQLState:   pgErr.Code,
		Table:      pgErr.TableName,
		Column:     pgErr.ColumnName,
		Constraint: pgErr.ConstraintName,
		Message:    pgErr.Message,
		driverErr:  pgErr,
	}
}

// IsConstraintViolation reports whether err's chain holds a *ConstraintError.
func IsConstraintViolation(err error) bool {
	var ce *ConstraintError
	return errors.As(err, &ce)
}

// CodeOf returns the Code of the first *ConstraintError in err's chain, or Other.
func CodeOf(err error) Code {
	var ce *ConstraintError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return Other
}

// UserMessage renders the violation for people, e.g.
// "A Channel with this Name already exists".
func (e *ConstraintError) UserMessage() string {
	entity := entityName(e.Table, e.Column)
	switch e.Code {
	case ForeignKeyViolation:
		// Deleting a parent row reports the parent table with the child's constraint.
		if e.Constraint != "" && !strings.HasPrefix(e.Constraint, e.Table+"_") {
			return fmt.Sprintf("The %s is still referenced by other records", entity)
		}
		col := e.Column
		if col == "" {
			col = strings.TrimSuffix(strings.TrimPrefix(e.Constraint, e.Table+"_"), "_fkey")
		}
		return fmt.Sprintf("The referenced %s does not exist", entityName(e.Table, col))
	case UniqueViolation:
		field := "identifier"
		if col := uniqueColumn(e.Constraint); col != "" {
			field = humanize(col)
		}
		return fmt.Sprintf("A %s with this %s already exists", entity, field)
	case NotNullViolation:
		field := humanize(e.Column)
		if field == "" {
			field = "field"
		}
		return fmt.Sprintf("The %s is required", field)
	case CheckViolation, ExclusionViolation:
		return "One or more values do not meet required conditions"
	}
	return "The record violates a database constraint"
}

func entityName(table, column string) string {
	if c := strings.ToLower(column); strings.HasSuffix(c, "_id") {
		return humanize(strings.TrimSuffix(c, "_id"))
	}
	if table != "" {
		return humanize(strings.TrimSuffix(table, "s"))
	}
	return "record"
}

// uniqueColumn extracts the column from a Postgres default constraint name
// such as channels_name_key.
func uniqueColumn(constraint string) string {
	name, ok := strings.CutSuffix(constraint, "_key")
	if !ok {
		return ""
	}
	i := strings.Index(name, "_")
	if i < 0 || i == len(name)-1 {
		return ""
	}
	return name[i+1:]
}

func humanize(s string) string {
	if s == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(s, "_", " "))
}
