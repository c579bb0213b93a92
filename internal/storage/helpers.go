package storage

import (
	"database/sql"
	"strconv"
)

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}

func rollbackWithError(rb interface{ Rollback() error }, err *error) {
	if cErr := rb.Rollback(); cErr != nil && cErr != sql.ErrTxDone && *err == nil {
		*err = cErr
	}
}

func toSQLNullType[T float64 | int64, Y float64 | int | int64](f *Y) T {
	if f == nil {
		return 0
	}
	return T(*f)
}

func fromSQLNullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func fromSQLNullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func fromSQLNullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// formatOptionalInt renders an absent value as an empty cell
func formatOptionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatOptionalFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatOptionalString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

// parseOptionalInt accepts integers and integral floats ("-40.0"), which
// spreadsheet round trips tend to produce
func parseOptionalInt(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	if i, err := strconv.Atoi(s); err == nil {
		return &i, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return nil, strconv.ErrSyntax
	}
	i := int(f)
	return &i, nil
}

func parseOptionalFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func parseOptionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
