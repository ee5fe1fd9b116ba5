package repository

import (
	"database/sql"
	"strings"
)

// Sortable columns for listings.  Client-supplied sort keys are looked up in
// these fixed tables and never interpolated; a key that is not present
// resolves to the listing's default column.
var (
	storeSortColumns = map[string]string{
		"name":           "s.name",
		"address":        "s.address",
		"owner_email":    "u.email",
		"overall_rating": "overall_rating",
	}
	userSortColumns = map[string]string{
		"name":         "u.name",
		"email":        "u.email",
		"address":      "u.address",
		"role":         "CAST(u.role AS CHAR)", // ENUM columns otherwise sort by ordinal
		"store_rating": "store_rating",
	}
)

const (
	defaultStoreSort = "s.name"
	defaultUserSort  = "u.name"
)

func sortColumn(columns map[string]string, key, def string) string {
	if col, ok := columns[strings.TrimSpace(key)]; ok {
		return col
	}
	return def
}

// sortDirection maps "desc" (any case) to DESC and everything else to ASC.
func sortDirection(order string) string {
	if strings.EqualFold(strings.TrimSpace(order), "desc") {
		return "DESC"
	}
	return "ASC"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a lower-cased LIKE pattern matching s anywhere.
// Wildcards typed by the client are matched literally.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

// filter accumulates WHERE conditions and their positional arguments.
type filter struct {
	where []string
	args  []any
}

func (f *filter) add(cond string, arg any) {
	f.where = append(f.where, cond)
	f.args = append(f.args, arg)
}

// contains adds a case-insensitive substring match when value is non-blank.
func (f *filter) contains(column, value string) {
	if v := strings.TrimSpace(value); v != "" {
		f.add("LOWER("+column+") LIKE ?", containsPattern(v))
	}
}

func (f *filter) clause() string {
	if len(f.where) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.where, " AND ")
}

func nullString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
