package util

import (
	"database/sql"
	"strings"
)

// NormalizeAnswer lowercases an answer and collapses surrounding and
// internal whitespace so that " Apple " and "apple" compare equal.
func NormalizeAnswer(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// StringToNullString converts a string to sql.NullString, treating the
// empty string as NULL.
func StringToNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// NullStringToString unwraps a sql.NullString, returning "" for NULL.
func NullStringToString(ns sql.NullString) string {
	if !ns.Valid {
		return ""
	}
	return ns.String
}
