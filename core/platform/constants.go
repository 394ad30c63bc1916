package platform

import (
	"strings"
)

const (
	Oracle   = "oracle"
	Postgres = "postgres"
)

func NormalizeDialect(dialect string) string {
	switch strings.ToLower(dialect) {
	case "pgx", "postgresql", "postgres", "pg":
		return Postgres
	case "oracle", "ora", "plsql":
		return Oracle
	default:
		return ""
	}
}
