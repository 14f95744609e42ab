package store

import (
	"fmt"
	"strconv"
	"strings"
)

// Driver names accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type dialect struct {
	name       string
	sqlDriver  string // name registered with database/sql
	schema     []string
	positional bool // $1, $2 placeholders instead of ?
}

var sqliteDialect = dialect{
	name:      DriverSQLite,
	sqlDriver: "sqlite",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS lancamentos (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			data TEXT NOT NULL,
			valor TEXT NOT NULL,
			descricao TEXT NOT NULL,
			tipo TEXT NOT NULL,
			categoria TEXT NOT NULL,
			subcategoria TEXT NOT NULL,
			UNIQUE (data, valor, descricao)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_lancamentos_categoria ON lancamentos (categoria)`,
		`CREATE TABLE IF NOT EXISTS regras_classificacao (
			descricao TEXT PRIMARY KEY,
			tipo TEXT NOT NULL,
			categoria TEXT NOT NULL,
			subcategoria TEXT NOT NULL
		)`,
	},
}

var postgresDialect = dialect{
	name:      DriverPostgres,
	sqlDriver: "pgx",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS lancamentos (
			id BIGSERIAL PRIMARY KEY,
			data TEXT NOT NULL,
			valor NUMERIC(14,2) NOT NULL,
			descricao TEXT NOT NULL,
			tipo TEXT NOT NULL,
			categoria TEXT NOT NULL,
			subcategoria TEXT NOT NULL,
			UNIQUE (data, valor, descricao)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_lancamentos_categoria ON lancamentos (categoria)`,
		`CREATE TABLE IF NOT EXISTS regras_classificacao (
			descricao TEXT PRIMARY KEY,
			tipo TEXT NOT NULL,
			categoria TEXT NOT NULL,
			subcategoria TEXT NOT NULL
		)`,
	},
	positional: true,
}

func dialectFor(driver string) (dialect, error) {
	switch strings.ToLower(driver) {
	case DriverSQLite, "sqlite3", "":
		return sqliteDialect, nil
	case DriverPostgres, "postgresql", "pgx":
		return postgresDialect, nil
	default:
		return dialect{}, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// rebind rewrites ? placeholders for dialects that number them.
func (d dialect) rebind(query string) string {
	if !d.positional {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// dsn adds the connection options the dialect relies on.
func (d dialect) dsn(dsn string) string {
	if d.name != DriverSQLite || strings.Contains(dsn, "_pragma") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	// Writers from another process wait instead of failing with SQLITE_BUSY.
	return dsn + sep + "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}
