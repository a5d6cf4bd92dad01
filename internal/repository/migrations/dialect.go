package migrations

import "fmt"

// Dialect captures the SQL differences between the supported backends.
type Dialect struct {
	Name string

	// Bind returns the placeholder for the n-th (1-based) argument.
	Bind func(n int) string

	// DateText and TimeText render a DATE or TIME column as YYYY-MM-DD and
	// HH:MM:SS text so every backend scans into strings the same way.
	DateText func(column string) string
	TimeText func(column string) string

	// DateArg and TimeArg wrap a placeholder holding a text value.
	DateArg func(placeholder string) string
	TimeArg func(placeholder string) string

	// Dir is the directory of embedded SQL files for this dialect.
	Dir string

	// TransactionalDDL is false when schema changes commit implicitly, so a
	// failed migration can leave the schema half applied.
	TransactionalDDL bool
}

func identity(s string) string { return s }

func questionMark(int) string { return "?" }

// SQLite stores days and times as TEXT.
var SQLite = Dialect{
	Name:     "sqlite",
	Bind:     questionMark,
	DateText: identity,
	TimeText: identity,
	DateArg:  identity,
	TimeArg:  identity,
	Dir:      "sqlite",

	TransactionalDDL: true,
}

// MySQL uses native DATE and TIME columns.
var MySQL = Dialect{
	Name: "mysql",
	Bind: questionMark,
	DateText: func(c string) string {
		return fmt.Sprintf("DATE_FORMAT(%s, '%%Y-%%m-%%d')", c)
	},
	TimeText: func(c string) string {
		return fmt.Sprintf("TIME_FORMAT(%s, '%%H:%%i:%%s')", c)
	},
	DateArg: identity,
	TimeArg: identity,
	Dir:     "mysql",
}

// Postgres uses native DATE and TIME columns and numbered placeholders.
var Postgres = Dialect{
	Name: "postgres",
	Bind: func(n int) string { return fmt.Sprintf("$%d", n) },
	DateText: func(c string) string {
		return fmt.Sprintf("to_char(%s, 'YYYY-MM-DD')", c)
	},
	TimeText: func(c string) string {
		return fmt.Sprintf("to_char(%s, 'HH24:MI:SS')", c)
	},
	DateArg: func(p string) string { return p + "::date" },
	TimeArg: func(p string) string { return p + "::time" },
	Dir:     "postgres",

	TransactionalDDL: true,
}

// Binder hands out placeholders in order, for queries built incrementally.
type Binder struct {
	dialect Dialect
	args    []interface{}
}

// NewBinder creates a Binder for d.
func NewBinder(d Dialect) *Binder {
	return &Binder{dialect: d}
}

// Add records an argument and returns its placeholder.
func (b *Binder) Add(arg interface{}) string {
	b.args = append(b.args, arg)
	return b.dialect.Bind(len(b.args))
}

// Args returns the recorded arguments.
func (b *Binder) Args() []interface{} {
	return b.args
}
