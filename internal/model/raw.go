package model

// RawRow is a statement row as read from the file, before normalisation.
// Columns are positional: date, amount, identifier, description.
type RawRow struct {
	Line        int // 1-based line (or sheet row) in the source file
	Date        string
	Amount      string
	Identifier  string // informational only, never persisted
	Description string
	Fields      int // number of fields found on the line
}

// RawColumns is the number of positional statement columns.
const RawColumns = 4
