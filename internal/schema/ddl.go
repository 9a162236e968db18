package schema

import "strings"

// CreateTable renders CREATE TABLE IF NOT EXISTS for t.
func CreateTable(t Table) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(t.Name)
	b.WriteString(" (\n")

	for _, c := range t.Columns {
		b.WriteString("    ")
		b.WriteString(columnDef(c))
		b.WriteString(",\n")
	}

	b.WriteString("    PRIMARY KEY (")
	b.WriteString(strings.Join(t.PrimaryKey, ", "))
	b.WriteString(")\n)")
	return b.String()
}

func columnDef(c Column) string {
	parts := []string{c.Name, string(c.Type)}
	if !c.Nullable {
		parts = append(parts, "NOT NULL")
	}
	if c.Default != "" {
		parts = append(parts, "DEFAULT "+c.Default)
	}
	if c.Unique {
		parts = append(parts, "UNIQUE")
	}
	return strings.Join(parts, " ")
}

// CreateIndex renders CREATE INDEX IF NOT EXISTS for an index on table.
func CreateIndex(table string, idx Index) string {
	return "CREATE INDEX IF NOT EXISTS " + idx.Name + " ON " + table +
		" (" + strings.Join(idx.Columns, ", ") + ")"
}

// Statements returns every DDL statement needed to create the schema,
// tables first and then their indexes. Each statement is idempotent.
func Statements() []string {
	var stmts []string
	for _, t := range Tables {
		stmts = append(stmts, CreateTable(t))
	}
	for _, t := range Tables {
		for _, idx := range t.Indexes {
			stmts = append(stmts, CreateIndex(t.Name, idx))
		}
	}
	return stmts
}

// Script joins Statements into a single SQL script.
func Script() string {
	return strings.Join(Statements(), ";\n\n") + ";\n"
}
