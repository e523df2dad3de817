package migrations

import (
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

// migrationFile is one embedded SQL file.
type migrationFile struct {
	Name string
	SQL  string
}

// loadFiles reads every non-empty .sql file under dir in lexical order (001_, 002_, ...).
func loadFiles(fsys fs.FS, dir string) ([]migrationFile, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read embedded %s migrations: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	files := make([]migrationFile, 0, len(names))
	for _, name := range names {
		data, err := fs.ReadFile(fsys, dir+"/"+name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		if strings.TrimSpace(string(data)) == "" {
			continue
		}
		files = append(files, migrationFile{Name: name, SQL: string(data)})
	}
	return files, nil
}

// splitStatements splits SQL content into individual statements by semicolon.
//
// The splitter does NOT handle semicolons inside string literals, block comments
// or dollar-quoted strings. Migrations must use -- comments only and keep
// semicolons out of literals; validateNoSemicolonInStrings enforces the latter.
func splitStatements(input string) []string {
	var filtered []string
	for _, line := range strings.Split(input, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		filtered = append(filtered, line)
	}
	joined := strings.Join(filtered, "\n")

	var stmts []string
	for _, part := range strings.Split(joined, ";") {
		stmt := strings.TrimSpace(part)
		if stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}

// validateNoSemicolonInStrings rejects SQL with a semicolon inside a single-quoted literal.
func validateNoSemicolonInStrings(sql string) error {
	inString := false
	for i := 0; i < len(sql); i++ {
		ch := sql[i]
		if ch == '\'' {
			// '' is an escaped quote
			if i+1 < len(sql) && sql[i+1] == '\'' {
				i++
				continue
			}
			inString = !inString
		} else if ch == ';' && inString {
			return fmt.Errorf("semicolon found inside string literal - this breaks the migration splitter")
		}
	}
	return nil
}

// statements validates and splits a migration file.
func (f migrationFile) statements() ([]string, error) {
	if err := validateNoSemicolonInStrings(f.SQL); err != nil {
		return nil, fmt.Errorf("validate migration %s: %w", f.Name, err)
	}
	return splitStatements(f.SQL), nil
}
