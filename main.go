package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/outlierql/diffql/catalog"
	"github.com/outlierql/diffql/engine"
	"github.com/outlierql/diffql/format"
	"github.com/outlierql/diffql/sql"
	"github.com/outlierql/diffql/table"
)

var fOutput = flag.String(
	"output",
	"",
	"specify path to save output file, default write to STDOUT",
)

var fNoColor = flag.Bool(
	"no-color",
	false,
	"disable colored table header in the output",
)

func oops(stage string, err error) {
	fmt.Fprintf(os.Stderr, "ERROR [%s]]] %s\n", stage, err)
	os.Exit(-1)
}

func readStdin() string {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		oops("read sql", err)
	}
	return string(data)
}

// importStmt matches the CLI-only IMPORT TABLE directive SPEC_FULL.md §4
// adds to drive catalog.ImportTable end to end from a shell script; it is
// not part of the sql package's grammar since spec.md §6 treats importTable
// as a library-level façade operation, not a relational query shape.
var importStmt = regexp.MustCompile(`(?is)^IMPORT\s+TABLE\s+(\w+)\s+FROM\s+'([^']+)'\s*\(([^)]*)\)\s*$`)

func parseImportStmt(stmt string) (name, path string, cols []catalog.ColumnSpec, err error) {
	m := importStmt.FindStringSubmatch(stmt)
	if m == nil {
		return "", "", nil, fmt.Errorf("malformed IMPORT TABLE statement")
	}
	name, path = m[1], m[2]
	for _, part := range strings.Split(m[3], ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields := strings.Fields(part)
		if len(fields) != 2 {
			return "", "", nil, fmt.Errorf("import %s: bad column spec %q", name, part)
		}
		var ty table.Type
		switch strings.ToUpper(fields[1]) {
		case "DOUBLE", "NUMBER", "FLOAT":
			ty = table.Double
		case "STRING", "TEXT", "VARCHAR":
			ty = table.String
		default:
			return "", "", nil, fmt.Errorf("import %s: unknown column type %q", name, fields[1])
		}
		cols = append(cols, catalog.ColumnSpec{Name: fields[0], Ty: ty})
	}
	return name, path, cols, nil
}

func runImport(store *catalog.Store, stmt string) error {
	name, path, cols, err := parseImportStmt(stmt)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("import %s: %w", name, err)
	}
	defer f.Close()

	tab, err := catalog.ImportTable(f, cols)
	if err != nil {
		return err
	}
	store.Put(name, tab)
	return nil
}

func splitStatements(script string) []string {
	var stmts []string
	for _, s := range strings.Split(script, ";") {
		s = strings.TrimSpace(s)
		if s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}

func main() {
	flag.Parse()
	script := readStdin()

	store := catalog.New()
	dispatcher := engine.NewDispatcher(store)

	var result *table.ColumnTable
	for _, stmt := range splitStatements(script) {
		if importStmt.MatchString(stmt) {
			if err := runImport(store, stmt); err != nil {
				oops("import", err)
			}
			continue
		}

		qb, err := sql.NewParser(stmt).Parse()
		if err != nil {
			oops("parse", err)
		}

		result, err = dispatcher.Execute(qb)
		if err != nil {
			oops("execute", err)
		}
	}

	if result == nil {
		os.Exit(0)
	}

	opts := format.DefaultOptions()
	opts.NoColor = *fNoColor

	out := os.Stdout
	if *fOutput != "" {
		f, err := os.Create(*fOutput)
		if err != nil {
			oops("save", err)
		}
		defer f.Close()
		out = f
	}

	if err := format.WriteTable(out, result, opts); err != nil {
		oops("render", err)
	}
	os.Exit(0)
}
