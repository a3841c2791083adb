// Package repl is the interactive query session. Lines use the bracket
// surface: tbl[selector, expression, by = keys], order(tbl, k1, -k2), plus
// a few session commands (ls, load, copy, exit).
package repl

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/frameql/frameql/internal/ingest"
	"github.com/frameql/frameql/internal/query"
	"github.com/frameql/frameql/internal/render"
	"github.com/frameql/frameql/internal/table"
)

func Start(eng *query.Engine) {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("frameql interactive session")
	fmt.Println("Type 'exit' or '\\q' to quit.")

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			continue
		}
		if line == "exit" || line == "\\q" {
			return
		}

		if line == "ls" || line == "list" {
			fmt.Println("Registered tables:")
			for _, name := range eng.Names() {
				fmt.Printf("  - %s\n", name)
			}
			continue
		}

		if rest, ok := strings.CutPrefix(line, "load "); ok {
			if err := loadTable(eng, rest); err != nil {
				fmt.Printf("Error: %v\n", err)
			}
			continue
		}

		if rest, ok := strings.CutPrefix(line, "copy "); ok {
			if err := copyTable(eng, rest); err != nil {
				fmt.Printf("Error: %v\n", err)
			}
			continue
		}

		result, err := Exec(eng, line)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		if err := render.PrintTable(os.Stdout, result); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	}
}

func loadTable(eng *query.Engine, args string) error {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return fmt.Errorf("usage: load <name> <file.csv>")
	}
	f, err := os.Open(fields[1])
	if err != nil {
		return err
	}
	defer f.Close()

	t, err := ingest.ReadCSV(f)
	if err != nil {
		return err
	}
	eng.Register(fields[0], t)
	fmt.Printf("Loaded %s (%d rows)\n", fields[0], t.NumRows())
	return nil
}

// copyTable registers a deep copy under a new name. Mutating either table
// afterwards leaves the other untouched.
func copyTable(eng *query.Engine, args string) error {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return fmt.Errorf("usage: copy <new> <existing>")
	}
	src, err := eng.Lookup(fields[1])
	if err != nil {
		return err
	}
	eng.Register(fields[0], src.Clone())
	return nil
}

// Exec evaluates one query line against the engine's registry.
func Exec(eng *query.Engine, line string) (*table.Table, error) {
	if rest, ok := strings.CutPrefix(line, "order("); ok {
		return execOrder(eng, rest)
	}

	open := strings.Index(line, "[")
	if open < 0 || !strings.HasSuffix(line, "]") {
		return nil, fmt.Errorf("cannot parse query: %s", line)
	}

	name := strings.TrimSpace(line[:open])
	body := line[open+1 : len(line)-1]

	q, err := eng.QueryNamed(name)
	if err != nil {
		return nil, err
	}

	slots := splitTopLevel(body)
	if len(slots) > 0 {
		if sel := strings.TrimSpace(slots[0]); sel != "" {
			q.Where(sel)
		}
		slots = slots[1:]
	}

	var exprs []string
	for _, slot := range slots {
		trimmed := strings.TrimSpace(slot)
		if keys, ok, sorted := cutKeys(trimmed); ok {
			if sorted {
				q.SortedBy(keys...)
			} else {
				q.By(keys...)
			}
			continue
		}
		exprs = append(exprs, trimmed)
	}

	if len(exprs) > 0 {
		joined := strings.Join(exprs, ", ")
		if strings.Contains(joined, ":=") {
			q.Let(joined)
		} else {
			q.Select(joined)
		}
	}

	return q.Run()
}

func execOrder(eng *query.Engine, rest string) (*table.Table, error) {
	if !strings.HasSuffix(rest, ")") {
		return nil, fmt.Errorf("cannot parse order(): missing ')'")
	}
	parts := splitTopLevel(rest[:len(rest)-1])
	if len(parts) < 2 {
		return nil, fmt.Errorf("usage: order(table, key1, -key2, ...)")
	}
	t, err := eng.Lookup(strings.TrimSpace(parts[0]))
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(parts)-1)
	for _, p := range parts[1:] {
		keys = append(keys, strings.TrimSpace(p))
	}
	return query.Order(t, keys...)
}

// cutKeys recognizes the grouping slot: by = k or sortedBy = k. Multiple
// keys are parenthesized so the slot survives top-level comma splitting:
// by = (grp, region).
func cutKeys(slot string) ([]string, bool, bool) {
	for _, prefix := range []string{"by", "sortedBy"} {
		rest, ok := strings.CutPrefix(slot, prefix)
		if !ok {
			continue
		}
		rest = strings.TrimSpace(rest)
		rest, ok = strings.CutPrefix(rest, "=")
		if !ok {
			continue
		}
		rest = strings.TrimSpace(rest)
		if strings.HasPrefix(rest, "(") && strings.HasSuffix(rest, ")") {
			rest = rest[1 : len(rest)-1]
		}
		var keys []string
		for _, k := range strings.Split(rest, ",") {
			keys = append(keys, strings.TrimSpace(k))
		}
		return keys, true, prefix == "sortedBy"
	}
	return nil, false, false
}

// splitTopLevel splits on commas that sit outside parentheses and quotes,
// so function arguments survive intact.
func splitTopLevel(s string) []string {
	var parts []string
	depth := 0
	inString := false
	start := 0

	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case inString:
			if c == '"' && (i == 0 || s[i-1] != '\\') {
				inString = false
			}
		case c == '"':
			inString = true
		case c == '(':
			depth++
		case c == ')':
			depth--
		case c == ',' && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	parts = append(parts, s[start:])
	return parts
}
