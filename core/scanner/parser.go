package scanner

import "strings"

// parsedImport is one imported name as written in the source, before
// relative and internal/external resolution. Relative imports keep
// their leading dots.
type parsedImport struct {
	name             string
	lineNumber       int
	lineContents     string
	typeCheckingOnly bool
}

// parseImports extracts import statements from Python source with a
// line-oriented scan. Statements continued with backslashes or
// parentheses are joined into one logical line. Imports nested under an
// `if TYPE_CHECKING:` guard are flagged, tracked by indentation; an
// else or elif at the guard's level ends the flagged region, since that
// branch runs at import time.
func parseImports(source string) []parsedImport {
	lines := strings.Split(source, "\n")

	var out []parsedImport
	typeCheckingIndent := -1
	inString := false
	stringDelimiter := ""

	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if inString {
			if rest, closed := closeTripleQuote(line, stringDelimiter); closed {
				inString, stringDelimiter = scanTripleQuotes(rest)
			}
			continue
		}

		stripped := strings.TrimSpace(line)
		if stripped == "" || strings.HasPrefix(stripped, "#") {
			continue
		}

		indent := indentWidth(line)
		if typeCheckingIndent >= 0 && indent <= typeCheckingIndent {
			typeCheckingIndent = -1
		}

		if isTypeCheckingGuard(stripped) {
			typeCheckingIndent = indent
			continue
		}

		if strings.HasPrefix(stripped, "import ") || strings.HasPrefix(stripped, "from ") {
			statement, consumed := assembleStatement(lines, i)
			names := importedNames(statement)
			for _, name := range names {
				out = append(out, parsedImport{
					name:             name,
					lineNumber:       i + 1,
					lineContents:     stripped,
					typeCheckingOnly: typeCheckingIndent >= 0,
				})
			}
			i += consumed - 1
			continue
		}

		inString, stringDelimiter = scanTripleQuotes(line)
	}
	return out
}

// isTypeCheckingGuard matches `if TYPE_CHECKING:` and
// `if <alias>.TYPE_CHECKING:`.
func isTypeCheckingGuard(stripped string) bool {
	if !strings.HasPrefix(stripped, "if ") || !strings.HasSuffix(stripped, ":") {
		return false
	}
	condition := strings.TrimSpace(stripped[3 : len(stripped)-1])
	if condition == "TYPE_CHECKING" {
		return true
	}
	return strings.HasSuffix(condition, ".TYPE_CHECKING") && !strings.ContainsAny(condition, " ()")
}

func indentWidth(line string) int {
	width := 0
	for _, r := range line {
		switch r {
		case ' ':
			width++
		case '\t':
			width += 8
		default:
			return width
		}
	}
	return width
}

// assembleStatement joins the physical lines of one import statement,
// following backslash continuations and unbalanced parentheses. It
// returns the joined statement and how many physical lines it spans.
func assembleStatement(lines []string, start int) (string, int) {
	var builder strings.Builder
	depth := 0
	consumed := 0

	for i := start; i < len(lines); i++ {
		consumed++
		line := stripComment(lines[i])
		line = strings.TrimSpace(line)
		continued := strings.HasSuffix(line, "\\")
		line = strings.TrimSuffix(line, "\\")

		depth += strings.Count(line, "(") - strings.Count(line, ")")
		builder.WriteString(line)
		builder.WriteString(" ")

		if depth <= 0 && !continued {
			break
		}
	}

	statement := builder.String()
	statement = strings.ReplaceAll(statement, "(", " ")
	statement = strings.ReplaceAll(statement, ")", " ")
	return strings.Join(strings.Fields(statement), " "), consumed
}

func stripComment(line string) string {
	if i := strings.Index(line, "#"); i >= 0 {
		return line[:i]
	}
	return line
}

// importedNames extracts the imported names from a joined statement.
// `import a.b as c, d` yields a.b and d; `from .x import y, z` yields
// .x.y and .x.z; `from x import *` yields x.
func importedNames(statement string) []string {
	if rest, ok := strings.CutPrefix(statement, "import "); ok {
		var names []string
		for _, item := range strings.Split(rest, ",") {
			if name := firstField(item); name != "" {
				names = append(names, name)
			}
		}
		return names
	}

	rest, ok := strings.CutPrefix(statement, "from ")
	if !ok {
		return nil
	}
	base, items, ok := strings.Cut(rest, " import ")
	if !ok {
		return nil
	}
	base = strings.TrimSpace(base)

	var names []string
	for _, item := range strings.Split(items, ",") {
		name := firstField(item)
		switch {
		case name == "":
			continue
		case name == "*":
			names = append(names, base)
		case strings.HasSuffix(base, "."):
			names = append(names, base+name)
		default:
			names = append(names, base+"."+name)
		}
	}
	return names
}

// firstField returns the imported name from an item like "b as c".
func firstField(item string) string {
	fields := strings.Fields(item)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// scanTripleQuotes reports whether the line leaves a triple-quoted
// string open, and with which delimiter.
func scanTripleQuotes(line string) (bool, string) {
	for {
		single := strings.Index(line, "'''")
		double := strings.Index(line, `"""`)
		if single < 0 && double < 0 {
			return false, ""
		}

		delimiter := `"""`
		at := double
		if double < 0 || (single >= 0 && single < double) {
			delimiter = "'''"
			at = single
		}

		rest, closed := closeTripleQuote(line[at+3:], delimiter)
		if !closed {
			return true, delimiter
		}
		line = rest
	}
}

// closeTripleQuote looks for the closing delimiter, returning the text
// after it and whether it was found.
func closeTripleQuote(line, delimiter string) (string, bool) {
	if i := strings.Index(line, delimiter); i >= 0 {
		return line[i+len(delimiter):], true
	}
	return "", false
}
