package internal

import (
	"fmt"
	"regexp"
	"strings"
)

// Tool is one review-stage check. Tools are pure over the code they inspect;
// their results are surfaced as tool events and summarized into the session
// state bag.
type Tool struct {
	Name string
	Run  func(code string) map[string]interface{}
}

// ReviewTools returns the checks the review stage runs over generated code.
func ReviewTools() []Tool {
	return []Tool{
		{Name: "validate_jsx_syntax", Run: ValidateJSX},
		{Name: "validate_css_syntax", Run: ValidateCSS},
		{Name: "extract_npm_dependencies", Run: ExtractDependencies},
	}
}

var importRe = regexp.MustCompile(`(?m)^\s*import\s+(?:[\w{}\s,*]+\s+from\s+)?['"]([^'"]+)['"]`)

// ValidateJSX runs basic syntax and React-convention checks over JSX code.
func ValidateJSX(code string) map[string]interface{} {
	var errs []string
	var warnings []string

	open := strings.Count(code, "{")
	closed := strings.Count(code, "}")
	if open != closed {
		errs = append(errs, fmt.Sprintf("mismatched braces: %d open, %d close", open, closed))
	}

	if strings.Contains(code, "class=") && !strings.Contains(code, "className=") {
		errs = append(errs, "use 'className' instead of 'class' in JSX")
	}

	if strings.Contains(code, ".map(") && !strings.Contains(code, "key=") {
		warnings = append(warnings, "consider adding 'key' prop when rendering lists")
	}

	return checkResult(errs, warnings)
}

// ValidateCSS runs basic syntax checks over CSS code.
func ValidateCSS(code string) map[string]interface{} {
	var errs []string
	var warnings []string

	open := strings.Count(code, "{")
	closed := strings.Count(code, "}")
	if open != closed {
		errs = append(errs, fmt.Sprintf("mismatched braces: %d open, %d close", open, closed))
	}

	if strings.Contains(code, "!important") {
		warnings = append(warnings, "avoid '!important' where possible")
	}

	return checkResult(errs, warnings)
}

// ExtractDependencies collects npm package names imported by the code.
// Relative imports are skipped.
func ExtractDependencies(code string) map[string]interface{} {
	seen := make(map[string]bool)
	var deps []string

	for _, m := range importRe.FindAllStringSubmatch(code, -1) {
		pkg := m[1]
		if strings.HasPrefix(pkg, ".") || strings.HasPrefix(pkg, "/") {
			continue
		}
		// Scoped packages keep two segments, others keep the first.
		parts := strings.Split(pkg, "/")
		name := parts[0]
		if strings.HasPrefix(pkg, "@") && len(parts) > 1 {
			name = parts[0] + "/" + parts[1]
		}
		if !seen[name] {
			seen[name] = true
			deps = append(deps, name)
		}
	}

	return map[string]interface{}{
		"status":       "success",
		"dependencies": deps,
		"count":        len(deps),
	}
}

func checkResult(errs, warnings []string) map[string]interface{} {
	status := "success"
	if len(errs) > 0 {
		status = "error"
	}
	return map[string]interface{}{
		"status":       status,
		"errors":       errs,
		"warnings":     warnings,
		"total_issues": len(errs) + len(warnings),
	}
}
