package internal

import (
	"path"
	"regexp"
	"strings"
)

// fencedBlockRe matches fenced code blocks of the shape
// ```<language>? <optional-path-hint>\n<body>``` non-greedily, with the dot
// matching newlines inside the body.
var fencedBlockRe = regexp.MustCompile("(?s)```" + `(\w+)?[ \t]*(?://[ \t]*)?([^\n]*)\n(.*?)` + "```")

// fileMarkerRe matches prose-style "File: path" markers at line start.
var fileMarkerRe = regexp.MustCompile(`(?mi)^file:[ \t]*(\S+)[ \t]*$`)

// ExtractFiles parses generated text into an ordered set of output files.
// The primary pass scans fenced code blocks; only when it yields nothing does
// the fallback pass look for "File: <path>" markers. Duplicate paths keep
// their first position but take the last content written.
func ExtractFiles(text string) []GeneratedFile {
	files := extractFencedBlocks(text)
	if len(files) == 0 {
		files = extractFileMarkers(text)
	}
	return files
}

// extractFencedBlocks is the primary extraction pass.
func extractFencedBlocks(text string) []GeneratedFile {
	var (
		order []string
		byPath = make(map[string]GeneratedFile)
	)

	for _, m := range fencedBlockRe.FindAllStringSubmatch(text, -1) {
		language := strings.ToLower(m[1])
		hint := strings.TrimSpace(m[2])
		body := strings.TrimSpace(m[3])

		filePath := resolvePath(language, hint)
		file := GeneratedFile{
			Path:     filePath,
			Content:  body,
			Language: languageFor(language, filePath),
		}

		if _, seen := byPath[filePath]; !seen {
			order = append(order, filePath)
		}
		byPath[filePath] = file
	}

	files := make([]GeneratedFile, 0, len(order))
	for _, p := range order {
		files = append(files, byPath[p])
	}
	return files
}

// resolvePath determines the file path for one block. A hint that looks like
// a real path is used verbatim; otherwise the path is inferred from the
// language tag.
func resolvePath(language, hint string) string {
	if hint != "" && (strings.Contains(hint, "/") || strings.Contains(hint, ".")) {
		return hint
	}

	switch language {
	case "javascript", "jsx", "js":
		if hint != "" {
			return "src/" + hint + ".jsx"
		}
		return "src/App.jsx"
	case "css":
		if hint != "" {
			return "src/" + hint + ".css"
		}
		return "src/App.css"
	case "html":
		return "public/index.html"
	default:
		if language != "" {
			return "src/Component." + language
		}
		return "src/Component.jsx"
	}
}

// languageFor picks the declared tag when present, else infers from the
// path extension.
func languageFor(tag, filePath string) string {
	if tag != "" {
		return tag
	}
	ext := strings.TrimPrefix(path.Ext(filePath), ".")
	if ext == "" {
		return "jsx"
	}
	return ext
}

// extractFileMarkers is the fallback pass for backends that emit prose-style
// file markers instead of fenced blocks. Content runs up to the next marker
// or end of text, with residual fence markers stripped.
func extractFileMarkers(text string) []GeneratedFile {
	locs := fileMarkerRe.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}

	var (
		order  []string
		byPath = make(map[string]GeneratedFile)
	)

	for i, loc := range locs {
		filePath := text[loc[2]:loc[3]]

		start := loc[1]
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}

		body := stripFences(text[start:end])
		if body == "" {
			continue
		}

		file := GeneratedFile{
			Path:     filePath,
			Content:  body,
			Language: languageFor("", filePath),
		}
		if _, seen := byPath[filePath]; !seen {
			order = append(order, filePath)
		}
		byPath[filePath] = file
	}

	files := make([]GeneratedFile, 0, len(order))
	for _, p := range order {
		files = append(files, byPath[p])
	}
	return files
}

// stripFences removes leftover fence lines from marker-delimited content.
func stripFences(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
