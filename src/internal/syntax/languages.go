package syntax

import (
	"path/filepath"
	"strings"
)

// Language describes a known programming language: its canonical display
// name, the aliases users type for it, and UI metadata.
type Language struct {
	Name       string   `json:"name"`
	Aliases    []string `json:"aliases"`
	Extensions []string `json:"extensions"`
	Color      string   `json:"color"`
}

var registry = []Language{
	{
		Name:       "JavaScript",
		Aliases:    []string{"js", "node", "nodejs"},
		Extensions: []string{".js", ".mjs", ".jsx"},
		Color:      "#f1e05a",
	},
	{
		Name:       "TypeScript",
		Aliases:    []string{"ts"},
		Extensions: []string{".ts", ".tsx"},
		Color:      "#3178c6",
	},
	{
		Name:       "Python",
		Aliases:    []string{"py", "python3"},
		Extensions: []string{".py", ".pyw"},
		Color:      "#3572A5",
	},
	{
		Name:       "Go",
		Aliases:    []string{"golang"},
		Extensions: []string{".go"},
		Color:      "#00ADD8",
	},
	{
		Name:       "Rust",
		Aliases:    []string{"rs"},
		Extensions: []string{".rs"},
		Color:      "#dea584",
	},
	{
		Name:       "Java",
		Extensions: []string{".java"},
		Color:      "#b07219",
	},
	{
		Name:       "C",
		Extensions: []string{".c", ".h"},
		Color:      "#555555",
	},
	{
		Name:       "C++",
		Aliases:    []string{"cpp", "cxx"},
		Extensions: []string{".cpp", ".cc", ".cxx", ".hpp"},
		Color:      "#f34b7d",
	},
	{
		Name:       "C#",
		Aliases:    []string{"csharp", "cs"},
		Extensions: []string{".cs"},
		Color:      "#178600",
	},
	{
		Name:       "Ruby",
		Aliases:    []string{"rb"},
		Extensions: []string{".rb"},
		Color:      "#701516",
	},
	{
		Name:       "PHP",
		Extensions: []string{".php"},
		Color:      "#4F5D95",
	},
	{
		Name:       "Shell",
		Aliases:    []string{"sh", "bash", "zsh", "shell-script"},
		Extensions: []string{".sh", ".bash", ".zsh"},
		Color:      "#89e051",
	},
	{
		Name:       "PowerShell",
		Aliases:    []string{"ps1", "pwsh"},
		Extensions: []string{".ps1", ".psm1"},
		Color:      "#012456",
	},
	{
		Name:       "SQL",
		Extensions: []string{".sql"},
		Color:      "#e38c00",
	},
	{
		Name:       "HTML",
		Extensions: []string{".html", ".htm"},
		Color:      "#e34c26",
	},
	{
		Name:       "CSS",
		Extensions: []string{".css"},
		Color:      "#563d7c",
	},
	{
		Name:       "JSON",
		Extensions: []string{".json"},
		Color:      "#292929",
	},
	{
		Name:       "YAML",
		Aliases:    []string{"yml"},
		Extensions: []string{".yaml", ".yml"},
		Color:      "#cb171e",
	},
	{
		Name:       "Markdown",
		Aliases:    []string{"md"},
		Extensions: []string{".md", ".markdown"},
		Color:      "#083fa1",
	},
	{
		Name:       "Dockerfile",
		Aliases:    []string{"docker"},
		Color:      "#384d54",
	},
	{
		Name:       "Kotlin",
		Aliases:    []string{"kt"},
		Extensions: []string{".kt", ".kts"},
		Color:      "#A97BFF",
	},
	{
		Name:       "Swift",
		Extensions: []string{".swift"},
		Color:      "#F05138",
	},
	{
		Name:       "Lua",
		Extensions: []string{".lua"},
		Color:      "#000080",
	},
	{
		Name:       "Perl",
		Aliases:    []string{"pl"},
		Extensions: []string{".pl", ".pm"},
		Color:      "#0298c3",
	},
	{
		Name:       "Haskell",
		Aliases:    []string{"hs"},
		Extensions: []string{".hs"},
		Color:      "#5e5086",
	},
}

var (
	nameMap      = make(map[string]*Language)
	extensionMap = make(map[string]*Language)
)

func init() {
	for i := range registry {
		language := &registry[i]
		nameMap[strings.ToLower(language.Name)] = language
		for _, alias := range language.Aliases {
			nameMap[strings.ToLower(alias)] = language
		}
		for _, ext := range language.Extensions {
			extensionMap[ext] = language
		}
	}
}

// Known returns every registered language, for clients populating pickers.
func Known() []Language {
	out := make([]Language, len(registry))
	copy(out, registry)
	return out
}

// Lookup resolves a language name or alias, case-insensitively, to its
// registry entry.
func Lookup(name string) (*Language, bool) {
	language, ok := nameMap[strings.ToLower(strings.TrimSpace(name))]
	return language, ok
}

// Canonical returns the canonical display name for a language name or alias.
// Unknown names come back unchanged, trimmed.
func Canonical(name string) string {
	if language, ok := Lookup(name); ok {
		return language.Name
	}
	return strings.TrimSpace(name)
}

// Color returns the UI color for a language, or empty for unknown ones.
func Color(name string) string {
	if language, ok := Lookup(name); ok {
		return language.Color
	}
	return ""
}

// DetectByFilename guesses a language from a file name's extension.
func DetectByFilename(filename string) (*Language, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return nil, false
	}
	language, ok := extensionMap[ext]
	return language, ok
}
