// Package extract derives structural fact sets from source code using
// tree-sitter. Extraction is heuristic: it records declared types,
// member shapes, supertype edges, held references, and the call edges
// it can resolve without full type checking.
package extract

// Language represents a supported programming language.
type Language string

const (
	LangGo         Language = "go"
	LangJava       Language = "java"
	LangPython     Language = "python"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
)

// LanguageFromExtension maps a file extension (with leading dot) to a
// supported language.
func LanguageFromExtension(ext string) (Language, bool) {
	switch ext {
	case ".go":
		return LangGo, true
	case ".java":
		return LangJava, true
	case ".py":
		return LangPython, true
	case ".js", ".mjs", ".cjs":
		return LangJavaScript, true
	case ".ts":
		return LangTypeScript, true
	default:
		return "", false
	}
}
