package ai

import (
	"fmt"
	"path/filepath"
	"strings"
)

// getSyntaxLang returns the code fence language for a file extension
func getSyntaxLang(filePath string) string {
	ext := strings.ToLower(filepath.Ext(filePath))
	switch ext {
	case ".go":
		return "go"
	case ".js", ".mjs", ".cjs":
		return "javascript"
	case ".ts", ".tsx":
		return "typescript"
	case ".html", ".htm":
		return "html"
	case ".css":
		return "css"
	case ".py":
		return "python"
	case ".rb":
		return "ruby"
	case ".rs":
		return "rust"
	case ".java":
		return "java"
	case ".c", ".h":
		return "c"
	case ".cpp", ".hpp":
		return "cpp"
	case ".php":
		return "php"
	case ".sh", ".bash":
		return "bash"
	case ".sql":
		return "sql"
	case ".xml":
		return "xml"
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	case ".md":
		return "markdown"
	default:
		return "text"
	}
}

// ReviewSystemPrompt frames the model as a forensic examiner
const ReviewSystemPrompt = `You are a digital forensics examiner reviewing pairs of files that an automated
similarity scan flagged as near duplicates. Decide how the two files relate.

VERDICTS:
- copy: the same document or program with trivial differences (whitespace, formatting, renamed identifiers, a changed date or header)
- revision: one file is an edited version of the other (content added, removed or rewritten, but clearly derived)
- unrelated: the similarity is superficial (shared boilerplate, license text, templates, generated code)

OUTPUT: Valid JSON only, no markdown formatting.
{"verdict": "copy|revision|unrelated", "confidence": 0-100, "explanation": "one or two sentences naming the evidence"}`

// BuildReviewPrompt renders the user prompt for one pair
func BuildReviewPrompt(req *ReviewRequest) string {
	var sb strings.Builder

	sb.WriteString("## Pair\n")
	sb.WriteString(fmt.Sprintf("- Group: %s\n", req.Group))
	sb.WriteString(fmt.Sprintf("- Similarity score: %.4f\n\n", req.Score))

	writeExcerpt(&sb, "File A", req.File1, req.Excerpt1)
	writeExcerpt(&sb, "File B", req.File2, req.Excerpt2)

	sb.WriteString("Classify the relationship between File A and File B.")
	return sb.String()
}

func writeExcerpt(sb *strings.Builder, label, path, excerpt string) {
	sb.WriteString(fmt.Sprintf("## %s: `%s`\n", label, filepath.Base(path)))
	sb.WriteString("```" + getSyntaxLang(path) + "\n")
	sb.WriteString(excerpt)
	if !strings.HasSuffix(excerpt, "\n") {
		sb.WriteString("\n")
	}
	sb.WriteString("```\n\n")
}
