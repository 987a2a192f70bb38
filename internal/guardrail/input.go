package guardrail

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	// Registered so image.DecodeConfig can verify scanned contract files.
	_ "image/jpeg"
	_ "image/png"

	"github.com/Asif-hussain/autonomous-contract-comparison-agents/internal/document"
)

// InputLimits are the configurable thresholds for input validation.
type InputLimits struct {
	MinTextLength int
	MaxTextLength int
	MaxFileSizeMB float64
	// AllowedExtensions defaults to the scanned-document set when empty.
	AllowedExtensions []string
}

// DefaultInputLimits returns the standard thresholds.
func DefaultInputLimits() InputLimits {
	return InputLimits{
		MinTextLength: 50,
		MaxTextLength: 50000,
		MaxFileSizeMB: 10.0,
	}
}

func (l InputLimits) allowed() []string {
	if len(l.AllowedExtensions) > 0 {
		return l.AllowedExtensions
	}
	return []string{".jpg", ".jpeg", ".png", ".pdf"}
}

// InputGuardrail validates normalized documents and their source files before
// any model stage runs.
type InputGuardrail struct {
	limits InputLimits
}

// NewInputGuardrail creates an input guardrail with the given limits.
func NewInputGuardrail(limits InputLimits) *InputGuardrail {
	return &InputGuardrail{limits: limits}
}

// ValidateInput runs every input check against the document and, when filePath
// is non-empty, its originating file. Warnings never affect validity.
func (g *InputGuardrail) ValidateInput(doc document.Document, filePath string) Result {
	res := newResult()

	g.checkTextLength(doc, res)
	g.checkTextQuality(doc, res)
	g.checkSections(doc, res)
	if filePath != "" {
		g.checkFileIntegrity(filePath, res)
		g.checkFileSize(filePath, res)
	}
	g.checkSensitiveData(doc, res)
	g.checkSafety(doc, res)

	res.Valid = len(res.Errors) == 0
	return *res
}

func (g *InputGuardrail) checkTextLength(doc document.Document, res *Result) {
	n := len(doc.RawText)
	switch {
	case n < g.limits.MinTextLength:
		res.fail(CategoryLength, fmt.Sprintf("text too short (%d chars, minimum %d)", n, g.limits.MinTextLength))
	case n > g.limits.MaxTextLength:
		res.fail(CategoryLength, fmt.Sprintf("text too long (%d chars, maximum %d)", n, g.limits.MaxTextLength))
	default:
		res.pass()
	}
}

// checkTextQuality flags signals of failed upstream parsing: too few words,
// implausible word lengths, or a text dominated by non-alphabetic characters.
func (g *InputGuardrail) checkTextQuality(doc document.Document, res *Result) {
	words := strings.Fields(doc.RawText)
	if len(words) < 20 {
		res.fail(CategoryQuality, fmt.Sprintf("too few words (%d, expected at least 20)", len(words)))
		return
	}

	total := 0
	for _, w := range words {
		total += len(w)
	}
	mean := float64(total) / float64(len(words))
	if mean < 2 || mean > 20 {
		res.fail(CategoryQuality, fmt.Sprintf("unusual mean word length (%.1f), possible OCR failure", mean))
		return
	}

	alpha := 0
	for _, r := range doc.RawText {
		if unicode.IsLetter(r) {
			alpha++
		}
	}
	if ratio := float64(alpha) / float64(len(doc.RawText)); ratio <= 0.5 {
		res.fail(CategoryQuality, fmt.Sprintf("low alphabetic character ratio (%.2f), possible parsing failure", ratio))
		return
	}

	res.pass()
}

func (g *InputGuardrail) checkSections(doc document.Document, res *Result) {
	seen := make(map[string]bool, len(doc.Sections))
	dup := false
	for _, s := range doc.Sections {
		if seen[s.Label] {
			dup = true
		}
		seen[s.Label] = true
	}
	if len(doc.Sections) == 0 {
		res.warn("no sections identified; document structure may be unclear")
	}
	if dup {
		res.warn("duplicate section labels detected")
	}
	res.pass()
}

func (g *InputGuardrail) checkFileIntegrity(filePath string, res *Result) {
	ext := strings.ToLower(filepath.Ext(filePath))
	if _, err := os.Stat(filePath); err != nil {
		res.fail(CategoryFile, fmt.Sprintf("file not accessible: %s", filePath))
		return
	}
	ok := false
	for _, allowed := range g.limits.allowed() {
		if ext == allowed {
			ok = true
			break
		}
	}
	if !ok {
		res.fail(CategoryFile, fmt.Sprintf("invalid file extension %q, allowed: %s", ext, strings.Join(g.limits.allowed(), ", ")))
		return
	}
	if ext == ".jpg" || ext == ".jpeg" || ext == ".png" {
		f, err := os.Open(filePath)
		if err != nil {
			res.fail(CategoryFile, fmt.Sprintf("cannot open image: %v", err))
			return
		}
		defer f.Close()
		if _, _, err := image.DecodeConfig(f); err != nil {
			res.fail(CategoryFile, fmt.Sprintf("cannot decode image %s: %v", filepath.Base(filePath), err))
			return
		}
	}
	res.pass()
}

func (g *InputGuardrail) checkFileSize(filePath string, res *Result) {
	info, err := os.Stat(filePath)
	if err != nil {
		res.warn(fmt.Sprintf("could not check file size: %v", err))
		res.pass()
		return
	}
	sizeMB := float64(info.Size()) / (1024 * 1024)
	if sizeMB > g.limits.MaxFileSizeMB {
		res.fail(CategoryFile, fmt.Sprintf("file too large (%.2fMB, maximum %.2fMB)", sizeMB, g.limits.MaxFileSizeMB))
		return
	}
	res.pass()
}

func (g *InputGuardrail) checkSensitiveData(doc document.Document, res *Result) {
	found := make([]string, 0, len(sensitiveRules))
	for _, rule := range sensitiveRules {
		if rule.re.MatchString(doc.RawText) {
			found = append(found, rule.name)
		}
	}
	if len(found) > 0 {
		res.warn(fmt.Sprintf("sensitive data detected (%s); ensure proper handling", strings.Join(found, ", ")))
	}
	res.pass()
}

func (g *InputGuardrail) checkSafety(doc document.Document, res *Result) {
	for _, rule := range safetyRules {
		if rule.re.MatchString(doc.RawText) {
			res.fail(CategorySafety, fmt.Sprintf("content safety violation: %s", rule.message))
			return
		}
	}
	res.pass()
}
