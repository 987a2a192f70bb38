package guardrail

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Asif-hussain/autonomous-contract-comparison-agents/internal/document"
)

const validContractText = `SERVICE AGREEMENT

SECTION 2.0 - PAYMENT TERMS
2.1 Payment Schedule: Client shall pay Vendor within thirty days of receiving each invoice issued under this Agreement.
2.2 Payment Method: All payments shall be made via wire transfer to the designated account.

SECTION 4.0 - CONFIDENTIALITY
4.2 Duration: Confidentiality obligations shall survive for two years after termination of this Agreement.`

func validDoc(t *testing.T) document.Document {
	t.Helper()
	return document.Normalize(validContractText, "contract.jpg")
}

func writeTinyPNG(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "contract.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, 1, 1))))
	return path
}

func TestValidateInputAcceptsCleanDocument(t *testing.T) {
	t.Parallel()

	g := NewInputGuardrail(DefaultInputLimits())
	res := g.ValidateInput(validDoc(t), "")

	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
	assert.Equal(t, res.TotalChecks, res.ChecksPassed)
}

func TestValidateInputRejectsShortText(t *testing.T) {
	t.Parallel()

	g := NewInputGuardrail(DefaultInputLimits())
	res := g.ValidateInput(document.Normalize("too short", "a.jpg"), "")

	require.False(t, res.Valid)
	assert.Contains(t, res.Errors[0], "text too short")
}

func TestValidateInputRejectsLongText(t *testing.T) {
	t.Parallel()

	limits := DefaultInputLimits()
	limits.MaxTextLength = 100
	g := NewInputGuardrail(limits)
	res := g.ValidateInput(document.Normalize(validContractText, "a.jpg"), "")

	require.False(t, res.Valid)
	assert.Contains(t, res.Errors[0], "text too long")
}

// Appending more valid words to a passing document must not fail any check
// other than the upper length bound.
func TestQualityChecksAreMonotonic(t *testing.T) {
	t.Parallel()

	g := NewInputGuardrail(DefaultInputLimits())
	base := validDoc(t)
	require.True(t, g.ValidateInput(base, "").Valid)

	superset := document.Normalize(validContractText+"\nAdditional ordinary contract language about obligations and remedies.", "a.jpg")
	res := g.ValidateInput(superset, "")
	assert.True(t, res.Valid, "superset of a valid document failed: %v", res.Errors)
}

func TestValidateInputQualityGibberish(t *testing.T) {
	t.Parallel()

	g := NewInputGuardrail(DefaultInputLimits())
	res := g.ValidateInput(document.Normalize(strings.Repeat("0101 9458 1238 ", 20), "a.jpg"), "")

	require.False(t, res.Valid)
}

func TestValidateInputSafetyBlocks(t *testing.T) {
	t.Parallel()

	g := NewInputGuardrail(DefaultInputLimits())
	res := g.ValidateInput(document.Normalize(validContractText+"\n<script>alert(1)</script>", "a.jpg"), "")

	require.False(t, res.Valid)
	found := false
	for _, e := range res.Errors {
		if strings.Contains(e, "safety") {
			found = true
		}
	}
	assert.True(t, found, "expected a safety error, got %v", res.Errors)
}

func TestValidateInputSensitiveDataWarnsOnly(t *testing.T) {
	t.Parallel()

	g := NewInputGuardrail(DefaultInputLimits())
	res := g.ValidateInput(document.Normalize(validContractText+"\nContact: billing@vendor.example.com or 555-123-4567.", "a.jpg"), "")

	assert.True(t, res.Valid, "sensitive data must never block: %v", res.Errors)
	assert.NotEmpty(t, res.Warnings)
}

func TestValidateInputFileChecks(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	g := NewInputGuardrail(DefaultInputLimits())
	doc := validDoc(t)

	t.Run("valid png", func(t *testing.T) {
		res := g.ValidateInput(doc, writeTinyPNG(t, dir))
		assert.True(t, res.Valid, "errors: %v", res.Errors)
	})

	t.Run("disallowed extension", func(t *testing.T) {
		path := filepath.Join(dir, "contract.docx")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
		res := g.ValidateInput(doc, path)
		require.False(t, res.Valid)
		assert.Contains(t, strings.Join(res.Errors, " "), "invalid file extension")
	})

	t.Run("corrupt image", func(t *testing.T) {
		path := filepath.Join(dir, "broken.jpg")
		require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o644))
		res := g.ValidateInput(doc, path)
		require.False(t, res.Valid)
	})

	t.Run("missing file", func(t *testing.T) {
		res := g.ValidateInput(doc, filepath.Join(dir, "absent.pdf"))
		require.False(t, res.Valid)
	})

	t.Run("oversized file", func(t *testing.T) {
		limits := DefaultInputLimits()
		limits.MaxFileSizeMB = 0.00001
		res := NewInputGuardrail(limits).ValidateInput(doc, writeTinyPNG(t, t.TempDir()))
		require.False(t, res.Valid)
		assert.Contains(t, strings.Join(res.Errors, " "), "file too large")
	})
}
