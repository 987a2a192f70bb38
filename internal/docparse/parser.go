// Package docparse converts scanned contract files (images, PDFs) into raw
// text. The pipeline treats it as an opaque collaborator; VisionParser is the
// Gemini-vision backed implementation.
package docparse

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// Parser extracts text from one document file.
type Parser interface {
	Parse(ctx context.Context, filePath string) (string, error)
}

var mimeByExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".pdf":  "application/pdf",
}

// visionPrompt instructs the model to extract faithful text, preserving
// section headers and hierarchy, without summarizing.
const visionPrompt = `Extract all text from this contract document exactly as written.

Requirements:
- Maintain all section headers (e.g., "Section 1.0", "Article III", "Clause 2.1", "Exhibit A")
- Keep subsection hierarchy intact (e.g., 1.1, 1.1.1, 1.1.2)
- Preserve the document order: title, preamble, then every section in sequence
- Do not summarize, interpret, or omit any text
- Mark completely illegible passages as [ILLEGIBLE]

Return only the extracted text.`

// VisionParser parses scanned documents with a vision-capable Gemini model.
type VisionParser struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// VisionConfig configures the vision parser.
type VisionConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// NewVisionParser creates a Gemini-vision document parser.
func NewVisionParser(ctx context.Context, cfg VisionConfig) (*VisionParser, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("docparse: API key not configured")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 180 * time.Second
	}
	return &VisionParser{client: client, model: model, timeout: timeout}, nil
}

// Parse reads the file and asks the vision model for a faithful transcription.
func (p *VisionParser) Parse(ctx context.Context, filePath string) (string, error) {
	mime, ok := mimeByExt[strings.ToLower(filepath.Ext(filePath))]
	if !ok {
		return "", fmt.Errorf("docparse: unsupported file type %q", filepath.Ext(filePath))
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(visionPrompt),
			genai.NewPartFromBytes(data, mime),
		}, genai.RoleUser),
	}

	started := time.Now()
	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0),
	})
	if err != nil {
		return "", fmt.Errorf("vision parse %s: %w", filepath.Base(filePath), err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("vision parse %s: empty transcription", filepath.Base(filePath))
	}
	log.Debug().
		Str("file", filepath.Base(filePath)).
		Int("chars", len(text)).
		Dur("duration", time.Since(started)).
		Msg("docparse: document transcribed")
	return text, nil
}
