package narrator

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/google/generative-ai-go/genai"
	"github.com/tatianab/campus-day/internal/content"
	"github.com/tatianab/campus-day/internal/models"
	"google.golang.org/api/option"
)

//go:embed prompts/recap.txt
var recapPrompt string

var recapTemplate = template.Must(template.New("recap").Parse(recapPrompt))

// Gemini asks a Gemini model to narrate the recap.
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
	tables *content.Tables
}

func NewGemini(ctx context.Context, apiKey, modelName string, tables *content.Tables) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}
	return &Gemini{
		client: client,
		model:  client.GenerativeModel(modelName),
		tables: tables,
	}, nil
}

func (g *Gemini) Close() error {
	return g.client.Close()
}

func (g *Gemini) Recap(ctx context.Context, s *models.GameState) (string, error) {
	prompt, err := renderRecapPrompt(g.tables, s)
	if err != nil {
		return "", err
	}

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content returned from Gemini")
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response type from Gemini")
	}
	return strings.TrimSpace(string(text)), nil
}

func renderRecapPrompt(tables *content.Tables, s *models.GameState) (string, error) {
	var buf bytes.Buffer
	if err := recapTemplate.Execute(&buf, newRecapData(tables, s)); err != nil {
		return "", err
	}
	return buf.String(), nil
}
