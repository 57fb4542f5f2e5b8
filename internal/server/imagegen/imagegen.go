// Package imagegen turns a registration's vehicle description into a
// generated showcase image.
package imagegen

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/dmitrijs2005/carshow/internal/common"
	"github.com/dmitrijs2005/carshow/internal/server/models"
)

// Generator returns PNG bytes for a text prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) ([]byte, error)
}

type imagesAPI interface {
	Generate(ctx context.Context, body openai.ImageGenerateParams, opts ...option.RequestOption) (*openai.ImagesResponse, error)
}

type OpenAIGenerator struct {
	images imagesAPI
	model  string
}

func NewOpenAIGenerator(apiKey, model string) *OpenAIGenerator {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIGenerator{images: &client.Images, model: model}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) ([]byte, error) {
	params := openai.ImageGenerateParams{
		Prompt: prompt,
		Model:  openai.ImageModel(g.model),
		N:      openai.Int(1),
		Size:   openai.ImageGenerateParamsSize1024x1024,
	}
	// gpt-image models always answer with base64 and reject the field.
	if !strings.HasPrefix(g.model, "gpt-image") {
		params.ResponseFormat = openai.ImageGenerateParamsResponseFormatB64JSON
	}

	resp, err := g.images.Generate(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai images: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, errors.New("openai images: empty response")
	}

	img, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// DisabledGenerator is used when no API key is configured.
type DisabledGenerator struct{}

func (DisabledGenerator) Generate(context.Context, string) ([]byte, error) {
	return nil, fmt.Errorf("image generator: %w", common.ErrNotConfigured)
}

// Prompt describes the registered vehicle for the image model.
func Prompt(r *models.Registration) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A polished studio photograph of a %s", r.VehicleName())
	if c := strings.TrimSpace(r.VehicleColor); c != "" {
		fmt.Fprintf(&b, " in %s", c)
	}
	b.WriteString(", parked on a sunny car show lawn, three-quarter front view")
	if m := strings.TrimSpace(r.Modifications); m != "" {
		fmt.Fprintf(&b, ". Visible modifications: %s", m)
	}
	b.WriteString(". No people, no text, no logos.")
	return b.String()
}
