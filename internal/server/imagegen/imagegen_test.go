package imagegen

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/carshow/internal/common"
	"github.com/dmitrijs2005/carshow/internal/server/models"
)

type fakeImages struct {
	params openai.ImageGenerateParams
	resp   *openai.ImagesResponse
	err    error
}

func (f *fakeImages) Generate(_ context.Context, body openai.ImageGenerateParams, _ ...option.RequestOption) (*openai.ImagesResponse, error) {
	f.params = body
	return f.resp, f.err
}

func TestGenerate_DecodesBase64(t *testing.T) {
	fi := &fakeImages{resp: &openai.ImagesResponse{Data: []openai.Image{
		{B64JSON: base64.StdEncoding.EncodeToString([]byte("\x89PNG"))},
	}}}
	g := &OpenAIGenerator{images: fi, model: "dall-e-3"}

	img, err := g.Generate(context.Background(), "a red car")
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), img)
	assert.Equal(t, "a red car", fi.params.Prompt)
	assert.Equal(t, openai.ImageModel("dall-e-3"), fi.params.Model)
	assert.Equal(t, openai.ImageGenerateParamsResponseFormatB64JSON, fi.params.ResponseFormat)
}

func TestGenerate_GPTImageOmitsResponseFormat(t *testing.T) {
	fi := &fakeImages{resp: &openai.ImagesResponse{Data: []openai.Image{{B64JSON: "AA=="}}}}
	g := &OpenAIGenerator{images: fi, model: "gpt-image-1"}

	_, err := g.Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Empty(t, fi.params.ResponseFormat)
}

func TestGenerate_Errors(t *testing.T) {
	g := &OpenAIGenerator{images: &fakeImages{err: errors.New("quota")}, model: "dall-e-3"}
	_, err := g.Generate(context.Background(), "p")
	assert.ErrorContains(t, err, "quota")

	g = &OpenAIGenerator{images: &fakeImages{resp: &openai.ImagesResponse{}}, model: "dall-e-3"}
	_, err = g.Generate(context.Background(), "p")
	assert.ErrorContains(t, err, "empty response")

	g = &OpenAIGenerator{images: &fakeImages{resp: &openai.ImagesResponse{Data: []openai.Image{{B64JSON: "%%%"}}}}, model: "dall-e-3"}
	_, err = g.Generate(context.Background(), "p")
	assert.ErrorContains(t, err, "decode image")
}

func TestDisabledGenerator(t *testing.T) {
	_, err := DisabledGenerator{}.Generate(context.Background(), "p")
	assert.ErrorIs(t, err, common.ErrNotConfigured)
}

func TestPrompt(t *testing.T) {
	r := &models.Registration{
		VehicleYear: 1969, VehicleMake: "Chevrolet", VehicleModel: "Camaro",
		VehicleColor: "Hugger Orange", Modifications: "cowl hood",
	}
	p := Prompt(r)
	assert.Contains(t, p, "1969 Chevrolet Camaro in Hugger Orange")
	assert.Contains(t, p, "Visible modifications: cowl hood")

	p = Prompt(&models.Registration{VehicleMake: "Ford", VehicleModel: "Model A"})
	assert.NotContains(t, p, " in ")
	assert.NotContains(t, p, "modifications")
}
