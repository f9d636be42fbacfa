package service

import (
	"context"
	"strings"

	"github.com/timmy/memegen/internal/logger"
	"github.com/timmy/memegen/internal/prompts"
)

// FallbackImageCaption stands in when the image cannot be captioned.
const FallbackImageCaption = "a person in a scene"

// ImageDescriber turns a template image into a scene description.
// Both stages are best effort and never fail the caller.
type ImageDescriber struct {
	captioner ImageCaptioner
	llm       TextGenerator
}

// NewImageDescriber creates a new image describer.
func NewImageDescriber(captioner ImageCaptioner, llm TextGenerator) *ImageDescriber {
	return &ImageDescriber{captioner: captioner, llm: llm}
}

// Describe captions the image and expands the caption into a scene paragraph.
func (d *ImageDescriber) Describe(ctx context.Context, imageLocator string) string {
	log := logger.FromContext(ctx).WithField(logger.FieldComponent, "describe")

	short := FallbackImageCaption
	if d.captioner != nil {
		caption, err := d.captioner.Caption(ctx, imageLocator)
		switch {
		case err != nil:
			log.WithError(err).Warn("Image captioning failed, using fallback caption")
		case strings.TrimSpace(caption) == "":
			log.Warn("Image captioning returned nothing, using fallback caption")
		default:
			short = strings.TrimSpace(caption)
		}
	}

	scene, err := d.llm.Complete(ctx, prompts.SceneExpansion(short), SceneSampling)
	if err != nil {
		log.WithError(err).Warn("Scene expansion failed, using short caption")
		return short
	}
	scene = strings.TrimSpace(scene)
	if scene == "" {
		return short
	}
	return scene
}
