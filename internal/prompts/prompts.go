package prompts

import "fmt"

// ============================================================================
// Caption generation
// ============================================================================

// captionTemplate asks for exactly two labeled lines. The example block is
// echoed back by weaker models, which is why extraction takes the last match.
const captionTemplate = `You are a witty meme creator. %s.

Image description: "%s"
Template name: '%s'

Write ONE funny meme about '%s' using this image and template.

RULES:
- Only return exactly TWO lines.
- First line MUST start with: Top text:
- Second line MUST start with: Bottom text:
- No explanations, no code, no HTML, no hashtags.
- No quotes around the sentences.
- Do NOT copy the example.

EXAMPLE (don't copy!):
Top text: When Monday hits too hard
Bottom text: And coffee hasn't kicked in yet

Now write your own meme in that exact format.`

// Caption builds the caption-generation prompt.
func Caption(styleHint, scene, templateName, keyword string) string {
	return fmt.Sprintf(captionTemplate, styleHint, scene, templateName, keyword)
}

// ============================================================================
// Scene description
// ============================================================================

// ImageCaptionSystemPrompt keeps the vision model to a short literal caption.
const ImageCaptionSystemPrompt = `You are an image captioning model. Describe only what is visible.`

// ImageCaptionUserPrompt asks for one short literal sentence.
const ImageCaptionUserPrompt = `Write one short, literal caption for this image. No interpretation, no jokes, at most 20 words.`

const sceneExpansionTemplate = `Short image caption: "%s"

Rewrite this into a **detailed scene description** for someone who cannot see the image.

STRICT RULES:
- DO NOT mention memes or say "this is a meme".
- DO NOT write code, DO NOT include functions, DO NOT import anything.
- Only describe what is visually present.
- Mention if there are panels (left side vs right side).
- Describe what each person or animal is doing.
- Include facial expressions and emotions (angry, confused, smug, etc.).
- Mention animals, objects, and their positions.
- Only return one clean paragraph in plain English.

ONLY return the scene description. NOTHING else.`

// SceneExpansion builds the prompt that turns a short caption into a scene description.
func SceneExpansion(shortCaption string) string {
	return fmt.Sprintf(sceneExpansionTemplate, shortCaption)
}

// ============================================================================
// Humor scoring
// ============================================================================

const humorScoreTemplate = `You wrote these meme lines:

Top text: "%s"
Bottom text: "%s"

How funny and fitting are these two lines together as a meme, on a scale from 1 (not funny at all) to 10 (extremely funny)?
Only reply with the number score.`

// HumorScore builds the scoring prompt for a caption pair.
func HumorScore(top, bottom string) string {
	return fmt.Sprintf(humorScoreTemplate, top, bottom)
}
