package gemini

import (
	"fmt"
	"strings"

	"github.com/matzehuels/designstudio/pkg/ai"
)

const clarifyInstruction = `You are a senior design consultant. Read the client's initial request and, if it is vague, identify the information a professional designer would need. Produce 2 or 3 multiple-choice questions that sharpen the brief.
- Questions are clear and direct.
- Options are short and point in distinct creative directions.
- Focus on visual style, audience or key elements.
- For a LOGO request, ask for the company name and offer styles (e.g. Minimalist, Vintage, Modern).
- If the request is already specific, return an empty array.
Answer with JSON that strictly follows the provided schema.`

const refineInstruction = `You are an AI art director. Refine an existing JSON design plan according to the client's adjustment request.
- Change ONLY the parts of the JSON the request is about.
- Do NOT start over; keep everything the request does not mention.
- Font changes update fontSuggestions and, where needed, fontWeight on layout elements.
- Color changes update colorPalette and the colors on layout elements.
- Background changes rewrite imagePrompt.
Answer with the modified JSON, strictly following the original schema.`

func enhanceInstruction(framing ai.Framing) string {
	return fmt.Sprintf(`You are a prompt art director for an image generation model. Rewrite the user's short prompt into a vivid, professional description covering five pillars:
1. Subject: enrich the main subject. People get emotion and clothing, objects get materials and textures, creatures get appearance and mood.
2. Environment: build a coherent setting around the subject that adds depth and tells a story.
3. Lighting and atmosphere: set the mood with specific lighting (golden dawn light, cyberpunk neon, dramatic candlelight, soft studio light).
4. Composition: use professional camera language. Requested framing: %s.
5. Style: commit to a clear visual style (photorealism, digital oil painting, vector art, cinematic teal and orange grading).
Reply with the enhanced prompt only, without any explanation.`, framing.Describe())
}

// briefInstruction assembles the art-direction system prompt for one brief.
func briefInstruction(brief string, c ai.Constraints) string {
	var spec strings.Builder
	switch {
	case c.CustomSize != nil:
		fmt.Fprintf(&spec, "\n- Custom size (critical): the final artwork is %g x %g %s. Plan the layout and the background composition for exactly this proportion.",
			c.CustomSize.Width, c.CustomSize.Height, c.CustomSize.Unit)
	case c.AspectRatio != "":
		fmt.Fprintf(&spec, "\n- Aspect ratio (critical): the artwork is %s.", c.AspectRatio)
	}
	if c.Target == ai.TargetPrint {
		dpi := c.PrintDPI
		if dpi == 0 {
			dpi = 300
		}
		fmt.Fprintf(&spec, "\n- Print optimization: the design is printed at high quality (%d DPI). The imagePrompt must ask for crisp detail, high resolution and photorealism.", dpi)
	} else {
		spec.WriteString("\n- Social media optimization: the design is shown on screens. Vibrant color and strong legibility are essential.")
	}
	if f := c.ForcedFont(); f != "" {
		fmt.Fprintf(&spec, "\n- Typography (critical): every text element uses the font family %q.", f)
	}

	var direction string
	if len(c.UserImage) > 0 {
		direction = `IMPORTANT: the client attached an image (logo or product). Build the design around it.
1. Layout: make the client's image the main element and reserve a slot for it (type "image"). Arrange the text around it.
2. Colors and fonts must harmonize with the attached image.
3. The imagePrompt creates a background that complements the client's image instead of competing with it.`
	} else {
		direction = "The client did not attach an image. The imagePrompt is the main visual of the artwork."
	}
	if strings.Contains(strings.ToLower(brief), "logo") {
		direction += "\n\nLOGO REQUEST: the imagePrompt must render the logo on a solid white (#FFFFFF) background so it can be cut out easily."
	}

	return fmt.Sprintf(`You are a master designer and brand strategist with the eye of a senior art director. Turn a simple client request into a striking, strategically effective design.

STRATEGIC PROCESS (follow strictly):

1. Decompose the brief into its semantic parts: main headline, supporting subtitle, list of services or items, call to action, and contact or social handle.

2. Typography: pair fonts for hierarchy. Headlines and subtitles use an elegant serif (e.g. 'Playfair Display', 'Merriweather'); everything else uses a clean modern sans-serif (e.g. 'Montserrat', 'Roboto', 'Poppins'). fontFamily in the JSON reflects this.

3. Color: define a harmonious colorPalette and pick ONE accent color from it. Use the accent only on the call to action.

4. Main image: write an imagePrompt for a spectacular background with professional lighting, texture and cinematic composition.

5. Composition:
   - Group related elements. Keep services together; keep the call to action and contact near the bottom.
   - Separate list items with an elegant "•".
   - Never place text over the main subject of the background; use negative space.
   - Only include contact details the client actually gave. Never invent them.
   - Elements never overlap.
   - Contrast between text and background is perfect.
   - Keep generous margins.
   - The headline and the call to action draw the most attention.

Client brief:
%q

Mandatory technical specs:%s

Creative direction:
%s

Now produce the JSON answer.`, brief, spec.String(), direction)
}
