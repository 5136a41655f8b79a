// Package slides_tools registers the Google Slides commands.
//
// Presentation commands create, inspect and delete presentations and append
// slides. Slide commands take a slide_id and change the slide itself:
// background, layout, speaker notes and the recorded transition. Element
// commands add images, shapes and lines to a slide, restyle existing
// elements by object_id and delete them.
//
// Positions and sizes are in points, with the origin at the top left corner
// of the slide. Colors are hex strings (#RRGGBB or #RGB).
//
// The Slides API cannot set page transitions. update_slide_transition
// records the transition as a "[transition: TYPE Ns]" line in the speaker
// notes instead and says so in its result.
package slides_tools
