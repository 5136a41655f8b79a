// Package slides wraps the Google Slides API: presentations, slides, page
// elements and their styles, speaker notes and backgrounds.
//
// Positions and sizes are in points. Object ids for created slides and
// elements come from NewObjectID.
package slides
