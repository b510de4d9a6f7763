// Package post defines the post generator's domain: request and result
// types, the tone and platform catalog, prompt rendering and the lenient
// parser for model output.
//
// The catalog is YAML embedded in the binary and may be replaced at
// startup. Prompts are text/template documents rendered with the tone and
// platform descriptions, so retuning the copy never needs a rebuild.
package post
