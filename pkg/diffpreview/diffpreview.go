// Package diffpreview renders a [diffy.Patch] as a YAML-like view of the
// document it applies to, highlighting added, removed and modified keys.
package diffpreview

import "github.com/loog-project/diffy/pkg/diffy"

// Render renders a YAML-like diff view between a and b
func Render(a, b diffy.Value, theme Theme) string {
	return RenderWithOptions(a, b, theme, DefaultRenderOptions)
}

// RenderWithOptions renders a YAML-like diff view with custom options
func RenderWithOptions(a, b diffy.Value, theme Theme, opts RenderOptions) string {
	return RenderPatch(a, diffy.Diff(a, b), theme, opts)
}

// RenderPatch renders what [patch] does to [origin].
func RenderPatch(origin diffy.Value, patch diffy.Patch, theme Theme, opts RenderOptions) string {
	return RenderYAML(Annotate(origin, patch), theme, opts)
}
