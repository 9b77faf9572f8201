// Package render lays out a post or highlight state as an ordered list of
// layers and paints it onto a raster surface.
//
// Layout and painting are separate steps: Build produces a Plan that only
// holds geometry, colors and source references, so the same plan can drive
// the PNG exporter and a live preview.
package render

import (
	"image"

	"github.com/xob0t/poststencil/pkg/imageload"
	"github.com/xob0t/poststencil/pkg/state"
)

type planner func(e *env, p *state.Post) []Layer

var planners = map[string]planner{
	state.TemplateStyle: func(e *env, p *state.Post) []Layer { return planStyle(e, p.Style) },
	state.TemplateT2:    func(e *env, p *state.Post) []Layer { return planT2(e, p.T2) },
	state.TemplateT3:    func(e *env, p *state.Post) []Layer { return planT3(e, p.T3) },
	state.TemplateT4:    func(e *env, p *state.Post) []Layer { return planT4(e, p.T4) },
	state.TemplateT5:    func(e *env, p *state.Post) []Layer { return planT5(e, p.T5) },
	state.TemplateT6:    func(e *env, p *state.Post) []Layer { return planT6(e, p.T6) },
}

// ActiveTemplate returns the template Build will use for st, falling back to
// the first template for unknown names.
func ActiveTemplate(st *state.State) string {
	if _, ok := planners[st.Post.Template]; ok {
		return st.Post.Template
	}
	return state.Templates[0]
}

// Build lays out st for mode. Images missing from the cache are omitted;
// faces are used for measurement only.
func Build(st *state.State, mode state.Mode, images imageload.Cache, faces FaceSource) *Plan {
	w, h := mode.Size()
	e := &env{w: float64(w), h: float64(h), images: images, faces: faces}
	p := &Plan{Mode: mode, Width: w, Height: h}
	if mode == state.ModeHighlight {
		p.Layers = planHighlight(e, st.Highlight)
		return p
	}
	p.Template = ActiveTemplate(st)
	p.Layers = planners[p.Template](e, &st.Post)
	return p
}

// Render builds and paints st in one step.
func Render(st *state.State, mode state.Mode, images imageload.Cache, faces FaceSource) *image.RGBA {
	return Paint(Build(st, mode, images, faces), images, faces)
}
