package state

// imageFields returns pointers to every image reference in the state.
func (s *State) imageFields() []*string {
	p := &s.Post
	return []*string{
		&p.Style.Image.Src, &p.Style.Watermark.Src,
		&p.T2.Image.Src, &p.T2.Watermark.Src,
		&p.T3.Backdrop.Src, &p.T3.Inset.Src, &p.T3.Watermark.Src,
		&p.T4.Image.Src, &p.T4.Watermark.Src,
		&p.T5.Image.Src, &p.T5.Watermark.Src,
		&p.T6.Image.Src, &p.T6.Watermark.Src,
		&s.Highlight.Icon,
	}
}

// ImageRefs lists the image references the given mode draws. Hidden
// watermarks are left out.
func (s *State) ImageRefs(mode Mode) []string {
	if mode == ModeHighlight {
		return nonEmpty(s.Highlight.Icon)
	}
	p := &s.Post
	switch p.Template {
	case TemplateT2:
		return nonEmpty(p.T2.Image.Src, watermarkRef(p.T2.Watermark))
	case TemplateT3:
		return nonEmpty(p.T3.Backdrop.Src, p.T3.Inset.Src, watermarkRef(p.T3.Watermark))
	case TemplateT4:
		return nonEmpty(p.T4.Image.Src, watermarkRef(p.T4.Watermark))
	case TemplateT5:
		return nonEmpty(p.T5.Image.Src, watermarkRef(p.T5.Watermark))
	case TemplateT6:
		return nonEmpty(p.T6.Image.Src, watermarkRef(p.T6.Watermark))
	default:
		return nonEmpty(p.Style.Image.Src, watermarkRef(p.Style.Watermark))
	}
}

// Fonts lists the font families the given mode draws with.
func (s *State) Fonts(mode Mode) []string {
	if mode == ModeHighlight {
		return nil
	}
	p := &s.Post
	var fams []string
	switch p.Template {
	case TemplateT2:
		fams = []string{p.T2.Headline.Font, p.T2.Caption.Font, p.T2.Brand.Font}
	case TemplateT3:
		fams = []string{p.T3.Headline.Font, p.T3.Caption.Font}
	case TemplateT4:
		fams = []string{p.T4.Category.Font, p.T4.Headline.Font, p.T4.Source.Font}
	case TemplateT5:
		fams = []string{p.T5.Headline.Font, p.T5.Caption.Font}
	case TemplateT6:
		fams = []string{p.T6.Quote.Font, p.T6.Headline.Font, p.T6.Author.Font, p.T6.Brand.Font}
	default:
		fams = []string{p.Style.Brand.Font, p.Style.Headline.Font, p.Style.Caption.Font, p.Style.Swipe.Font}
	}
	return nonEmpty(fams...)
}

func watermarkRef(w Watermark) string {
	if !w.Show {
		return ""
	}
	return w.Src
}

// nonEmpty drops empty strings and duplicates, keeping order.
func nonEmpty(vals ...string) []string {
	out := make([]string, 0, len(vals))
	seen := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
