// validator.go - Non-fatal checks on a decoded state.
package state

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/xob0t/poststencil/pkg/generator"
	"github.com/xob0t/poststencil/pkg/imageload"
	"github.com/xob0t/poststencil/pkg/textlayout"
)

// Validate returns warnings (never fatal errors) for values that will be
// repaired or rendered differently than they read. Run it on the raw
// decoded state, before Normalize, to see what normalization will change.
func Validate(st *State) []string {
	if st == nil {
		return nil
	}
	var warnings []string
	if st.Post.Template != "" && !KnownTemplate(st.Post.Template) {
		warnings = append(warnings, fmt.Sprintf("post.template %q is unknown; using %q", st.Post.Template, TemplateStyle))
	}

	walk(reflect.ValueOf(st).Elem(), "", func(path string, f reflect.StructField, v reflect.Value) {
		switch {
		case strings.HasSuffix(f.Name, "Color") && v.Kind() == reflect.String:
			if s := v.String(); s != "" && !generator.IsColor(s) {
				warnings = append(warnings, fmt.Sprintf("%s: malformed color %q", path, s))
			}
		case f.Type == reflect.TypeOf(Headline{}):
			for _, issue := range textlayout.MarkupIssues(v.FieldByName("Text").String()) {
				warnings = append(warnings, fmt.Sprintf("%s.text: %s", path, issue))
			}
		case (f.Name == "Src" || f.Name == "Icon") && v.Kind() == reflect.String:
			if imageload.Classify(v.String()) == imageload.KindInvalid {
				warnings = append(warnings, fmt.Sprintf("%s: %q is neither a URL nor a data URI; image skipped", path, abbreviate(v.String())))
			}
		}
	})
	return warnings
}

// walk visits every struct field below v, depth first, with its JSON path.
func walk(v reflect.Value, prefix string, visit func(path string, f reflect.StructField, v reflect.Value)) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" {
			name = f.Name
		}
		p := name
		if prefix != "" {
			p = prefix + "." + name
		}
		fv := v.Field(i)
		visit(p, f, fv)
		switch fv.Kind() {
		case reflect.Struct:
			walk(fv, p, visit)
		case reflect.Slice:
			for j := 0; j < fv.Len(); j++ {
				if el := fv.Index(j); el.Kind() == reflect.Struct {
					walk(el, fmt.Sprintf("%s[%d]", p, j), visit)
				}
			}
		}
	}
}

func abbreviate(s string) string {
	if len(s) > 48 {
		return s[:48] + "..."
	}
	return s
}
