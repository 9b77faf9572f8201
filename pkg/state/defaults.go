// defaults.go - Documented defaults for every state field.
package state

// Font families of the catalog used by the defaults.
const (
	FontAnton      = "Anton"
	FontBebas      = "Bebas Neue"
	FontMontserrat = "Montserrat"
	FontInter      = "Inter"
	FontPlayfair   = "Playfair Display"
)

const (
	defaultAccent = "#FFD400"
	defaultWhite  = "#FFFFFF"
	defaultDark   = "#111111"
)

// Default returns a fully populated state. Decoding JSON onto it keeps the
// default of every absent field.
func Default() *State {
	return &State{
		Post: Post{
			Template: TemplateStyle,
			Style:    defaultStyle(),
			T2:       defaultT2(),
			T3:       defaultT3(),
			T4:       defaultT4(),
			T5:       defaultT5(),
			T6:       defaultT6(),
		},
		Highlight: defaultHighlight(),
	}
}

func defaultImage() Image {
	return Image{PosX: 50, PosY: 50, Scale: 100, Opacity: 100}
}

func defaultHeadline(font string, size float64) Headline {
	return Headline{
		Text:          "YOUR [HEADLINE] GOES HERE",
		Font:          font,
		Size:          size,
		Color:         defaultWhite,
		BracketColor:  defaultAccent,
		BracketAccent: true,
		BraceColor:    "#FF4D4D",
		BraceAccent:   true,
		LineHeight:    1.05,
		Align:         "left",
		Shadow:        true,
		MaxWidth:      100,
	}
}

func defaultText(text string, size float64) Text {
	return Text{
		Show:  true,
		Text:  text,
		Font:  FontInter,
		Size:  size,
		Color: "#E6E6E6",
	}
}

func defaultBadge(text string) Badge {
	return Badge{
		Show:    true,
		Text:    text,
		Font:    FontMontserrat,
		Size:    26,
		Color:   defaultDark,
		BgColor: defaultAccent,
		PadX:    22,
		PadY:    10,
		Radius:  999,
	}
}

func defaultDots() Dots {
	return Dots{Show: true, Count: 5, Active: 0, Color: defaultWhite, Bottom: 40}
}

func defaultWatermark() Watermark {
	return Watermark{Width: 160, PosX: 92, PosY: 6, Opacity: 80}
}

func defaultStyle() Style {
	swipe := defaultText("SWIPE →", 24)
	swipe.LetterSpacing = 3
	swipe.Uppercase = true
	return Style{
		BgColor: defaultDark,
		Image:   defaultImage(),
		Gradient: Gradient{
			Show:  true,
			Start: 40,
			End:   100,
			Stops: []GradientStop{{Pos: 0, Color: "#00000000"}, {Pos: 100, Color: "#000000E6"}},
		},
		Brand:     defaultBadge("BRAND"),
		Headline:  defaultHeadline(FontAnton, 96),
		Caption:   defaultText("A short caption that supports the headline.", 32),
		Swipe:     swipe,
		Padding:   64,
		Bottom:    110,
		Gap:       24,
		Dots:      defaultDots(),
		Watermark: defaultWatermark(),
	}
}

func defaultT2() T2 {
	h := defaultHeadline(FontBebas, 92)
	h.Align = "center"
	h.Shadow = false
	caption := defaultText("A short caption that supports the headline.", 30)
	brand := defaultText("@brand", 26)
	brand.Color = defaultAccent
	return T2{
		Split:      55,
		Image:      defaultImage(),
		PanelColor: defaultDark,
		AccentBar:  Bar{Show: true, Color: defaultAccent, Width: 120, Height: 8},
		Headline:   h,
		Caption:    caption,
		Brand:      brand,
		Padding:    64,
		Gap:        24,
		Dots:       defaultDots(),
		Watermark:  defaultWatermark(),
	}
}

func defaultT3() T3 {
	h := defaultHeadline(FontMontserrat, 80)
	h.Align = "center"
	backdrop := defaultImage()
	backdrop.Opacity = 35
	return T3{
		BgColor:   "#0B0B0F",
		Backdrop:  backdrop,
		Overlay:   Overlay{Show: true, Color: "#000000", Opacity: 40},
		Inset:     defaultImage(),
		InsetSize: 560,
		InsetY:    36,
		Glow:      Glow{Show: true, Color: defaultAccent, Blur: 60, Layers: 3, Opacity: 70},
		Ring:      Ring{Show: true, Color: defaultAccent, Width: 10},
		Headline:  h,
		Caption:   defaultText("A short caption that supports the headline.", 30),
		Padding:   72,
		Gap:       24,
		Dots:      defaultDots(),
		Watermark: defaultWatermark(),
	}
}

func defaultT4() T4 {
	source := defaultText("Source: Newsroom", 26)
	source.Color = "#BBBBBB"
	return T4{
		BgColor: defaultDark,
		Image:   defaultImage(),
		Gradient: Gradient{
			Show:  true,
			Start: 0,
			End:   100,
			Stops: []GradientStop{
				{Pos: 0, Color: "#00000000"},
				{Pos: 45, Color: "#00000033"},
				{Pos: 75, Color: "#000000B3"},
				{Pos: 100, Color: "#000000F2"},
			},
		},
		Category:  defaultBadge("BREAKING"),
		Headline:  defaultHeadline(FontAnton, 88),
		Source:    source,
		Padding:   64,
		Bottom:    110,
		Gap:       22,
		Dots:      defaultDots(),
		Watermark: defaultWatermark(),
	}
}

func defaultT5() T5 {
	h := defaultHeadline(FontBebas, 84)
	h.Color = defaultDark
	h.BracketColor = "#E63946"
	h.Shadow = false
	caption := defaultText("A short caption that supports the headline.", 30)
	caption.Color = "#333333"
	dots := defaultDots()
	dots.Color = defaultDark
	return T5{
		BgColor:   "#F4F1EA",
		Headline:  h,
		Image:     defaultImage(),
		Frame:     Ring{Show: true, Color: defaultDark, Width: 6},
		Radius:    24,
		Caption:   caption,
		Padding:   64,
		Gap:       32,
		Dots:      dots,
		Watermark: defaultWatermark(),
	}
}

func defaultT6() T6 {
	h := defaultHeadline(FontPlayfair, 72)
	h.Text = "THE BEST WAY TO PREDICT THE [FUTURE] IS TO CREATE IT"
	h.Align = "center"
	h.LineHeight = 1.2
	h.LetterSpacing = 2
	h.Shadow = false
	h.MaxWidth = 90
	quote := defaultText("“", 220)
	quote.Font = FontPlayfair
	quote.Color = defaultAccent
	author := defaultText("Peter Drucker", 30)
	author.Uppercase = true
	author.LetterSpacing = 4
	image := defaultImage()
	image.Opacity = 25
	return T6{
		BgColor:   "#121212",
		Image:     image,
		Overlay:   Overlay{Show: false, Color: "#000000", Opacity: 30},
		Quote:     quote,
		Headline:  h,
		Author:    author,
		Brand:     defaultBadge("BRAND"),
		Padding:   96,
		Gap:       36,
		Dots:      defaultDots(),
		Watermark: defaultWatermark(),
	}
}

func defaultHighlight() Highlight {
	return Highlight{
		BgColor:   defaultDark,
		RingColor: defaultAccent,
		RingWidth: 36,
		IconSize:  50,
		IconColor: defaultWhite,
	}
}
