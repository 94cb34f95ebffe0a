package catalog

// Styles holds the visual style of a component. Every field is optional;
// a nil field means "inherit the renderer default".
type Styles struct {
	// Layout
	Display        *string  `json:"display,omitempty" yaml:"display,omitempty"`
	FlexDirection  *string  `json:"flexDirection,omitempty" yaml:"flexDirection,omitempty"`
	JustifyContent *string  `json:"justifyContent,omitempty" yaml:"justifyContent,omitempty"`
	AlignItems     *string  `json:"alignItems,omitempty" yaml:"alignItems,omitempty"`
	FlexWrap       *string  `json:"flexWrap,omitempty" yaml:"flexWrap,omitempty"`
	Gap            *float64 `json:"gap,omitempty" yaml:"gap,omitempty"`

	// Sizing
	Width     *string `json:"width,omitempty" yaml:"width,omitempty"`
	Height    *string `json:"height,omitempty" yaml:"height,omitempty"`
	MinWidth  *string `json:"minWidth,omitempty" yaml:"minWidth,omitempty"`
	MinHeight *string `json:"minHeight,omitempty" yaml:"minHeight,omitempty"`
	MaxWidth  *string `json:"maxWidth,omitempty" yaml:"maxWidth,omitempty"`
	MaxHeight *string `json:"maxHeight,omitempty" yaml:"maxHeight,omitempty"`

	// Spacing
	MarginTop     *float64 `json:"marginTop,omitempty" yaml:"marginTop,omitempty"`
	MarginRight   *float64 `json:"marginRight,omitempty" yaml:"marginRight,omitempty"`
	MarginBottom  *float64 `json:"marginBottom,omitempty" yaml:"marginBottom,omitempty"`
	MarginLeft    *float64 `json:"marginLeft,omitempty" yaml:"marginLeft,omitempty"`
	PaddingTop    *float64 `json:"paddingTop,omitempty" yaml:"paddingTop,omitempty"`
	PaddingRight  *float64 `json:"paddingRight,omitempty" yaml:"paddingRight,omitempty"`
	PaddingBottom *float64 `json:"paddingBottom,omitempty" yaml:"paddingBottom,omitempty"`
	PaddingLeft   *float64 `json:"paddingLeft,omitempty" yaml:"paddingLeft,omitempty"`

	// Border
	BorderWidth  *float64 `json:"borderWidth,omitempty" yaml:"borderWidth,omitempty"`
	BorderStyle  *string  `json:"borderStyle,omitempty" yaml:"borderStyle,omitempty"`
	BorderColor  *string  `json:"borderColor,omitempty" yaml:"borderColor,omitempty"`
	BorderRadius *float64 `json:"borderRadius,omitempty" yaml:"borderRadius,omitempty"`

	// Background
	BackgroundColor *string `json:"backgroundColor,omitempty" yaml:"backgroundColor,omitempty"`
	BackgroundImage *string `json:"backgroundImage,omitempty" yaml:"backgroundImage,omitempty"`

	// Typography
	FontSize   *float64 `json:"fontSize,omitempty" yaml:"fontSize,omitempty"`
	FontWeight *string  `json:"fontWeight,omitempty" yaml:"fontWeight,omitempty"`
	Color      *string  `json:"color,omitempty" yaml:"color,omitempty"`
	TextAlign  *string  `json:"textAlign,omitempty" yaml:"textAlign,omitempty"`
	LineHeight *float64 `json:"lineHeight,omitempty" yaml:"lineHeight,omitempty"`

	// Other
	Opacity   *float64 `json:"opacity,omitempty" yaml:"opacity,omitempty"`
	BoxShadow *string  `json:"boxShadow,omitempty" yaml:"boxShadow,omitempty"`
	Overflow  *string  `json:"overflow,omitempty" yaml:"overflow,omitempty"`
}

// Merge returns a copy of s with every field set in patch applied on top.
func (s Styles) Merge(patch Styles) Styles {
	var out Styles
	overlay(&out, s)
	overlay(&out, patch)
	return out
}

// Clone returns a copy of s that shares no pointers with it.
func (s Styles) Clone() Styles {
	var out Styles
	overlay(&out, s)
	return out
}

// IsZero reports whether no style field is set.
func (s Styles) IsZero() bool {
	return s == Styles{}
}

func overlay(dst *Styles, src Styles) {
	mergeStr(&dst.Display, src.Display)
	mergeStr(&dst.FlexDirection, src.FlexDirection)
	mergeStr(&dst.JustifyContent, src.JustifyContent)
	mergeStr(&dst.AlignItems, src.AlignItems)
	mergeStr(&dst.FlexWrap, src.FlexWrap)
	mergeNum(&dst.Gap, src.Gap)

	mergeStr(&dst.Width, src.Width)
	mergeStr(&dst.Height, src.Height)
	mergeStr(&dst.MinWidth, src.MinWidth)
	mergeStr(&dst.MinHeight, src.MinHeight)
	mergeStr(&dst.MaxWidth, src.MaxWidth)
	mergeStr(&dst.MaxHeight, src.MaxHeight)

	mergeNum(&dst.MarginTop, src.MarginTop)
	mergeNum(&dst.MarginRight, src.MarginRight)
	mergeNum(&dst.MarginBottom, src.MarginBottom)
	mergeNum(&dst.MarginLeft, src.MarginLeft)
	mergeNum(&dst.PaddingTop, src.PaddingTop)
	mergeNum(&dst.PaddingRight, src.PaddingRight)
	mergeNum(&dst.PaddingBottom, src.PaddingBottom)
	mergeNum(&dst.PaddingLeft, src.PaddingLeft)

	mergeNum(&dst.BorderWidth, src.BorderWidth)
	mergeStr(&dst.BorderStyle, src.BorderStyle)
	mergeStr(&dst.BorderColor, src.BorderColor)
	mergeNum(&dst.BorderRadius, src.BorderRadius)

	mergeStr(&dst.BackgroundColor, src.BackgroundColor)
	mergeStr(&dst.BackgroundImage, src.BackgroundImage)

	mergeNum(&dst.FontSize, src.FontSize)
	mergeStr(&dst.FontWeight, src.FontWeight)
	mergeStr(&dst.Color, src.Color)
	mergeStr(&dst.TextAlign, src.TextAlign)
	mergeNum(&dst.LineHeight, src.LineHeight)

	mergeNum(&dst.Opacity, src.Opacity)
	mergeStr(&dst.BoxShadow, src.BoxShadow)
	mergeStr(&dst.Overflow, src.Overflow)
}

func mergeStr(dst **string, v *string) {
	if v != nil {
		s := *v
		*dst = &s
	}
}

func mergeNum(dst **float64, v *float64) {
	if v != nil {
		n := *v
		*dst = &n
	}
}

// String returns a pointer to v.
func String(v string) *string { return &v }

// Number returns a pointer to v.
func Number(v float64) *float64 { return &v }
