package render

// voidElements never have children or a closing tag.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// isVoidElement reports whether tag is a void element.
func isVoidElement(tag string) bool {
	return voidElements[tag]
}

// blockless are elements whose children stay on the same line in pretty
// output.
var blockless = map[string]bool{
	"a":      true,
	"b":      true,
	"button": true,
	"code":   true,
	"em":     true,
	"i":      true,
	"label":  true,
	"li":     true,
	"option": true,
	"p":      true,
	"pre":    true,
	"small":  true,
	"span":   true,
	"strong": true,
	"td":     true,
	"th":     true,
	"title":  true,
	"h1":     true,
	"h2":     true,
	"h3":     true,
}

// isBlockless reports whether tag keeps its children inline.
func isBlockless(tag string) bool {
	return blockless[tag]
}

// booleanAttrs are written as a bare name when true and omitted when false.
var booleanAttrs = map[string]bool{
	"allowfullscreen": true,
	"async":           true,
	"autofocus":       true,
	"autoplay":        true,
	"checked":         true,
	"controls":        true,
	"default":         true,
	"defer":           true,
	"disabled":        true,
	"formnovalidate":  true,
	"hidden":          true,
	"ismap":           true,
	"itemscope":       true,
	"loop":            true,
	"multiple":        true,
	"muted":           true,
	"nomodule":        true,
	"novalidate":      true,
	"open":            true,
	"playsinline":     true,
	"readonly":        true,
	"required":        true,
	"reversed":        true,
	"selected":        true,
}

// isBooleanAttr reports whether name is a boolean attribute.
func isBooleanAttr(name string) bool {
	return booleanAttrs[name]
}
