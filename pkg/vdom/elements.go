package vdom

import (
	"fmt"
	"strconv"
)

// fragmentKind is the type of FragmentKind.
type fragmentKind struct{}

// FragmentKind is passed to CreateElement to build a fragment.
var FragmentKind = fragmentKind{}

// CreateElement builds a VNode. kind is a tag name, a Component (or a plain
// function with the Component signature), or FragmentKind. Children may be
// VNodes, slices of them, nested []any lists, or primitive values, which are
// normalized into text nodes. Nil children are dropped.
func CreateElement(kind any, props Props, children ...any) *VNode {
	node := &VNode{Props: make(Props, len(props))}
	for k, v := range props {
		if k == "key" {
			node.Key = fmt.Sprint(v)
			continue
		}
		node.Props[k] = v
	}

	switch k := kind.(type) {
	case string:
		node.Kind = KindElement
		node.Tag = k
	case Component:
		node.Kind = KindComponent
		node.Comp = k
	case func(Scope, Props) *VNode:
		node.Kind = KindComponent
		node.Comp = k
	case fragmentKind:
		node.Kind = KindFragment
	default:
		panic(fmt.Sprintf("vdom: unsupported element kind %T", kind))
	}

	node.Children = appendChildren(make([]*VNode, 0, len(children)), children)
	return node
}

// appendChildren flattens and normalizes child arguments.
func appendChildren(dst []*VNode, children []any) []*VNode {
	for _, child := range children {
		switch v := child.(type) {
		case nil:
			continue
		case *VNode:
			if v != nil {
				dst = append(dst, v)
			}
		case []*VNode:
			for _, c := range v {
				if c != nil {
					dst = append(dst, c)
				}
			}
		case []any:
			dst = appendChildren(dst, v)
		default:
			if s, ok := primitiveText(v); ok {
				dst = append(dst, Text(s))
			}
		}
	}
	return dst
}

// primitiveText converts a primitive child into text content.
func primitiveText(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case fmt.Stringer:
		return val.String(), true
	case bool:
		return strconv.FormatBool(val), true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case int32:
		return strconv.FormatInt(int64(val), 10), true
	case uint:
		return strconv.FormatUint(uint64(val), 10), true
	case uint64:
		return strconv.FormatUint(val, 10), true
	case uint32:
		return strconv.FormatUint(uint64(val), 10), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32), true
	default:
		return "", false
	}
}

// createElement creates a new element VNode from helper arguments.
// Arguments can be: nil, Attr, []Attr, EventHandler, Props, or anything
// CreateElement accepts as a child.
func createElement(tag string, args []any) *VNode {
	node := &VNode{
		Kind:     KindElement,
		Tag:      tag,
		Props:    make(Props),
		Children: make([]*VNode, 0),
	}

	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			// Ignore nil (allows conditional attributes)
			continue

		case Attr:
			node.setAttr(v)

		case []Attr:
			for _, a := range v {
				node.setAttr(a)
			}

		case EventHandler:
			node.Props[v.Event] = v.Handler

		case Props:
			for k, val := range v {
				node.setAttr(Attr{Key: k, Value: val})
			}

		default:
			node.Children = appendChildren(node.Children, []any{arg})
		}
	}

	return node
}

func (v *VNode) setAttr(a Attr) {
	if a.Key == "" {
		return
	}
	if a.Key == "key" {
		v.Key = fmt.Sprint(a.Value)
		return
	}
	v.Props[a.Key] = a.Value
}

// El creates an element with a custom tag name.
func El(tag string, args ...any) *VNode {
	return createElement(tag, args)
}

// Content sectioning elements

func Header(args ...any) *VNode  { return createElement("header", args) }
func Footer(args ...any) *VNode  { return createElement("footer", args) }
func Main(args ...any) *VNode    { return createElement("main", args) }
func Nav(args ...any) *VNode     { return createElement("nav", args) }
func Section(args ...any) *VNode { return createElement("section", args) }
func Article(args ...any) *VNode { return createElement("article", args) }
func H1(args ...any) *VNode      { return createElement("h1", args) }
func H2(args ...any) *VNode      { return createElement("h2", args) }
func H3(args ...any) *VNode      { return createElement("h3", args) }

// Text content elements

func Div(args ...any) *VNode  { return createElement("div", args) }
func P(args ...any) *VNode    { return createElement("p", args) }
func Span(args ...any) *VNode { return createElement("span", args) }
func Pre(args ...any) *VNode  { return createElement("pre", args) }
func Ul(args ...any) *VNode   { return createElement("ul", args) }
func Ol(args ...any) *VNode   { return createElement("ol", args) }
func Li(args ...any) *VNode   { return createElement("li", args) }
func Hr(args ...any) *VNode   { return createElement("hr", args) }

// Inline text semantics

func A(args ...any) *VNode      { return createElement("a", args) }
func Strong(args ...any) *VNode { return createElement("strong", args) }
func Em(args ...any) *VNode     { return createElement("em", args) }
func Small(args ...any) *VNode  { return createElement("small", args) }
func Code(args ...any) *VNode   { return createElement("code", args) }
func Br(args ...any) *VNode     { return createElement("br", args) }

// Form elements

func Form(args ...any) *VNode   { return createElement("form", args) }
func Input(args ...any) *VNode  { return createElement("input", args) }
func Select(args ...any) *VNode { return createElement("select", args) }
func Option(args ...any) *VNode { return createElement("option", args) }
func Button(args ...any) *VNode { return createElement("button", args) }
func Label(args ...any) *VNode  { return createElement("label", args) }

// Table elements

func Table(args ...any) *VNode { return createElement("table", args) }
func Thead(args ...any) *VNode { return createElement("thead", args) }
func Tbody(args ...any) *VNode { return createElement("tbody", args) }
func Tr(args ...any) *VNode    { return createElement("tr", args) }
func Th(args ...any) *VNode    { return createElement("th", args) }
func Td(args ...any) *VNode    { return createElement("td", args) }

// Media elements

func Img(args ...any) *VNode   { return createElement("img", args) }
func Video(args ...any) *VNode { return createElement("video", args) }
func Audio(args ...any) *VNode { return createElement("audio", args) }
