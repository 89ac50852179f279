package msbuild

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/poppolopoppo/icebuilder/internal/base"
	internal_io "github.com/poppolopoppo/icebuilder/internal/io"

	//lint:ignore ST1001 ignore dot imports warning
	. "github.com/poppolopoppo/icebuilder/utils"
)

var LogMsBuild = base.NewLogCategory("MsBuild")

const MSBUILD_NAMESPACE = "http://schemas.microsoft.com/developer/msbuild/2003"

/***************************************
 * Element: ordered XML tree, attributes and comments are preserved
 ***************************************/

type Element struct {
	Name     string
	Attrs    []internal_io.XmlAttr
	Text     string
	Comment  string
	Children []*Element
}

func NewElement(name string, attrs ...internal_io.XmlAttr) *Element {
	return &Element{Name: name, Attrs: attrs}
}

func (x *Element) IsComment() bool { return len(x.Name) == 0 }

func (x *Element) Attr(name string) (string, bool) {
	for _, it := range x.Attrs {
		if it.Name == name {
			return it.Value, true
		}
	}
	return "", false
}
func (x *Element) AttrOrEmpty(name string) string {
	value, _ := x.Attr(name)
	return value
}
func (x *Element) SetAttr(name, value string) {
	for i, it := range x.Attrs {
		if it.Name == name {
			x.Attrs[i].Value = value
			return
		}
	}
	x.Attrs = append(x.Attrs, internal_io.XmlAttr{Name: name, Value: value})
}
func (x *Element) RemoveAttr(name string) bool {
	for i, it := range x.Attrs {
		if it.Name == name {
			x.Attrs = base.Delete(x.Attrs, i)
			return true
		}
	}
	return false
}

// Child returns the first child element with this name.
func (x *Element) Child(name string) *Element {
	for _, it := range x.Children {
		if it.Name == name {
			return it
		}
	}
	return nil
}
func (x *Element) ChildrenNamed(name string) (result []*Element) {
	for _, it := range x.Children {
		if it.Name == name {
			result = append(result, it)
		}
	}
	return
}
func (x *Element) Elements() (result []*Element) {
	for _, it := range x.Children {
		if !it.IsComment() {
			result = append(result, it)
		}
	}
	return
}

func (x *Element) AddChild(child *Element) *Element {
	x.Children = append(x.Children, child)
	return child
}
func (x *Element) InsertChild(index int, child *Element) *Element {
	x.Children = append(x.Children, nil)
	copy(x.Children[index+1:], x.Children[index:])
	x.Children[index] = child
	return child
}
func (x *Element) IndexOf(child *Element) (int, bool) {
	for i, it := range x.Children {
		if it == child {
			return i, true
		}
	}
	return -1, false
}
func (x *Element) RemoveChild(child *Element) bool {
	if i, ok := x.IndexOf(child); ok {
		x.Children = base.Delete(x.Children, i)
		return true
	}
	return false
}

// SetChildText creates the child when missing.
func (x *Element) SetChildText(name, text string) *Element {
	child := x.Child(name)
	if child == nil {
		child = x.AddChild(NewElement(name))
	}
	child.Text = text
	return child
}
func (x *Element) ChildText(name string) (string, bool) {
	if child := x.Child(name); child != nil {
		return child.Text, true
	}
	return "", false
}

// Walk visits elements depth first, with their parent, until each returns false.
func (x *Element) Walk(each func(parent, element *Element) bool) bool {
	for _, it := range x.Elements() {
		if !each(x, it) || !it.Walk(each) {
			return false
		}
	}
	return true
}

func (x *Element) String() string {
	sb := strings.Builder{}
	x.Write(internal_io.NewXmlFile(&sb, true))
	return sb.String()
}

func (x *Element) Write(dst *internal_io.XmlFile) {
	switch {
	case x.IsComment():
		dst.Comment(x.Comment)
	case len(x.Children) > 0:
		dst.Tag(x.Name, func() {
			for _, it := range x.Children {
				it.Write(dst)
			}
		}, x.Attrs...)
	default:
		dst.Element(x.Name, x.Text, x.Attrs...)
	}
}

/***************************************
 * Document
 ***************************************/

type Document struct {
	Root *Element
}

func NewDocument(root *Element) *Document {
	return &Document{Root: root}
}

// NewProjectDocument returns an empty MSBuild project.
func NewProjectDocument(toolsVersion string) *Document {
	return NewDocument(NewElement("Project",
		internal_io.XmlAttr{Name: "ToolsVersion", Value: toolsVersion},
		internal_io.XmlAttr{Name: "xmlns", Value: MSBUILD_NAMESPACE}))
}

func (x *Document) Serialize(dst io.Writer) error {
	writer := internal_io.NewXmlFile(dst, false)
	writer.Declaration()
	x.Root.Write(writer)
	return nil
}

func (x *Document) Deserialize(src io.Reader) error {
	root, err := ParseElement(src)
	if err == nil {
		x.Root = root
	}
	return err
}

func LoadDocument(src Filename) (*Document, error) {
	doc := &Document{}
	if err := UFS.OpenBuffered(src, doc.Deserialize); err != nil {
		return nil, fmt.Errorf("msbuild: failed to parse %q: %w", src, err)
	}
	return doc, nil
}

func (x *Document) SaveTo(dst Filename) error {
	base.LogVerbose(LogMsBuild, "save %q", dst)
	return UFS.SafeCreate(dst, x.Serialize)
}

// ParseElement reads a whole XML document, namespace prefixes are kept verbatim.
func ParseElement(src io.Reader) (*Element, error) {
	decoder := xml.NewDecoder(src)
	decoder.Strict = true

	var root *Element
	var stack []*Element
	for {
		token, err := decoder.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch it := token.(type) {
		case xml.StartElement:
			element := NewElement(xmlName(it.Name))
			for _, attr := range it.Attr {
				element.Attrs = append(element.Attrs, internal_io.XmlAttr{Name: xmlName(attr.Name), Value: attr.Value})
			}
			if len(stack) > 0 {
				stack[len(stack)-1].AddChild(element)
			} else if root == nil {
				root = element
			} else {
				return nil, fmt.Errorf("multiple root elements: <%s> and <%s>", root.Name, element.Name)
			}
			stack = append(stack, element)

		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("unexpected </%s>", xmlName(it.Name))
			}
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) > 0 {
				if text := strings.TrimSpace(string(it)); len(text) > 0 {
					stack[len(stack)-1].Text += text
				}
			}

		case xml.Comment:
			if len(stack) > 0 {
				stack[len(stack)-1].AddChild(&Element{Comment: string(it)})
			}
		}
	}

	if root == nil {
		return nil, fmt.Errorf("no root element")
	}
	if len(stack) > 0 {
		return nil, fmt.Errorf("unclosed <%s>", stack[len(stack)-1].Name)
	}
	return root, nil
}

func xmlName(name xml.Name) string {
	if len(name.Space) > 0 {
		return name.Space + ":" + name.Local
	}
	return name.Local
}
