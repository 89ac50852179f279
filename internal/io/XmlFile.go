package io

import (
	"fmt"
	"io"
	"strings"

	"github.com/poppolopoppo/icebuilder/internal/base"
)

const XML_DECLARATION = `<?xml version="1.0" encoding="utf-8"?>`

var (
	xmlAttrEscaper = strings.NewReplacer(`&`, "&amp;", `<`, "&lt;", `>`, "&gt;", `"`, "&quot;")
	xmlTextEscaper = strings.NewReplacer(`&`, "&amp;", `<`, "&lt;", `>`, "&gt;")
)

type XmlAttr struct {
	Name  string
	Value string
}

func (x XmlAttr) String() string {
	return fmt.Sprint(x.Name, "=\"", xmlAttrEscaper.Replace(x.Value), "\"")
}

func EscapeXmlText(text string) string {
	return xmlTextEscaper.Replace(text)
}

type XmlFile struct {
	*base.StructuredFile
}

func NewXmlFile(dst io.Writer, minify bool) *XmlFile {
	return &XmlFile{
		StructuredFile: base.NewStructuredFile(dst, base.STRUCTUREDFILE_DEFAULT_TAB, minify),
	}
}

func (xml *XmlFile) Declaration() *XmlFile {
	xml.Println(XML_DECLARATION)
	return xml
}
func (xml *XmlFile) Comment(text string) *XmlFile {
	if !xml.Minify() {
		xml.Println(fmt.Sprint("<!--", text, "-->"))
	}
	return xml
}
func (xml *XmlFile) Tag(name string, closure func(), attributes ...XmlAttr) *XmlFile {
	if len(attributes) > 0 {
		xml.Print("<%s %s", name, base.JoinString(" ", attributes...))
	} else {
		xml.Print("<%s", name)
	}
	if closure != nil {
		xml.Println(">")
		xml.ScopeIndent(closure)
		xml.Println("</%s>", name)
	} else {
		xml.Println(" />")
	}
	return xml
}

// Element writes a text element, an empty value gives an empty element.
func (xml *XmlFile) Element(name, value string, attributes ...XmlAttr) *XmlFile {
	if len(value) == 0 {
		return xml.Tag(name, nil, attributes...)
	}
	if len(attributes) > 0 {
		xml.Println("<%s %s>%s</%s>", name, base.JoinString(" ", attributes...), EscapeXmlText(value), name)
	} else {
		xml.Println("<%s>%s</%s>", name, EscapeXmlText(value), name)
	}
	return xml
}
