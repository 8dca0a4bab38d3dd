package osmdoc

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

//*******************************************
// output style
//*******************************************

// _Style is the formatting of the source document, reused for re-rendered nodes.
type _Style struct {
	Quote     byte
	Step      string
	SelfClose string
	Newline   string
}

var DEFAULT_STYLE = _Style{Quote: '"', Step: "  ", SelfClose: "/>", Newline: "\n"}

func _DetectStyle(data []byte, offset int64) _Style {
	style := DEFAULT_STYLE
	if nl := bytes.IndexByte(data, '\n'); nl > 0 && data[nl-1] == '\r' {
		style.Newline = "\r\n"
	}
	if indent := _LineIndent(data, offset); indent != "" {
		style.Step = indent
	}
	rest := data[offset:]
	if end := bytes.IndexByte(rest, '>'); end > 0 {
		tag := rest[:end+1]
		if q := bytes.IndexAny(tag, `"'`); q >= 0 {
			style.Quote = tag[q]
		}
	}
	if sc := bytes.Index(rest, []byte("/>")); sc > 0 && rest[sc-1] == ' ' {
		style.SelfClose = " />"
	}
	return style
}

//*******************************************
// writer
//*******************************************

func (self *Document) SaveXMLFile(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "create output file")
	}
	if _, err := self.WriteTo(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// WriteTo writes the document. Bytes outside of changed nodes are copied from the source,
// changed nodes are rendered with their current tags and action="modify".
func (self *Document) WriteTo(w io.Writer) (int64, error) {
	if self.source == nil {
		return 0, ErrReadOnly
	}
	out := bufio.NewWriter(w)
	var written int64
	pos := int64(0)
	for i := range self.nodes {
		node := &self.nodes[i]
		if !node.Changed {
			continue
		}
		n, err := out.Write(self.source[pos:node.span.Start])
		written += int64(n)
		if err != nil {
			return written, errors.Wrap(err, "write osm document")
		}
		m, err := out.WriteString(self.renderNode(node))
		written += int64(m)
		if err != nil {
			return written, errors.Wrap(err, "write osm document")
		}
		pos = node.span.End
	}
	n, err := out.Write(self.source[pos:])
	written += int64(n)
	if err != nil {
		return written, errors.Wrap(err, "write osm document")
	}
	if err := out.Flush(); err != nil {
		return written, errors.Wrap(err, "write osm document")
	}
	return written, nil
}

// Bytes returns the serialized document.
func (self *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := self.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderNode returns the xml of a single node as it is written by WriteTo.
func (self *Document) RenderNode(node *Node) string {
	if !node.Changed && self.source != nil {
		return string(self.source[node.span.Start:node.span.End])
	}
	return self.renderNode(node)
}

// SourceXML returns the source bytes of a node, empty for documents without xml source.
func (self *Document) SourceXML(node *Node) string {
	if self.source == nil {
		return ""
	}
	return string(self.source[node.span.Start:node.span.End])
}

func (self *Document) renderNode(node *Node) string {
	style := self.style
	var b strings.Builder
	if self.source != nil {
		b.WriteString(_SpliceStartTag(self.source[node.span.Start:node.span.TagEnd], style.Quote))
	} else {
		b.WriteString("<node")
		for _, a := range node.Meta.with("action", "modify").attrs {
			b.WriteByte(' ')
			b.WriteString(a.Name.Local)
			b.WriteByte('=')
			b.WriteByte(style.Quote)
			b.WriteString(_EscapeAttr(a.Value, style.Quote))
			b.WriteByte(style.Quote)
		}
	}
	if len(node.Tags) == 0 {
		b.WriteString(style.SelfClose)
		return b.String()
	}
	b.WriteString(">")
	b.WriteString(style.Newline)
	for _, tag := range node.Tags {
		b.WriteString(node.span.ChildIndent)
		b.WriteString("<tag k=")
		b.WriteByte(style.Quote)
		b.WriteString(_EscapeAttr(tag.Key, style.Quote))
		b.WriteByte(style.Quote)
		b.WriteString(" v=")
		b.WriteByte(style.Quote)
		b.WriteString(_EscapeAttr(tag.Value, style.Quote))
		b.WriteByte(style.Quote)
		b.WriteString(style.SelfClose)
		b.WriteString(style.Newline)
	}
	b.WriteString(node.span.Indent)
	b.WriteString("</node>")
	return b.String()
}

// _SpliceStartTag returns the source start tag without its closing ">" or "/>", with the action
// attribute set to modify. All other attributes are kept byte for byte.
func _SpliceStartTag(tag []byte, quote byte) string {
	end := len(tag)
	if end > 0 && tag[end-1] == '>' {
		end -= 1
	}
	if end > 0 && tag[end-1] == '/' {
		end -= 1
	}
	for end > 0 && _IsSpace(tag[end-1]) {
		end -= 1
	}
	tag = tag[:end]

	// skip the element name
	i := 1
	for i < len(tag) && !_IsSpace(tag[i]) {
		i += 1
	}
	for i < len(tag) {
		for i < len(tag) && _IsSpace(tag[i]) {
			i += 1
		}
		name_start := i
		for i < len(tag) && tag[i] != '=' && !_IsSpace(tag[i]) {
			i += 1
		}
		name := string(tag[name_start:i])
		for i < len(tag) && (tag[i] == '=' || _IsSpace(tag[i])) {
			i += 1
		}
		if i >= len(tag) {
			break
		}
		q := tag[i]
		value_start := i + 1
		value_end := bytes.IndexByte(tag[value_start:], q)
		if value_end < 0 {
			break
		}
		value_end += value_start
		if name == "action" {
			return string(tag[:value_start]) + "modify" + string(tag[value_end:])
		}
		i = value_end + 1
	}
	return string(tag) + " action=" + string(quote) + "modify" + string(quote)
}

func _IsSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func _EscapeAttr(value string, quote byte) string {
	var b strings.Builder
	for i := 0; i < len(value); i++ {
		c := value[i]
		switch c {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			if quote == '"' {
				b.WriteString("&quot;")
			} else {
				b.WriteByte(c)
			}
		case '\'':
			if quote == '\'' {
				b.WriteString("&apos;")
			} else {
				b.WriteByte(c)
			}
		case '\n':
			b.WriteString("&#xA;")
		case '\r':
			b.WriteString("&#xD;")
		case '\t':
			b.WriteString("&#x9;")
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
