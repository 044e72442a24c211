package output_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"testing"

	"github.com/aretw0/tendril/pkg/domain"
	"github.com/aretw0/tendril/pkg/output"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func emitSample(out output.Output) error {
	name := domain.Name("", "item")
	if err := out.StartElement(name, []output.Attr{{Name: domain.Name("", "id"), Value: "a&b"}}); err != nil {
		return err
	}
	if err := out.Write("1 < 2"); err != nil {
		return err
	}
	return out.EndElement(name)
}

func TestXMLWriter_Escaping(t *testing.T) {
	var buf bytes.Buffer
	w := output.NewXMLWriter(&buf, true)
	require.NoError(t, w.StartDocument())
	require.NoError(t, emitSample(w))
	require.NoError(t, w.EndDocument())

	assert.Equal(t, `<item id="a&amp;b">1 &lt; 2</item>`, buf.String())
}

func TestXMLWriter_RawText(t *testing.T) {
	var buf bytes.Buffer
	w := output.NewXMLWriter(&buf, false)
	require.NoError(t, w.Write("<b>bold</b>"))
	require.NoError(t, w.EndDocument())

	assert.Equal(t, "<b>bold</b>", buf.String())
}

func TestXMLWriter_EmptyElementAndNamespace(t *testing.T) {
	s, err := output.Render(true, func(out output.Output) error {
		outer := domain.Name("urn:x", "foo")
		inner := domain.Name("urn:x", "bar")
		if err := out.StartElement(outer, nil); err != nil {
			return err
		}
		if err := out.StartElement(inner, nil); err != nil {
			return err
		}
		if err := out.EndElement(inner); err != nil {
			return err
		}
		return out.EndElement(outer)
	})
	require.NoError(t, err)
	assert.Equal(t, `<foo xmlns="urn:x"><bar/></foo>`, s)
}

func TestXMLWriter_UnbalancedEnd(t *testing.T) {
	w := output.NewXMLWriter(&bytes.Buffer{}, true)
	assert.Error(t, w.EndElement(domain.Name("", "x")))
}

func TestTextWriter_DropsElements(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, emitSample(output.NewTextWriter(&buf)))
	assert.Equal(t, "1 < 2", buf.String())
}

func TestRecorder_DocumentTree(t *testing.T) {
	rec := output.NewRecorder()
	require.NoError(t, rec.StartDocument())
	require.NoError(t, rec.Write("head "))
	require.NoError(t, emitSample(rec))
	require.NoError(t, rec.Write("tail"))
	require.NoError(t, rec.Write("!"))
	require.NoError(t, rec.EndDocument())

	assert.Equal(t, "head 1 < 2tail!", rec.Text())

	doc, err := rec.Document()
	require.NoError(t, err)
	require.Len(t, doc.Children, 3)

	items := doc.Elements("item")
	require.Len(t, items, 1)
	id, ok := items[0].Attr("id")
	assert.True(t, ok)
	assert.Equal(t, "a&b", id)
	assert.Equal(t, "1 < 2", items[0].Content())
	assert.Equal(t, "tail!", doc.Children[2].Text)
	assert.Equal(t, `<item id="a&amp;b">1 &lt; 2</item>`, items[0].String())
}

func TestRecorder_UnbalancedDocument(t *testing.T) {
	rec := output.NewRecorder()
	require.NoError(t, rec.StartElement(domain.Name("", "open"), nil))

	_, err := rec.Document()
	assert.Error(t, err)
}

func TestRecorder_Replay(t *testing.T) {
	rec := output.NewRecorder()
	require.NoError(t, emitSample(rec))

	var buf bytes.Buffer
	w := output.NewXMLWriter(&buf, true)
	require.NoError(t, rec.Replay(w))
	require.NoError(t, w.Flush())
	assert.Equal(t, `<item id="a&amp;b">1 &lt; 2</item>`, buf.String())
}

func TestJSONWriter_OneEventPerLine(t *testing.T) {
	var buf bytes.Buffer
	w := output.NewJSONWriter(&buf)
	require.NoError(t, w.StartDocument())
	require.NoError(t, emitSample(w))
	require.NoError(t, w.EndDocument())

	var kinds []output.EventKind
	sc := bufio.NewScanner(&buf)
	for sc.Scan() {
		var e output.Event
		require.NoError(t, json.Unmarshal(sc.Bytes(), &e))
		kinds = append(kinds, e.Kind)
	}
	assert.Equal(t, []output.EventKind{
		output.KindStartDocument,
		output.KindStartElement,
		output.KindText,
		output.KindEndElement,
		output.KindEndDocument,
	}, kinds)
}

func TestDiscard(t *testing.T) {
	assert.NoError(t, emitSample(output.Discard))
}
