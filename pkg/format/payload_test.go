package format

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_Text(t *testing.T) {
	r := Render("  hello there \n", RenderOptions{})
	assert.Equal(t, KindText, r.Kind)
	assert.Equal(t, "hello there", r.Text)
	assert.Equal(t, "hello there", r.String())
}

func TestRender_Empty(t *testing.T) {
	r := Render("   ", RenderOptions{})
	assert.Equal(t, KindText, r.Kind)
	assert.Equal(t, "", r.String())
}

func TestRender_Structured(t *testing.T) {
	r := Render(` {"b":[1,2],"a":"x"} `, RenderOptions{})
	require.Equal(t, KindStructured, r.Kind)
	assert.JSONEq(t, `{"a":"x","b":[1,2]}`, r.String())
}

func TestRender_StructuredScalars(t *testing.T) {
	tests := []string{`42`, `3.5`, `true`, `null`, `"quoted"`, `[1,"two",{"three":3}]`}
	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			r := Render(in, RenderOptions{})
			assert.Equal(t, KindStructured, r.Kind)
			assert.JSONEq(t, in, r.String())
		})
	}
}

func TestRender_StructuredRoundTrip(t *testing.T) {
	in := `{"id":7,"user":{"name":"ada","tags":["x","y"]},"ok":true,"ratio":0.25}`
	r := Render(in, RenderOptions{})
	require.Equal(t, KindStructured, r.Kind)

	var want, got any
	require.NoError(t, json.Unmarshal([]byte(in), &want))
	require.NoError(t, json.Unmarshal([]byte(r.String()), &got))
	assert.Equal(t, want, got)
}

func TestRender_XML(t *testing.T) {
	r := Render(`<note><to>ada</to><body>hi</body></note>`, RenderOptions{})
	require.Equal(t, KindXML, r.Kind)
	require.NotNil(t, r.Doc)
	assert.Equal(t, "note", r.Doc.Root().Tag)

	out := r.String()
	assert.Contains(t, out, "\n  <to>ada</to>")
	assert.Contains(t, out, "\n  <body>hi</body>")
}

func TestRender_XMLStringDoesNotMutateDoc(t *testing.T) {
	r := Render(`<a><b/></a>`, RenderOptions{})
	require.Equal(t, KindXML, r.Kind)

	first := r.String()
	second := r.String()
	assert.Equal(t, first, second)
}

func TestRender_NoXML(t *testing.T) {
	r := Render(`<note>hi</note>`, RenderOptions{NoXML: true})
	assert.Equal(t, KindText, r.Kind)
	assert.Equal(t, `<note>hi</note>`, r.String())
}

func TestRender_MalformedFallsBack(t *testing.T) {
	tests := []string{
		`<3 is less than 4>`,
		`{"unterminated": `,
		`[1, 2`,
		`not json at all`,
	}
	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			var r Rendered
			assert.NotPanics(t, func() { r = Render(in, RenderOptions{}) })
			assert.Equal(t, KindText, r.Kind)
			assert.Equal(t, strings.TrimSpace(in), r.String())
		})
	}
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "text", KindText.String())
	assert.Equal(t, "xml", KindXML.String())
	assert.Equal(t, "structured", KindStructured.String())
}
