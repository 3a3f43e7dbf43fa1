package output_test

import (
	"encoding/json"
	"encoding/xml"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/grouper/grammar"
	"github.com/dekarrin/grouper/output"
	"github.com/dekarrin/grouper/recognize"
)

func buildGreetingGrammar(t *testing.T) *grammar.Grammar {
	t.Helper()
	require := require.New(t)

	g := grammar.New("greeting")
	hello, err := g.Word("hello", []byte("hello"))
	require.NoError(err)
	name, err := g.Token("NAME", `\w+`)
	require.NoError(err)
	axiom, err := g.Rule("Greeting", hello.As("verb"), name.As("who"))
	require.NoError(err)
	g.SetAxiom(axiom)
	require.NoError(g.Prepare())
	return g
}

func Test_MarshalJSON_RoundTripsShape(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	g := buildGreetingGrammar(t)
	r := recognize.ParseString(g, []byte("helloWorld"))
	require.True(r.IsSuccess())

	data, err := output.MarshalJSON(r.Root)
	require.NoError(err)

	var raw map[string]any
	require.NoError(json.Unmarshal(data, &raw))

	assert.Equal("Rule", raw["kind"])
	assert.Equal("Greeting", raw["name"])
	children, ok := raw["children"].([]any)
	require.True(ok)
	assert.Len(children, 2)
}

func Test_MarshalXML_RoundTripsShape(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	g := buildGreetingGrammar(t)
	r := recognize.ParseString(g, []byte("helloWorld"))
	require.True(r.IsSuccess())

	data, err := output.MarshalXML(r.Root)
	require.NoError(err)

	var raw struct {
		XMLName xml.Name `xml:"match"`
		Kind    string   `xml:"kind,attr"`
		Name    string   `xml:"name,attr"`
		Matches []struct {
			Slot string `xml:"slot,attr"`
		} `xml:"match"`
	}
	require.NoError(xml.Unmarshal(data, &raw))

	assert.Equal("Rule", raw.Kind)
	assert.Equal("Greeting", raw.Name)
	require.Len(raw.Matches, 2)
	assert.Equal("verb", raw.Matches[0].Slot)
	assert.Equal("who", raw.Matches[1].Slot)
}

func Test_Snapshot_FlattenUnflatten_PreservesTreeShape(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	g := buildGreetingGrammar(t)
	r := recognize.ParseString(g, []byte("helloWorld"))
	require.True(r.IsSuccess())

	snap := output.NewSnapshot("greeting", r)
	require.NotNil(snap.Root)
	assert.Equal("greeting", snap.GrammarName)

	rebuilt := snap.Match()
	require.NotNil(rebuilt)
	assert.Equal(r.Root.ElementName, rebuilt.ElementName)
	assert.Equal(r.Root.Offset, rebuilt.Offset)
	assert.Equal(r.Root.Length, rebuilt.Length)
	require.Len(rebuilt.Children, len(r.Root.Children))
	for i, c := range r.Root.Children {
		assert.Equal(c.ReferenceName, rebuilt.Children[i].ReferenceName)
	}
}

func Test_Snapshot_EncodeDecodeBinary_RoundTrips(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	g := buildGreetingGrammar(t)
	r := recognize.ParseString(g, []byte("helloWorld"))
	require.True(r.IsSuccess())

	snap := output.NewSnapshot("greeting", r)
	encoded := output.EncodeBinary(snap)
	require.NotEmpty(encoded)

	decoded, err := output.DecodeBinary(encoded)
	require.NoError(err)
	assert.Equal(snap.GrammarName, decoded.GrammarName)
	assert.Equal(snap.Status, decoded.Status)
	assert.Equal(snap.InputLength, decoded.InputLength)
}

func Test_Snapshot_NilRoot_DoesNotPanic(t *testing.T) {
	assert := assert.New(t)

	snap := &output.Snapshot{GrammarName: "empty"}
	assert.Nil(snap.Match())
}
