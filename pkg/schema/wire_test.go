package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ofekfell/mediaflow/pkg/domain"
	"github.com/ofekfell/mediaflow/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const concatDoc = `{
  "action": "concat",
  "input": [
    {"url": "a.mp4"},
    {"action": "trim", "input": {"url": "a.mp4"}, "start": 0, "duration": 1},
    "a.mp4"
  ]
}`

func TestParseJSON_Concat(t *testing.T) {
	n, err := ParseJSON([]byte(concatDoc))
	require.NoError(t, err)

	root, ok := n.(*domain.ActionNode)
	require.True(t, ok)
	assert.Equal(t, domain.ActionConcat, root.Kind)
	require.Len(t, root.Inputs, 3)
	assert.Equal(t, domain.Leaf{Reference: "a.mp4"}, root.Inputs[0])
	assert.Equal(t, domain.Leaf{Reference: "a.mp4"}, root.Inputs[2], "bare strings are leaves")

	trim := root.Inputs[1].(*domain.ActionNode)
	assert.Equal(t, domain.TrimParams{Start: 0, Duration: 1}, trim.Params)
	assert.Len(t, domain.Leaves(n), 3)
}

func TestParseYAML(t *testing.T) {
	doc := `
action: crossfade
input:
  - url: a.mp4
  - url: b.mp4
duration: 1
stream1_duration: 5
`
	n, err := ParseYAML([]byte(doc))
	require.NoError(t, err)
	p := n.(*domain.ActionNode).Params.(domain.CrossfadeParams)
	assert.Equal(t, domain.CrossfadeParams{Duration: 1, Stream1Duration: 5, Transition: "fade"}, p)
}

func TestDecode_WeakNumbers(t *testing.T) {
	n, err := Decode(map[string]any{
		"action": "scale", "input": "a.mp4", "width": "640", "height": -1,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ScaleParams{Width: 640, Height: -1}, n.(*domain.ActionNode).Params)
}

func TestDecode_ScaleDefaultsHeight(t *testing.T) {
	n, err := Decode(map[string]any{"action": "scale", "input": "a.mp4", "width": 320})
	require.NoError(t, err)
	assert.Equal(t, domain.ScaleParams{Width: 320, Height: -1}, n.(*domain.ActionNode).Params)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
		path string
	}{
		{"unknown action", `{"action": "explode", "input": "a"}`, domain.ErrUnknownAction, "$"},
		{"missing input", `{"action": "trim", "start": 0, "duration": 1}`, domain.ErrInvalidNode, "$"},
		{"neither url nor action", `{"start": 1}`, domain.ErrInvalidNode, "$"},
		{"bad nested leaf", `{"action": "concat", "input": ["a", 3]}`, domain.ErrInvalidNode, "$.input[1]"},
		{"unknown param", `{"action": "blur", "input": "a", "radius": 2, "sigma": 1}`, domain.ErrValidation, "$"},
		{"crossfade without stream1", `{"action": "crossfade", "input": ["a", "b"], "duration": 1}`, domain.ErrValidation, "$"},
		{"negative trim", `{"action": "trim", "input": "a", "start": -1, "duration": 5}`, domain.ErrValidation, "$"},
		{"list for unary", `{"action": "blur", "input": ["a", "b"], "radius": 1}`, domain.ErrValidation, "$"},
		{"nested validation", `{"action": "concat", "input": ["a", {"action": "speed", "input": "b", "factor": 0}]}`, domain.ErrValidation, "$.input[1]"},
		{"malformed json", `{"action": `, domain.ErrInvalidNode, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJSON([]byte(tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			if tt.path != "" {
				var derr *DecodeError
				require.ErrorAs(t, err, &derr)
				assert.Equal(t, tt.path, derr.Path)
			}
		})
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	intro, err := dsl.From("intro.mp4").Trim(0, 3).Fade(dsl.FadeIn, 0, 1).Build()
	require.NoError(t, err)
	mixed, err := dsl.AudioMix([]any{intro, "music.mp3"}, "1 0.3")
	require.NoError(t, err)
	root, err := dsl.Crossfade([]any{mixed, "outro.mp4"}, 1, 3, "wipeleft")
	require.NoError(t, err)

	data, err := MarshalJSON(root)
	require.NoError(t, err)
	back, err := ParseJSON(data)
	require.NoError(t, err)
	assert.Equal(t, root, back)

	yml, err := MarshalYAML(root)
	require.NoError(t, err)
	back, err = ParseYAML(yml)
	require.NoError(t, err)
	assert.Equal(t, root, back)
}

func TestEncode_Shape(t *testing.T) {
	n, err := dsl.Concat([]string{"a.mp4", "b.mp4"})
	require.NoError(t, err)

	v, err := Encode(n)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"action": "concat",
		"input": []any{
			map[string]any{"url": "a.mp4"},
			map[string]any{"url": "b.mp4"},
		},
	}, v)
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "wf.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(concatDoc), 0o644))
	yamlPath := filepath.Join(dir, "wf.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("action: blur\ninput: a.mp4\nradius: 2\n"), 0o644))

	n, err := ParseFile(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, domain.ActionConcat, n.(*domain.ActionNode).Kind)

	n, err = ParseFile(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, domain.BlurParams{Radius: 2}, n.(*domain.ActionNode).Params)

	_, err = ParseFile(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestJoin(t *testing.T) {
	assert.NoError(t, Join(nil, nil))

	one := &DecodeError{Path: "$", Err: domain.ErrInvalidNode}
	assert.Same(t, one, Join(nil, one))

	err := Join(one, domain.ErrValidation)
	assert.Len(t, Errors(err), 2)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "2 errors")
}

func TestDecode_RejectsNonFiniteNumbers(t *testing.T) {
	docs := map[string]string{
		"trim duration":   `{"action":"trim","input":"a.mp4","start":0,"duration":"NaN"}`,
		"trim start":      `{"action":"trim","input":"a.mp4","start":"NaN","duration":1}`,
		"trim infinite":   `{"action":"trim","input":"a.mp4","start":0,"duration":"Inf"}`,
		"fade start":      `{"action":"fade","input":"a.mp4","type":"in","start_time":"NaN","duration":1}`,
		"crossfade":       `{"action":"crossfade","input":["a.mp4","b.mp4"],"duration":"NaN","stream1_duration":3}`,
		"volume infinite": `{"action":"change_volume","input":"a.mp4","volume":"Inf"}`,
	}
	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			n, err := ParseJSON([]byte(doc))
			require.Error(t, err)
			assert.Nil(t, n)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}
