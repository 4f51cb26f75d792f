package checker

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mlccheck/internal/annotation"
)

type modeValues struct {
	Mode   string
	Values []string
}

func flatten(sets []ModeSet) []modeValues {
	out := make([]modeValues, len(sets))
	for i, s := range sets {
		out[i] = modeValues{Mode: s.Mode, Values: annotation.Values(s.Tokens)}
	}
	return out
}

func buckets(entries ...[2]string) *ModeBuckets {
	var b ModeBuckets
	for i, e := range entries {
		b.Add(e[0], annotation.New(annotation.SpellingDeinit, e[1], "t.c", i+1))
	}
	return &b
}

func TestMergeModes(t *testing.T) {
	tests := []struct {
		name string
		in   *ModeBuckets
		want []modeValues
	}{
		{
			name: "empty yields one default set",
			in:   buckets(),
			want: []modeValues{{Mode: "", Values: []string{}}},
		},
		{
			name: "only default mode",
			in:   buckets([2]string{"", "a"}, [2]string{"", "b"}),
			want: []modeValues{{Mode: "", Values: []string{"a", "b"}}},
		},
		{
			name: "named modes include always set",
			in:   buckets([2]string{"", "a"}, [2]string{"X", "b"}, [2]string{"Y", "c"}),
			want: []modeValues{
				{Mode: "X", Values: []string{"a", "b"}},
				{Mode: "Y", Values: []string{"a", "c"}},
			},
		},
		{
			name: "default tokens after named ones still apply",
			in:   buckets([2]string{"err", "x"}, [2]string{"", "a"}, [2]string{"ok", "y"}, [2]string{"err", "z"}),
			want: []modeValues{
				{Mode: "err", Values: []string{"a", "x", "z"}},
				{Mode: "ok", Values: []string{"a", "y"}},
			},
		},
		{
			name: "named modes without default",
			in:   buckets([2]string{"X", "b"}),
			want: []modeValues{{Mode: "X", Values: []string{"b"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := flatten(MergeModes(tt.in))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("MergeModes mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMergeModesDoesNotAlias(t *testing.T) {
	b := buckets([2]string{"", "a"}, [2]string{"X", "b"}, [2]string{"Y", "c"})
	sets := MergeModes(b)
	require.Len(t, sets, 2)

	sets[0].Tokens[0].Value = "mutated"
	always, _ := b.Get("")
	assert.Equal(t, "a", always[0].Value)
	assert.Equal(t, "a", sets[1].Tokens[0].Value)
}

func TestCheckMatch(t *testing.T) {
	anchor := annotation.New(annotation.SpellingPushScope, "f", "t.c", 1)

	tests := []struct {
		name    string
		a, b    []string
		wantMsg string
	}{
		{name: "equal sets", a: []string{"x", "y"}, b: []string{"y", "x"}},
		{name: "both empty", a: nil, b: nil},
		{name: "a repeats", a: []string{"x", "x"}, b: []string{"x"}, wantMsg: `inited not unique (repeating "x")`},
		{name: "b repeats", a: []string{"x"}, b: []string{"x", "x"}, wantMsg: `deinited not unique (repeating "x")`},
		{name: "uniqueness before membership", a: []string{"x", "q", "x"}, b: []string{"z"}, wantMsg: `inited not unique (repeating "x")`},
		{name: "b uniqueness before membership", a: []string{"x"}, b: []string{"z", "y", "y"}, wantMsg: `deinited not unique (repeating "y")`},
		{name: "extra in b", a: []string{"x"}, b: []string{"x", "z"}, wantMsg: `"z": deinited, but not inited`},
		{name: "missing from b", a: []string{"x", "y", "w"}, b: []string{"x"}, wantMsg: `"y": inited, but not deinited`},
		{name: "extra reported before missing", a: []string{"x", "y"}, b: []string{"x", "z"}, wantMsg: `"z": deinited, but not inited`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := checkMatch(tokensOf(tt.a...), "inited", tokensOf(tt.b...), "deinited", anchor, "M")
			if tt.wantMsg == "" {
				assert.Nil(t, d)
				return
			}
			require.NotNil(t, d)
			assert.Equal(t, tt.wantMsg, d.Message)
			assert.Equal(t, ClassMatch, d.Class)
			assert.Equal(t, "M", d.Mode)
			require.NotNil(t, d.Token)
			assert.Equal(t, anchor, *d.Token)
		})
	}
}
