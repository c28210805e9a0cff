package tarcodec

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFilter(t *testing.T) {
	var nilRegexp *regexp.Regexp
	tests := []struct {
		name    string
		value   interface{}
		match   []string
		reject  []string
		wantErr string
	}{
		{
			name:  "nil",
			value: nil,
			match: []string{"", "anything"},
		},
		{
			name:   "glob",
			value:  "data/henery*",
			match:  []string{"data/heneryIV.txt", "data/heneryIV-westmoreland.txt"},
			reject: []string{"data/henryIV.txt", "other/data/heneryIV.txt"},
		},
		{
			name:   "glob character class",
			value:  "data/hen[er]*",
			match:  []string{"data/heneryIV.txt", "data/henryIV.txt"},
			reject: []string{"data/hex"},
		},
		{
			name:   "regexp",
			value:  regexp.MustCompile(`westmore`),
			match:  []string{"data/heneryIV-westmoreland.txt"},
			reject: []string{"data/heneryIV.txt"},
		},
		{
			name:   "filter",
			value:  Regexp(regexp.MustCompile(`^a$`)),
			match:  []string{"a"},
			reject: []string{"ab"},
		},
		{
			name:    "int",
			value:   123,
			wantErr: "unsupported filter type: int",
		},
		{
			name:    "slice",
			value:   []string{"a"},
			wantErr: "unsupported filter type: []string",
		},
		{
			name:    "nil regexp",
			value:   nilRegexp,
			wantErr: "unsupported filter type: *regexp.Regexp",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f, err := NewFilter(test.value)
			if test.wantErr != "" {
				assert.EqualError(t, err, test.wantErr)
				assert.ErrorIs(t, err, ErrUnsupportedFilter)
				return
			}
			require.NoError(t, err)
			for _, name := range test.match {
				assert.True(t, f.Match(name), "%s should match %q", f, name)
			}
			for _, name := range test.reject {
				assert.False(t, f.Match(name), "%s should reject %q", f, name)
			}
		})
	}
}

func TestFilterErrors(t *testing.T) {
	_, err := Glob("[unterminated")
	assert.Error(t, err)
	_, err = RegexpString("(")
	assert.Error(t, err)
	_, err = Read(failingReader{t}, OptFilterValue("[unterminated"))
	assert.Error(t, err)
}
