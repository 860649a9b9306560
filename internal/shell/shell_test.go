package shell

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commandStrings(t *testing.T, script string) []string {
	t.Helper()
	trees, err := Parse(script)
	require.NoError(t, err)

	var out []string
	for _, cmd := range Commands(trees) {
		out = append(out, cmd.String())
	}
	return out
}

func TestParse_Commands(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		script string
		want   []string
	}{
		{
			name:   "simple command",
			script: "apt-get update",
			want:   []string{`command(word:"apt-get" word:"update")`},
		},
		{
			name:   "and list",
			script: "curl -O http://example.com/a.tgz && echo done",
			want: []string{
				`command(word:"curl" word:"-O" word:"http://example.com/a.tgz")`,
				`command(word:"echo" word:"done")`,
			},
		},
		{
			name:   "pipeline",
			script: "curl -s https://example.com | grep pattern",
			want: []string{
				`command(word:"curl" word:"-s" word:"https://example.com")`,
				`command(word:"grep" word:"pattern")`,
			},
		},
		{
			name:   "leading assignment",
			script: "DEBIAN_FRONTEND=noninteractive apt-get install -y curl",
			want: []string{
				`command(assignment:"DEBIAN_FRONTEND=noninteractive" word:"apt-get" word:"install" word:"-y" word:"curl")`,
			},
		},
		{
			name:   "standalone assignment",
			script: "VER=1.2.3",
			want:   []string{`command(assignment:"VER=1.2.3")`},
		},
		{
			name:   "quotes are removed, expansions kept",
			script: `curl -fsSL "https://example.com/v${VER}/app-$VER.tgz" -o 'out file'`,
			want: []string{
				`command(word:"curl" word:"-fsSL" word:"https://example.com/v${VER}/app-$VER.tgz" word:"-o" word:"out file")`,
			},
		},
		{
			name:   "export is a command with word operands",
			script: "export PATH=/opt/bin:$PATH GOFLAGS",
			want:   []string{`command(word:"export" word:"PATH=/opt/bin:$PATH" word:"GOFLAGS")`},
		},
		{
			name:   "nested command substitution is not a separate command",
			script: "echo $(which curl)",
			want:   []string{`command(word:"echo" word:"$(which curl)")`},
		},
		{
			name:   "if statement",
			script: "if [ -f /etc/foo ]; then wget http://example.com/x; fi",
			want: []string{
				`command(word:"[" word:"-f" word:"/etc/foo" word:"]")`,
				`command(word:"wget" word:"http://example.com/x")`,
			},
		},
		{
			name:   "empty script",
			script: "",
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, commandStrings(t, tt.script))
		})
	}
}

func TestParse_OneTreePerStatement(t *testing.T) {
	t.Parallel()
	trees, err := Parse("apt-get update; echo one\necho two && echo three")
	require.NoError(t, err)
	require.Len(t, trees, 3)

	assert.Len(t, trees[0].Root.Children, 1)
	assert.Len(t, trees[2].Root.Children, 2)
	assert.Equal(t, "echo two && echo three", trees[2].String())
	assert.Equal(t, 2, trees[2].Root.Line)
}

func TestParse_Error(t *testing.T) {
	t.Parallel()
	_, err := Parse("if then fi; (")
	require.Error(t, err)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "if then fi; (", perr.Script)
	assert.Contains(t, err.Error(), "can not parse shell script")
}

func TestWalk_SkipsChildren(t *testing.T) {
	t.Parallel()
	trees, err := Parse("A=1 curl http://x")
	require.NoError(t, err)

	var kinds []Kind
	Walk(trees[0].Root, func(n *Node) bool {
		kinds = append(kinds, n.Kind)
		return n.Kind != KindCommand
	})
	assert.Equal(t, []Kind{KindOther, KindCommand}, kinds)
}

func TestNode_FirstWord(t *testing.T) {
	t.Parallel()
	trees, err := Parse("A=1 B=2 make install")
	require.NoError(t, err)

	cmds := Commands(trees)
	require.Len(t, cmds, 1)
	name, ok := cmds[0].FirstWord()
	assert.True(t, ok)
	assert.Equal(t, "make", name)

	trees, err = Parse("A=1")
	require.NoError(t, err)
	_, ok = Commands(trees)[0].FirstWord()
	assert.False(t, ok)
}

func TestTree_MarshalJSON(t *testing.T) {
	t.Parallel()
	trees, err := Parse("X=1 curl http://a")
	require.NoError(t, err)

	b, err := trees[0].MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"other","children":[{"kind":"command","children":[
		{"kind":"assignment","text":"X=1"},
		{"kind":"word","text":"curl"},
		{"kind":"word","text":"http://a"}]}]}`, string(b))
}
