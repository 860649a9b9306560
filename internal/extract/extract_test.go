package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinovyatkin/pinscan/internal/dockerfile"
	"github.com/tinovyatkin/pinscan/internal/shell"
)

func run(line int, argument string) dockerfile.Instruction {
	return dockerfile.Instruction{Keyword: "RUN", Argument: argument, StartLine: line, EndLine: line}
}

func TestCommands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		insts []dockerfile.Instruction
		want  []string
	}{
		{
			name:  "pipeline",
			insts: []dockerfile.Instruction{run(1, "curl -fsSL http://x/a.tgz | tar xz")},
			want:  []string{"curl", "tar"},
		},
		{
			name:  "and list",
			insts: []dockerfile.Instruction{run(1, "apt-get update && apt-get install -y git")},
			want:  []string{"apt-get", "apt-get"},
		},
		{
			name:  "assignment prefix",
			insts: []dockerfile.Instruction{run(1, "DEBIAN_FRONTEND=noninteractive apt-get install -y curl")},
			want:  []string{"apt-get"},
		},
		{
			name:  "bare assignment has no name",
			insts: []dockerfile.Instruction{run(1, "X=1; echo $X")},
			want:  []string{"echo"},
		},
		{
			name: "across instructions, other keywords ignored",
			insts: []dockerfile.Instruction{
				{Keyword: "FROM", Argument: "alpine", StartLine: 1},
				run(2, "wget http://x/b"),
				{Keyword: "CMD", Argument: "curl http://ignored", StartLine: 3},
				run(4, "if true; then make; fi"),
			},
			want: []string{"wget", "true", "make"},
		},
		{
			name:  "export",
			insts: []dockerfile.Instruction{run(1, "export PATH=/opt/bin:$PATH")},
			want:  []string{"export"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Commands(tt.insts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCommands_ParseError(t *testing.T) {
	t.Parallel()

	_, err := Commands([]dockerfile.Instruction{
		run(1, "echo ok"),
		run(7, "echo ("),
	})
	require.Error(t, err)

	var perr *shell.ParseError
	assert.ErrorAs(t, err, &perr)
	assert.Contains(t, err.Error(), "line 7")
}

func TestURLs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		insts []dockerfile.Instruction
		want  []string
	}{
		{
			name:  "curl",
			insts: []dockerfile.Instruction{run(1, "curl -O http://host/lib-1.2.3.tar.gz")},
			want:  []string{"http://host/lib-1.2.3.tar.gz"},
		},
		{
			name:  "wget with several urls",
			insts: []dockerfile.Instruction{run(1, "wget -q https://a.example/x https://b.example/y")},
			want:  []string{"https://a.example/x", "https://b.example/y"},
		},
		{
			name:  "url before trigger is ignored",
			insts: []dockerfile.Instruction{run(1, "echo http://not-a-download && curl https://yes.example")},
			want:  []string{"https://yes.example"},
		},
		{
			name:  "state resets per command",
			insts: []dockerfile.Instruction{run(1, "curl -o f https://one.example | sh -s https://two.example")},
			want:  []string{"https://one.example"},
		},
		{
			name:  "quoted url",
			insts: []dockerfile.Instruction{run(1, `curl -fsSL "https://example.com/a b.zip"`)},
			want:  []string{"https://example.com/a b.zip"},
		},
		{
			name:  "no download command",
			insts: []dockerfile.Instruction{run(1, "git clone https://github.com/x/y")},
		},
		{
			name: "unparsable instruction skipped",
			insts: []dockerfile.Instruction{
				run(1, "curl http://first ("),
				run(2, "wget http://second"),
			},
			want: []string{"http://second"},
		},
		{
			name:  "trigger only as a whole word",
			insts: []dockerfile.Instruction{run(1, "curlie https://nope.example")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := URLs(tt.insts)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindURLs_Options(t *testing.T) {
	t.Parallel()

	insts := []dockerfile.Instruction{
		run(3, "aria2c https://mirror.example/pkg.tar.xz"),
		run(5, "curl ftp://files.example/a.zip http://b.example/c"),
	}

	got := FindURLs(insts, Options{Triggers: []string{"aria2c", "curl"}, URLPrefix: "ftp"})
	assert.Equal(t, []URLRef{
		{URL: "ftp://files.example/a.zip", Trigger: "curl", Line: 5, EndLine: 5, Archive: true},
	}, got)

	got = FindURLs(insts, Options{Triggers: []string{"aria2c"}})
	assert.Equal(t, []URLRef{
		{URL: "https://mirror.example/pkg.tar.xz", Trigger: "aria2c", Line: 3, EndLine: 3, Archive: true},
	}, got)
}

func TestBashTrees(t *testing.T) {
	t.Parallel()

	insts := []dockerfile.Instruction{
		{Keyword: "FROM", Argument: "alpine", StartLine: 1},
		run(2, "curl http://x | sh"),
		run(3, "echo ("),
		{Keyword: "CMD", Argument: `["sh"]`, StartLine: 4},
	}

	got := BashTrees(insts)
	require.Len(t, got, 3)

	assert.Equal(t, "FROM", got[0].Keyword)
	assert.Nil(t, got[0].Trees)

	assert.Equal(t, 2, got[1].StartLine)
	require.Len(t, got[1].Trees, 1)
	assert.Equal(t, `other(command(word:"curl" word:"http://x") command(word:"sh"))`, got[1].Trees[0].Root.String())

	assert.Equal(t, "CMD", got[2].Keyword)
}
