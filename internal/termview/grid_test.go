package termview

import "testing"

func TestGridWrite(t *testing.T) {
	tests := []struct {
		name  string
		cols  int
		rows  int
		input string
		want  string
	}{
		{
			name:  "simple text",
			cols:  20,
			rows:  2,
			input: "hello",
			want:  "hello\n",
		},
		{
			name:  "scroll keeps tail rows",
			cols:  12,
			rows:  2,
			input: "line1\nline2\nline3",
			want:  "line2\nline3",
		},
		{
			name:  "line wrapping at column boundary",
			cols:  5,
			rows:  3,
			input: "abcdefgh",
			want:  "abcde\nfgh\n",
		},
		{
			name:  "carriage return overwrites",
			cols:  10,
			rows:  2,
			input: "AAAA\rBB",
			want:  "BBAA\n",
		},
		{
			name:  "backspace moves cursor back",
			cols:  10,
			rows:  2,
			input: "abc\b\bXY",
			want:  "aXY\n",
		},
		{
			name:  "tab stops at 8-column boundary",
			cols:  20,
			rows:  2,
			input: "a\tb",
			want:  "a       b\n",
		},
		{
			name:  "SGR codes leave plain text intact",
			cols:  40,
			rows:  2,
			input: "\x1b[31mred\x1b[0m normal",
			want:  "red normal\n",
		},
		{
			name:  "extended 256-color codes leave plain text intact",
			cols:  20,
			rows:  2,
			input: "\x1b[38;5;196mcolor\x1b[0m",
			want:  "color\n",
		},
		{
			name:  "erase display clears grid",
			cols:  20,
			rows:  2,
			input: "stale\x1b[2Jcleared",
			want:  "cleared\n",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := newGrid(tc.cols, tc.rows)
			g.Write([]byte(tc.input))
			if got := g.String(); got != tc.want {
				t.Errorf("String() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestGridSGRTracksStyle(t *testing.T) {
	g := newGrid(20, 2)
	g.Write([]byte("\x1b[1;31mbold red\x1b[0m plain"))

	rows := g.Rows()
	line := rows[0]
	if !line[0].Bold {
		t.Error("expected first cell to be bold")
	}
	if line[0].FG.IsDefault() {
		t.Error("expected first cell to carry an explicit foreground color")
	}
	plainIdx := len("bold red") + 1
	if line[plainIdx].Bold {
		t.Error("expected style to reset after SGR 0")
	}
	if !line[plainIdx].FG.IsDefault() {
		t.Error("expected foreground to reset to default after SGR 0")
	}
}

func TestGridSGRTruecolor(t *testing.T) {
	g := newGrid(10, 1)
	g.Write([]byte("\x1b[38;2;10;20;30mx"))
	rows := g.Rows()
	fg := rows[0][0].FG
	hex := fg.Hex()
	if hex != "#0a141e" {
		t.Errorf("Hex() = %q, want %q", hex, "#0a141e")
	}
}

func TestGridCursorPositioning(t *testing.T) {
	g := newGrid(10, 3)
	g.Write([]byte("\x1b[2;3Hx"))
	rows := g.Rows()
	if rows[1][2].Rune != 'x' {
		t.Errorf("expected cursor positioned at row 1 col 2, rows=%q", rowsToStrings(rows))
	}
}

func TestGridResizeGrowAndShrink(t *testing.T) {
	g := newGrid(10, 2)
	g.Write([]byte("line1\nline2"))
	g.Resize(10, 4)
	if got, want := g.String(), "line1\nline2\n\n"; got != want {
		t.Errorf("after grow, String() = %q, want %q", got, want)
	}

	g.Resize(10, 1)
	if got, want := g.String(), "line2"; got != want {
		t.Errorf("after shrink, String() = %q, want %q", got, want)
	}
}

func TestGridWriteSplitMultibyteRune(t *testing.T) {
	g := newGrid(10, 1)
	b := []byte("é")
	g.Write(b[:1])
	g.Write(b[1:])
	if got, want := g.String(), "é"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func rowsToStrings(rows [][]Cell) []string {
	out := make([]string, len(rows))
	for i, line := range rows {
		var s []rune
		for _, c := range line {
			s = append(s, c.Rune)
		}
		out[i] = string(s)
	}
	return out
}
