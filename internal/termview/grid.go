package termview

import (
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"
)

// maxCSILen bounds the runes consumed inside a single CSI sequence, so a
// malformed or adversarial stream cannot silently suppress all output.
const maxCSILen = 256

type escapeMode uint8

const (
	escapeNone escapeMode = iota
	escapeInitial
	escapeCSI
	escapeOSC
)

// grid is a fixed-size, ring-buffered screen of styled cells driven by a
// small VT-100-ish escape sequence parser.
type grid struct {
	cols int
	rows int

	lines [][]Cell
	head  int // physical index of logical row 0 (ring rotation point)
	row   int
	col   int

	curFG, curBG                      Color
	curBold, curUnderline, curInverse bool

	escapeMode    escapeMode
	oscEscPending bool
	csiParams     strings.Builder
	csiLen        int

	remainder [utf8.UTFMax]byte
	remLen    int
}

func newGrid(cols, rows int) *grid {
	cols, rows = sanitizeSize(cols, rows)
	lines := make([][]Cell, rows)
	for i := range lines {
		lines[i] = make([]Cell, 0, cols)
	}
	return &grid{cols: cols, rows: rows, lines: lines}
}

func sanitizeSize(cols, rows int) (int, int) {
	if cols <= 0 {
		cols = defaultCols
	}
	if rows <= 0 {
		rows = defaultRows
	}
	return cols, rows
}

func (g *grid) physIdx(logicalRow int) int {
	return (g.head + logicalRow) % len(g.lines)
}

// Size returns the current grid dimensions.
func (g *grid) Size() (int, int) { return g.cols, g.rows }

// Resize reshapes the grid, linearizing the ring buffer first so rows stay
// in logical order across the change.
func (g *grid) Resize(cols, rows int) {
	cols, rows = sanitizeSize(cols, rows)
	g.resetEscape()

	if rows != g.rows {
		oldRows := g.rows
		if oldRows > len(g.lines) {
			oldRows = len(g.lines)
		}
		linearized := make([][]Cell, oldRows)
		for i := 0; i < oldRows; i++ {
			linearized[i] = g.lines[g.physIdx(i)]
		}

		newLines := make([][]Cell, rows)
		if rows > oldRows {
			copy(newLines, linearized)
			for i := oldRows; i < rows; i++ {
				newLines[i] = make([]Cell, 0, cols)
			}
		} else {
			start := 0
			if g.row >= rows {
				start = g.row - rows + 1
			}
			copy(newLines, linearized[start:])
			g.row -= start
		}
		g.lines = newLines
		g.head = 0
	}

	for i := range g.lines {
		if len(g.lines[i]) > cols {
			g.lines[i] = g.lines[i][:cols]
		}
	}

	g.cols = cols
	g.rows = rows
	if g.col > g.cols {
		g.col = g.cols
	}
	if g.row >= g.rows {
		g.row = g.rows - 1
	}
	if g.row < 0 {
		g.row = 0
	}
}

// Write feeds chunk through the emulator. The returned error is always
// nil; the signature satisfies io.Writer.
func (g *grid) Write(chunk []byte) (int, error) {
	n := len(chunk)

	if g.remLen > 0 {
		need := utf8NeedBytes(g.remainder[0]) - g.remLen
		if need > len(chunk) {
			copy(g.remainder[g.remLen:], chunk)
			g.remLen += len(chunk)
			return n, nil
		}
		copy(g.remainder[g.remLen:], chunk[:need])
		r, _ := utf8.DecodeRune(g.remainder[:g.remLen+need])
		g.consumeRune(r)
		chunk = chunk[need:]
		g.remLen = 0
	}

	for len(chunk) > 0 {
		b := chunk[0]
		if b < utf8.RuneSelf {
			g.consumeRune(rune(b))
			chunk = chunk[1:]
			continue
		}

		r, size := utf8.DecodeRune(chunk)
		if r == utf8.RuneError && size == 1 {
			if !utf8.FullRune(chunk) {
				g.remLen = copy(g.remainder[:], chunk)
				break
			}
			chunk = chunk[1:]
			continue
		}
		g.consumeRune(r)
		chunk = chunk[size:]
	}
	return n, nil
}

func utf8NeedBytes(b byte) int {
	switch {
	case b < 0x80:
		return 1
	case b < 0xE0:
		return 2
	case b < 0xF0:
		return 3
	default:
		return 4
	}
}

// Rows returns the visible grid, oldest logical row first.
func (g *grid) Rows() [][]Cell {
	out := make([][]Cell, g.rows)
	for i := 0; i < g.rows; i++ {
		out[i] = g.lines[g.physIdx(i)]
	}
	return out
}

func (g *grid) consumeRune(r rune) {
	if g.escapeMode != escapeNone {
		g.consumeEscapeRune(r)
		return
	}

	switch r {
	case 0x1b:
		g.escapeMode = escapeInitial
	case '\r':
		g.col = 0
	case '\n':
		g.newLine()
	case '\b':
		if g.col > 0 {
			g.col--
		}
	case '\t':
		spaces := 8 - (g.col % 8)
		for i := 0; i < spaces; i++ {
			g.putRune(' ')
		}
	default:
		if r < 0x20 || r == 0x7f {
			return
		}
		g.putRune(r)
	}
}

func (g *grid) consumeEscapeRune(r rune) {
	switch g.escapeMode {
	case escapeInitial:
		switch r {
		case '[':
			g.escapeMode = escapeCSI
			g.csiLen = 0
			g.csiParams.Reset()
		case ']':
			g.escapeMode = escapeOSC
			g.oscEscPending = false
		default:
			g.resetEscape()
		}
	case escapeCSI:
		g.csiLen++
		switch {
		case r >= 0x40 && r <= 0x7e:
			g.applyCSI(byte(r), g.csiParams.String())
			g.resetEscape()
		case r == '\r' || r == '\n':
			g.resetEscape()
		case g.csiLen >= maxCSILen:
			slog.Warn("[termview] CSI sequence exceeded max length, resetting parser", "csiLen", g.csiLen)
			g.resetEscape()
		default:
			g.csiParams.WriteRune(r)
		}
	case escapeOSC:
		if r == 0x07 {
			g.resetEscape()
			return
		}
		if g.oscEscPending && r == '\\' {
			g.resetEscape()
			return
		}
		g.oscEscPending = r == 0x1b
		if r == '\r' || r == '\n' {
			g.resetEscape()
		}
	default:
		g.resetEscape()
	}
}

func (g *grid) resetEscape() {
	g.escapeMode = escapeNone
	g.oscEscPending = false
	g.csiLen = 0
	g.csiParams.Reset()
}

// applyCSI dispatches a completed CSI sequence on its final byte, with
// params holding the raw (unparsed) parameter bytes seen before it.
func (g *grid) applyCSI(final byte, params string) {
	switch final {
	case 'm':
		g.applySGR(params)
	case 'A':
		g.row -= csiCount(params)
		g.clampCursor()
	case 'B':
		g.row += csiCount(params)
		g.clampCursor()
	case 'C':
		g.col += csiCount(params)
		g.clampCursor()
	case 'D':
		g.col -= csiCount(params)
		g.clampCursor()
	case 'H', 'f':
		row, col := csiPosition(params)
		g.row, g.col = row, col
		g.clampCursor()
	case 'K':
		g.eraseLine(params)
	case 'J':
		g.eraseDisplay(params)
	}
}

func (g *grid) clampCursor() {
	if g.row < 0 {
		g.row = 0
	}
	if g.row >= g.rows {
		g.row = g.rows - 1
	}
	if g.col < 0 {
		g.col = 0
	}
	if g.col > g.cols {
		g.col = g.cols
	}
}

func csiCount(params string) int {
	n, err := strconv.Atoi(params)
	if err != nil || n <= 0 {
		return 1
	}
	return n
}

func csiPosition(params string) (row, col int) {
	parts := strings.Split(params, ";")
	row, col = 1, 1
	if len(parts) > 0 {
		if n, err := strconv.Atoi(parts[0]); err == nil && n > 0 {
			row = n
		}
	}
	if len(parts) > 1 {
		if n, err := strconv.Atoi(parts[1]); err == nil && n > 0 {
			col = n
		}
	}
	return row - 1, col - 1
}

func (g *grid) eraseLine(params string) {
	idx := g.physIdx(g.row)
	line := g.lines[idx]
	switch params {
	case "1":
		for i := 0; i < g.col && i < len(line); i++ {
			line[i] = blankCell()
		}
	case "2":
		g.lines[idx] = line[:0]
	default:
		if g.col < len(line) {
			g.lines[idx] = line[:g.col]
		}
	}
}

func (g *grid) eraseDisplay(params string) {
	if params != "2" && params != "3" {
		g.eraseLine(params)
		return
	}
	for i := range g.lines {
		g.lines[i] = g.lines[i][:0]
	}
	g.row, g.col = 0, 0
}

// applySGR updates the active style from a semicolon-delimited SGR
// parameter string (e.g. "1;38;5;196").
func (g *grid) applySGR(params string) {
	if params == "" {
		g.resetAttrs()
		return
	}
	parts := strings.Split(params, ";")
	for i := 0; i < len(parts); i++ {
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			continue
		}
		switch {
		case n == 0:
			g.resetAttrs()
		case n == 1:
			g.curBold = true
		case n == 4:
			g.curUnderline = true
		case n == 7:
			g.curInverse = true
		case n == 22:
			g.curBold = false
		case n == 24:
			g.curUnderline = false
		case n == 27:
			g.curInverse = false
		case n >= 30 && n <= 37:
			g.curFG = indexedColor(n - 30)
		case n == 38:
			var c Color
			i, c = parseExtendedColor(parts, i)
			g.curFG = c
		case n == 39:
			g.curFG = defaultColor
		case n >= 40 && n <= 47:
			g.curBG = indexedColor(n - 40)
		case n == 48:
			var c Color
			i, c = parseExtendedColor(parts, i)
			g.curBG = c
		case n == 49:
			g.curBG = defaultColor
		case n >= 90 && n <= 97:
			g.curFG = indexedColor(n - 90 + 8)
		case n >= 100 && n <= 107:
			g.curBG = indexedColor(n - 100 + 8)
		}
	}
}

func (g *grid) resetAttrs() {
	g.curFG = defaultColor
	g.curBG = defaultColor
	g.curBold = false
	g.curUnderline = false
	g.curInverse = false
}

// parseExtendedColor consumes a "5;N" (256-color) or "2;R;G;B" (truecolor)
// sequence starting at parts[i+1], returning the index of the last
// consumed element and the resolved Color.
func parseExtendedColor(parts []string, i int) (int, Color) {
	if i+1 >= len(parts) {
		return i, defaultColor
	}
	mode := parts[i+1]
	switch mode {
	case "5":
		if i+2 < len(parts) {
			if n, err := strconv.Atoi(parts[i+2]); err == nil {
				return i + 2, indexedColor(n)
			}
		}
		return i + 1, defaultColor
	case "2":
		if i+4 < len(parts) {
			r, _ := strconv.Atoi(parts[i+2])
			gr, _ := strconv.Atoi(parts[i+3])
			b, _ := strconv.Atoi(parts[i+4])
			return i + 4, rgbColor(uint8(r), uint8(gr), uint8(b))
		}
		return i + 1, defaultColor
	default:
		return i + 1, defaultColor
	}
}

func (g *grid) putRune(r rune) {
	if g.cols <= 0 || g.rows <= 0 {
		return
	}
	if g.row >= g.rows {
		g.row = g.rows - 1
	}
	if g.col >= g.cols {
		g.newLine()
	}

	idx := g.physIdx(g.row)
	line := g.lines[idx]
	for len(line) < g.col {
		line = append(line, blankCell())
	}
	cell := Cell{
		Rune:      r,
		Width:     cellWidth(r),
		FG:        g.curFG,
		BG:        g.curBG,
		Bold:      g.curBold,
		Underline: g.curUnderline,
		Inverse:   g.curInverse,
	}
	if len(line) == g.col {
		line = append(line, cell)
	} else {
		line[g.col] = cell
	}
	if len(line) > g.cols {
		line = line[:g.cols]
	}
	g.lines[idx] = line
	g.col++
}

func (g *grid) newLine() {
	if g.rows <= 0 {
		return
	}
	if g.row < g.rows-1 {
		g.row++
		g.col = 0
		return
	}

	oldHead := g.head
	g.head = (g.head + 1) % len(g.lines)
	g.lines[oldHead] = g.lines[oldHead][:0]
	g.col = 0
}

// String renders the visible grid as plain text, discarding styling.
func (g *grid) String() string {
	if g.rows == 0 {
		return ""
	}
	var b strings.Builder
	b.Grow(g.rows * (g.cols + 1))
	for i := 0; i < g.rows; i++ {
		line := g.lines[g.physIdx(i)]
		for _, c := range line {
			b.WriteRune(c.Rune)
		}
		if i+1 < g.rows {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
