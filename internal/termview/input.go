package termview

// Key identifies a key press to forward to the PTY, independent of the
// TUI library's own key event representation.
type Key struct {
	Name  KeyName
	Ctrl  bool
	Runes []rune // set when Name == KeyRune
}

// KeyName enumerates the non-printable keys the embedded terminal
// understands.
type KeyName int

const (
	KeyRune KeyName = iota
	KeyEnter
	KeyBackspace
	KeyTab
	KeyEscape
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyDelete
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
)

var namedKeyBytes = map[KeyName][]byte{
	KeyEnter:     {'\r'},
	KeyBackspace: {0x7f},
	KeyTab:       {'\t'},
	KeyEscape:    {0x1b},
	KeyUp:        []byte("\x1b[A"),
	KeyDown:      []byte("\x1b[B"),
	KeyRight:     []byte("\x1b[C"),
	KeyLeft:      []byte("\x1b[D"),
	KeyHome:      []byte("\x1b[H"),
	KeyEnd:       []byte("\x1b[F"),
	KeyPageUp:    []byte("\x1b[5~"),
	KeyPageDown:  []byte("\x1b[6~"),
	KeyDelete:    []byte("\x1b[3~"),
	KeyF1:        []byte("\x1bOP"),
	KeyF2:        []byte("\x1bOQ"),
	KeyF3:        []byte("\x1bOR"),
	KeyF4:        []byte("\x1bOS"),
	KeyF5:        []byte("\x1b[15~"),
	KeyF6:        []byte("\x1b[17~"),
	KeyF7:        []byte("\x1b[18~"),
	KeyF8:        []byte("\x1b[19~"),
	KeyF9:        []byte("\x1b[20~"),
	KeyF10:       []byte("\x1b[21~"),
	KeyF11:       []byte("\x1b[23~"),
	KeyF12:       []byte("\x1b[24~"),
}

// EncodeKey converts a Key into the byte sequence a real terminal would
// send to the foreground process for that key press.
func EncodeKey(k Key) []byte {
	if k.Name == KeyRune {
		if len(k.Runes) == 1 && k.Ctrl {
			if b, ok := ctrlByte(k.Runes[0]); ok {
				return []byte{b}
			}
		}
		return []byte(string(k.Runes))
	}
	if b, ok := namedKeyBytes[k.Name]; ok {
		return b
	}
	return nil
}

// ctrlByte maps a letter to its control-code byte (Ctrl+A -> 0x01, ...,
// Ctrl+Z -> 0x1A).
func ctrlByte(r rune) (byte, bool) {
	upper := r
	if upper >= 'a' && upper <= 'z' {
		upper -= 'a' - 'A'
	}
	if upper < 'A' || upper > 'Z' {
		return 0, false
	}
	return byte(upper - 'A' + 1), true
}
