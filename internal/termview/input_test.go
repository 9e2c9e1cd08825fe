package termview

import "testing"

func TestEncodeKeyNamed(t *testing.T) {
	tests := []struct {
		name KeyName
		want string
	}{
		{KeyEnter, "\r"},
		{KeyBackspace, "\x7f"},
		{KeyTab, "\t"},
		{KeyEscape, "\x1b"},
		{KeyUp, "\x1b[A"},
		{KeyDown, "\x1b[B"},
		{KeyLeft, "\x1b[D"},
		{KeyRight, "\x1b[C"},
		{KeyHome, "\x1b[H"},
		{KeyEnd, "\x1b[F"},
		{KeyPageUp, "\x1b[5~"},
		{KeyPageDown, "\x1b[6~"},
		{KeyDelete, "\x1b[3~"},
		{KeyF1, "\x1bOP"},
		{KeyF5, "\x1b[15~"},
		{KeyF12, "\x1b[24~"},
	}
	for _, tc := range tests {
		got := string(EncodeKey(Key{Name: tc.name}))
		if got != tc.want {
			t.Errorf("EncodeKey(%v) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestEncodeKeyRune(t *testing.T) {
	got := string(EncodeKey(Key{Name: KeyRune, Runes: []rune("a")}))
	if got != "a" {
		t.Errorf("EncodeKey(rune a) = %q, want %q", got, "a")
	}
}

func TestEncodeKeyCtrlLetter(t *testing.T) {
	got := EncodeKey(Key{Name: KeyRune, Ctrl: true, Runes: []rune("c")})
	if len(got) != 1 || got[0] != 0x03 {
		t.Errorf("EncodeKey(Ctrl+c) = %v, want [0x03]", got)
	}
}

func TestEncodeKeyCtrlNonLetterFallsBackToRune(t *testing.T) {
	got := string(EncodeKey(Key{Name: KeyRune, Ctrl: true, Runes: []rune("3")}))
	if got != "3" {
		t.Errorf("EncodeKey(Ctrl+3) = %q, want %q", got, "3")
	}
}
