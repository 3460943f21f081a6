package terminal

import (
	"testing"
)

// scriptedInput builds an Input whose poll returns the queued chunks one
// at a time, then nothing.
func scriptedInput(chunks ...[]byte) *Input {
	i := 0
	return newInputWithPoll(func(timeoutMs int) ([]byte, error) {
		if i >= len(chunks) {
			return nil, nil
		}
		data := chunks[i]
		i++
		return data, nil
	})
}

func TestParseKeyIdle(t *testing.T) {
	in := scriptedInput()
	ev := in.ParseKey(0)
	if ev.Type != EventIdle {
		t.Errorf("Expected idle event with no input, got %+v", ev)
	}
}

func TestParseKeyPrintable(t *testing.T) {
	in := scriptedInput([]byte("aZ9 "))
	for _, want := range []string{"a", "Z", "9", " "} {
		ev := in.ParseKey(0)
		if ev.Type != EventKey || ev.Key != want {
			t.Errorf("Expected key %q, got %+v", want, ev)
		}
	}
}

func TestParseKeyControlCharacters(t *testing.T) {
	cases := []struct {
		input byte
		want  string
	}{
		{0x09, KeyTab},
		{0x0a, KeyEnter},
		{0x0d, KeyEnter},
		{0x7f, KeyBackspace},
		{0x03, "Ctrl+C"},
		{0x13, "Ctrl+S"},
		{0x01, "Ctrl+A"},
	}
	for _, tc := range cases {
		in := scriptedInput([]byte{tc.input})
		ev := in.ParseKey(0)
		if ev.Type != EventKey || ev.Key != tc.want {
			t.Errorf("Byte 0x%02x: expected %q, got %+v", tc.input, tc.want, ev)
		}
	}
}

func TestParseKeyArrows(t *testing.T) {
	cases := []struct {
		seq  string
		want string
	}{
		{"\x1b[A", KeyUp},
		{"\x1b[B", KeyDown},
		{"\x1b[C", KeyRight},
		{"\x1b[D", KeyLeft},
		{"\x1bOA", KeyUp}, // SS3 application mode
		{"\x1bOB", KeyDown},
	}
	for _, tc := range cases {
		in := scriptedInput([]byte(tc.seq))
		ev := in.ParseKey(0)
		if ev.Type != EventKey || ev.Key != tc.want {
			t.Errorf("Sequence %q: expected %q, got %+v", tc.seq, tc.want, ev)
		}
	}
}

func TestParseKeyDelete(t *testing.T) {
	in := scriptedInput([]byte("\x1b[3~"))
	ev := in.ParseKey(0)
	if ev.Type != EventKey || ev.Key != KeyDelete {
		t.Errorf("Expected Delete, got %+v", ev)
	}
}

func TestParseKeyLoneEscape(t *testing.T) {
	// A bare ESC with no continuation becomes the Escape key after the
	// bounded re-polls come back empty.
	in := scriptedInput([]byte{0x1b})
	ev := in.ParseKey(0)
	if ev.Type != EventKey || ev.Key != KeyEscape {
		t.Errorf("Expected Escape, got %+v", ev)
	}
	if in.Buffered() != 0 {
		t.Errorf("Expected empty buffer, got %d bytes", in.Buffered())
	}
}

func TestParseKeySplitSequence(t *testing.T) {
	// The tail of the arrow arrives on a later poll; the re-poll loop
	// stitches it together.
	in := scriptedInput([]byte{0x1b}, []byte("[A"))
	ev := in.ParseKey(0)
	if ev.Type != EventKey || ev.Key != KeyUp {
		t.Errorf("Expected Up from split sequence, got %+v", ev)
	}
}

func TestParseKeyEscapeThenLiteral(t *testing.T) {
	// ESC followed by an unrelated byte is a standalone Escape; the next
	// byte stays buffered.
	in := scriptedInput([]byte("\x1bq"))
	ev := in.ParseKey(0)
	if ev.Type != EventKey || ev.Key != KeyEscape {
		t.Errorf("Expected Escape, got %+v", ev)
	}
	ev = in.ParseKey(0)
	if ev.Type != EventKey || ev.Key != "q" {
		t.Errorf("Expected q, got %+v", ev)
	}
}

func TestParseKeyUTF8(t *testing.T) {
	in := scriptedInput([]byte("é本"))
	ev := in.ParseKey(0)
	if ev.Type != EventKey || ev.Key != "é" {
		t.Errorf("Expected é, got %+v", ev)
	}
	ev = in.ParseKey(0)
	if ev.Type != EventKey || ev.Key != "本" {
		t.Errorf("Expected 本, got %+v", ev)
	}
}

func TestParseKeyRefreshByte(t *testing.T) {
	in := scriptedInput()
	in.Inject(0)
	ev := in.ParseKey(0)
	if ev.Type != EventRefresh {
		t.Errorf("Expected refresh from injected zero byte, got %+v", ev)
	}
}

func TestParseKeySkipsIgnoredSequences(t *testing.T) {
	// An unrecognized CSI sequence is consumed silently and the following
	// key is returned.
	in := scriptedInput([]byte("\x1b[5~x"))
	ev := in.ParseKey(0)
	if ev.Type != EventKey || ev.Key != "x" {
		t.Errorf("Expected x after ignored sequence, got %+v", ev)
	}
}

func TestParseSGRMousePress(t *testing.T) {
	in := scriptedInput([]byte("\x1b[<0;10;5M"))
	ev := in.ParseKey(0)
	if ev.Type != EventMousePress {
		t.Fatalf("Expected mouse press, got %+v", ev)
	}
	if ev.Button != MouseLeft {
		t.Errorf("Expected left button, got %v", ev.Button)
	}
	// Wire coordinates are 1-indexed; events are grid positions.
	if ev.Row != 4 || ev.Col != 9 {
		t.Errorf("Expected (4,9), got (%d,%d)", ev.Row, ev.Col)
	}
}

func TestParseSGRMouseRelease(t *testing.T) {
	in := scriptedInput([]byte("\x1b[<0;3;3m"))
	ev := in.ParseKey(0)
	if ev.Type != EventMouseRelease || ev.Button != MouseLeft {
		t.Errorf("Expected left release, got %+v", ev)
	}
	if ev.Row != 2 || ev.Col != 2 {
		t.Errorf("Expected (2,2), got (%d,%d)", ev.Row, ev.Col)
	}
}

func TestParseSGRMouseDrag(t *testing.T) {
	in := scriptedInput([]byte("\x1b[<32;8;2M"))
	ev := in.ParseKey(0)
	if ev.Type != EventMouseDrag || ev.Button != MouseLeft {
		t.Errorf("Expected left drag, got %+v", ev)
	}
}

func TestParseSGRMouseButtons(t *testing.T) {
	cases := []struct {
		seq  string
		want MouseButton
	}{
		{"\x1b[<1;1;1M", MouseMiddle},
		{"\x1b[<2;1;1M", MouseRight},
		{"\x1b[<64;1;1M", MouseWheelUp},
		{"\x1b[<65;1;1M", MouseWheelDown},
	}
	for _, tc := range cases {
		in := scriptedInput([]byte(tc.seq))
		ev := in.ParseKey(0)
		if ev.Type != EventMousePress || ev.Button != tc.want {
			t.Errorf("Sequence %q: expected %v press, got %+v", tc.seq, tc.want, ev)
		}
	}
}

func TestParseSGRMouseMalformed(t *testing.T) {
	in := scriptedInput([]byte("\x1b[<0;bad;1Mz"))
	ev := in.ParseKey(0)
	if ev.Type != EventKey || ev.Key != "z" {
		t.Errorf("Expected malformed report skipped, got %+v", ev)
	}
}

func TestDrainNavKeys(t *testing.T) {
	// Five queued Down arrows: ParseKey returns the first, drain drops
	// the remaining four.
	var seq []byte
	for i := 0; i < 5; i++ {
		seq = append(seq, []byte("\x1b[B")...)
	}
	in := scriptedInput(seq)

	ev := in.ParseKey(0)
	if ev.Key != KeyDown {
		t.Fatalf("Expected Down, got %+v", ev)
	}
	if drained := in.DrainNavKeys(ev.Key); drained != 4 {
		t.Errorf("Expected 4 drained, got %d", drained)
	}
	if in.Buffered() != 0 {
		t.Errorf("Expected empty buffer, got %d bytes", in.Buffered())
	}
}

func TestDrainNavKeysStopsAtDifferentKey(t *testing.T) {
	in := scriptedInput([]byte("\x1b[B\x1b[B\x1b[Ax"))

	ev := in.ParseKey(0)
	if ev.Key != KeyDown {
		t.Fatalf("Expected Down, got %+v", ev)
	}
	if drained := in.DrainNavKeys(ev.Key); drained != 1 {
		t.Errorf("Expected 1 drained, got %d", drained)
	}
	// The Up arrow and the literal survive.
	if ev := in.ParseKey(0); ev.Key != KeyUp {
		t.Errorf("Expected Up preserved, got %+v", ev)
	}
	if ev := in.ParseKey(0); ev.Key != "x" {
		t.Errorf("Expected x preserved, got %+v", ev)
	}
}

func TestDrainNavKeysRejectsNonNav(t *testing.T) {
	in := scriptedInput([]byte("aaa"))
	if drained := in.DrainNavKeys("a"); drained != 0 {
		t.Errorf("Expected 0 for non-navigation key, got %d", drained)
	}
	if ev := in.ParseKey(0); ev.Key != "a" {
		t.Errorf("Expected a preserved, got %+v", ev)
	}
}

func TestDrainEscKeys(t *testing.T) {
	// Two complete non-escape-sequence ESC presses plus a trailing lone
	// ESC byte all drain.
	in := scriptedInput()
	in.Inject(0x1b, 0x1b, 0x1b)
	if drained := in.DrainEscKeys(); drained != 3 {
		t.Errorf("Expected 3 drained, got %d", drained)
	}
	if in.Buffered() != 0 {
		t.Errorf("Expected empty buffer, got %d bytes", in.Buffered())
	}
}

func TestDrainEscKeysStopsAtOtherInput(t *testing.T) {
	in := scriptedInput()
	in.Inject([]byte("\x1bq\x1b[B")...)
	// "\x1bq" decodes as Escape then q: only the Escape drains.
	if drained := in.DrainEscKeys(); drained != 1 {
		t.Errorf("Expected 1 drained, got %d", drained)
	}
	if ev := in.ParseKey(0); ev.Key != "q" {
		t.Errorf("Expected q preserved, got %+v", ev)
	}
}

func TestIsNavKey(t *testing.T) {
	for _, k := range []string{KeyUp, KeyDown, KeyLeft, KeyRight, KeyTab, KeyDelete} {
		if !IsNavKey(k) {
			t.Errorf("%q should be a navigation key", k)
		}
	}
	for _, k := range []string{KeyEnter, KeyEscape, "a", "Ctrl+C"} {
		if IsNavKey(k) {
			t.Errorf("%q should not be a navigation key", k)
		}
	}
}

func TestBufferedAndInject(t *testing.T) {
	in := scriptedInput()
	if in.Buffered() != 0 {
		t.Errorf("Expected empty buffer, got %d", in.Buffered())
	}
	in.Inject('a', 'b')
	if in.Buffered() != 2 {
		t.Errorf("Expected 2 buffered bytes, got %d", in.Buffered())
	}
}
