package hal

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ScriptFrame is one tick of synthetic input: a pointer position plus the key
// events delivered during that tick.
type ScriptFrame struct {
	X    int
	Y    int
	Keys []KeyEvent
}

// TypeText returns one press event per rune of s.
func TypeText(s string) []KeyEvent {
	evs := make([]KeyEvent, 0, len(s))
	for _, r := range s {
		evs = append(evs, KeyEvent{Press: true, Rune: r})
	}
	return evs
}

// LoadScript reads a script file, see ParseScript.
func LoadScript(path string) ([]ScriptFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open script %q: %w", path, err)
	}
	defer f.Close()
	return ParseScript(f)
}

// ParseScript reads one frame per line: "x y [token...]". Tokens are esc, enter,
// bksp, quit and type=<text>. Blank lines and lines starting with '#' are skipped.
func ParseScript(r io.Reader) ([]ScriptFrame, error) {
	var frames []ScriptFrame
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		fields := strings.Fields(s)
		if len(fields) < 2 {
			return nil, fmt.Errorf("script line %d: want \"x y [token...]\"", line)
		}
		x, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("script line %d: x: %w", line, err)
		}
		y, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("script line %d: y: %w", line, err)
		}
		f := ScriptFrame{X: x, Y: y}
		for _, tok := range fields[2:] {
			switch {
			case tok == "esc":
				f.Keys = append(f.Keys, KeyEvent{Code: KeyEscape, Press: true})
			case tok == "enter":
				f.Keys = append(f.Keys, KeyEvent{Code: KeyEnter, Press: true})
			case tok == "bksp":
				f.Keys = append(f.Keys, KeyEvent{Code: KeyBackspace, Press: true})
			case tok == "quit":
				f.Keys = append(f.Keys, KeyEvent{Code: KeyQuit, Press: true})
			case strings.HasPrefix(tok, "type="):
				f.Keys = append(f.Keys, TypeText(strings.TrimPrefix(tok, "type="))...)
			default:
				return nil, fmt.Errorf("script line %d: unknown token %q", line, tok)
			}
		}
		frames = append(frames, f)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return frames, nil
}
