//go:build !tinygo

package hal

import "os"

// quitOn pushes a KeyQuit for every signal received on sig until done closes.
func (k *hostKeyboard) quitOn(sig <-chan os.Signal, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case _, ok := <-sig:
			if !ok {
				return
			}
			k.push(KeyEvent{Code: KeyQuit, Press: true})
		}
	}
}
