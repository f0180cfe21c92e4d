//go:build windows
// +build windows

package main

// listenForKeyboard reads keys line-buffered; the Windows console
// needs more than termios tweaks for single-key input
func listenForKeyboard(c *console) {
	readKeys(c)
}
