package main

import (
	"io"
	"os"
)

// readKeys feeds stdin to the console one byte at a time
func readKeys(c *console) {
	readKeysFrom(os.Stdin, c)
}

func readKeysFrom(r io.Reader, c *console) {
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if err == io.EOF {
			return
		}
		if err != nil || n == 0 {
			continue
		}
		if c.handleKey(buf[0]) {
			return
		}
	}
}
