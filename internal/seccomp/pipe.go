package seccomp

import (
	"fmt"
	"os"
)

// Pipe publishes a compiled program on the read end of an anonymous pipe,
// the transport the sandbox launcher hands to bwrap as `--seccomp <fd>`
// (§4.1). A program that fits in the pipe buffer is written and the write
// end closed before returning; a larger one is written and closed by a
// background goroutine so the caller never blocks on a slow reader.
func Pipe(p *Program) (read *os.File, err error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("seccomp: create pipe: %w", err)
	}

	data := p.Bytes()
	if len(data) > pipeBufferSize {
		go func() {
			w.Write(data)
			w.Close()
		}()
		return r, nil
	}
	n, werr := w.Write(data)
	if werr == nil {
		return r, closeWrite(w)
	}
	if n == 0 {
		r.Close()
		w.Close()
		return nil, fmt.Errorf("seccomp: write filter: %w", werr)
	}

	// Write failed part-way: retry the remainder concurrently and close our
	// end when done.
	rest := data[n:]
	go func() {
		w.Write(rest)
		w.Close()
	}()
	return r, nil
}

// pipeBufferSize is the default Linux pipe capacity; a write up to this size
// completes without a reader.
const pipeBufferSize = 64 << 10

func closeWrite(w *os.File) error {
	if err := w.Close(); err != nil {
		return fmt.Errorf("seccomp: close pipe write end: %w", err)
	}
	return nil
}
