// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"syscall"
)

// maxLineSize is the longest raw line the relay ingests. Longer lines
// end ingestion from that stream; the rest of its output is discarded
// so the child never blocks on a full pipe.
const maxLineSize = 1 << 20

// lineIngester receives raw output lines.
type lineIngester interface {
	IngestRawLine(line string)
}

// runChild starts command with stdin inherited and stdout and stderr
// piped into ingester, forwards signals from the channel to it, and
// waits for it to exit. The returned error is the child's
// *exec.ExitError for a non-zero exit.
func runChild(command []string, ingester lineIngester, signals <-chan os.Signal, logger *slog.Logger) error {
	child := exec.Command(command[0], command[1:]...)
	child.Stdin = os.Stdin

	stdout, err := child.StdoutPipe()
	if err != nil {
		return fmt.Errorf("child stdout: %w", err)
	}
	stderr, err := child.StderrPipe()
	if err != nil {
		return fmt.Errorf("child stderr: %w", err)
	}

	if err := child.Start(); err != nil {
		return fmt.Errorf("starting %s: %w", command[0], err)
	}

	done := make(chan struct{})
	defer close(done)
	go forwardSignals(signals, child.Process, done)

	// Both pipes must be read to EOF before Wait closes them.
	var readers sync.WaitGroup
	for name, stream := range map[string]io.Reader{"stdout": stdout, "stderr": stderr} {
		readers.Add(1)
		go func() {
			defer readers.Done()
			if err := ingestStream(stream, ingester); err != nil {
				logger.Warn("child output not ingested", "stream", name, "error", err)
				io.Copy(io.Discard, stream)
			}
		}()
	}
	readers.Wait()

	return child.Wait()
}

// forwardSignals relays signals to the child until done closes. Send
// errors mean the child already exited and are ignored.
func forwardSignals(signals <-chan os.Signal, child *os.Process, done <-chan struct{}) {
	for {
		select {
		case sig := <-signals:
			if sysSig, ok := sig.(syscall.Signal); ok {
				_ = child.Signal(sysSig)
			}
		case <-done:
			return
		}
	}
}

// ingestStream feeds every line of r to ingester until EOF.
func ingestStream(r io.Reader, ingester lineIngester) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64<<10), maxLineSize)
	for scanner.Scan() {
		ingester.IngestRawLine(scanner.Text())
	}
	return scanner.Err()
}

// ingestLines reads r until EOF or until ctx ends. Reads from r are
// not interruptible, so on cancellation the reading goroutine is left
// behind; the relay exits shortly after.
func ingestLines(ctx context.Context, r io.Reader, ingester lineIngester) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64<<10), maxLineSize)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		select {
		case line := <-lines:
			ingester.IngestRawLine(line)
		case err := <-readErr:
			return err
		case <-ctx.Done():
			return nil
		}
	}
}

func isExitError(err error) bool {
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr)
}
