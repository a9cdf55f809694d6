// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package localsink

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
)

func TestWriteLine(t *testing.T) {
	var output bytes.Buffer
	writer := New(Options{Output: &output, Color: ColorNever})

	writer.Write("[10:00:00] ℹ️ started", nil)

	if got, want := output.String(), "[10:00:00] ℹ️ started\n"; got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
}

func TestWriteDetailsIndented(t *testing.T) {
	var output bytes.Buffer
	writer := New(Options{Output: &output, Color: ColorNever})

	writer.Write("line", map[string]any{"disk": "/dev/sda", "free": 3})

	want := "line\n    disk: /dev/sda\n    free: 3\n"
	if got := output.String(); got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
}

func TestWriteDetailsHighlighted(t *testing.T) {
	var output bytes.Buffer
	writer := New(Options{Output: &output, Color: ColorAlways})
	if writer.Profile() == termenv.Ascii {
		t.Fatal("ColorAlways resolved to the ASCII profile")
	}

	writer.Write("line", map[string]any{"disk": "/dev/sda"})

	got := output.String()
	if !strings.Contains(got, "\x1b[") {
		t.Fatalf("structured details were not highlighted: %q", got)
	}
	if stripped := ansi.Strip(got); !strings.Contains(stripped, "    disk: /dev/sda") {
		t.Fatalf("highlighted details lost their content: %q", stripped)
	}
}

func TestWriteTextDetailsNotHighlighted(t *testing.T) {
	var output bytes.Buffer
	writer := New(Options{Output: &output, Color: ColorAlways})

	writer.Write("line", "plain trace")

	if got, want := output.String(), "line\n    plain trace\n"; got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestWriteSwallowsErrors(t *testing.T) {
	New(Options{Output: failingWriter{}, Color: ColorNever}).Write("line", "details")
	New(Options{Color: ColorNever}).Write("line", nil)
}

func TestWriteConcurrentBlocksStayContiguous(t *testing.T) {
	var output bytes.Buffer
	writer := New(Options{Output: &output, Color: ColorNever})

	var waitGroup sync.WaitGroup
	for worker := 0; worker < 8; worker++ {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			for range 50 {
				writer.Write("head", "tail")
			}
		}()
	}
	waitGroup.Wait()

	lines := strings.Split(strings.TrimSuffix(output.String(), "\n"), "\n")
	if len(lines) != 8*50*2 {
		t.Fatalf("got %d lines, want %d", len(lines), 8*50*2)
	}
	for index := 0; index < len(lines); index += 2 {
		if lines[index] != "head" || lines[index+1] != "    tail" {
			t.Fatalf("lines %d-%d interleaved: %q %q", index, index+1, lines[index], lines[index+1])
		}
	}
}

func TestParseColorMode(t *testing.T) {
	for input, want := range map[string]ColorMode{"": ColorAuto, "AUTO": ColorAuto, "always": ColorAlways, "never": ColorNever} {
		got, err := ParseColorMode(input)
		if err != nil || got != want {
			t.Errorf("ParseColorMode(%q) = %q, %v; want %q", input, got, err, want)
		}
	}
	if _, err := ParseColorMode("sometimes"); err == nil {
		t.Error("ParseColorMode(\"sometimes\") succeeded")
	}
}
