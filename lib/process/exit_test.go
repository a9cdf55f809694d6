// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"bytes"
	"errors"
	"os/exec"
	"testing"
)

func TestReport(t *testing.T) {
	var output bytes.Buffer
	report(&output, errors.New("no room configured"))
	if got := output.String(); got != "error: no room configured\n" {
		t.Errorf("report wrote %q", got)
	}
}

func TestExitCode(t *testing.T) {
	if code := ExitCode(nil); code != 0 {
		t.Errorf("ExitCode(nil) = %d", code)
	}
	if code := ExitCode(errors.New("start failed")); code != 1 {
		t.Errorf("ExitCode(plain) = %d", code)
	}

	err := exec.Command("sh", "-c", "exit 7").Run()
	if code := ExitCode(err); code != 7 {
		t.Errorf("ExitCode(exit 7) = %d, err %v", code, err)
	}

	err = exec.Command("sh", "-c", "kill -TERM $$").Run()
	if code := ExitCode(err); code != 128+15 {
		t.Errorf("ExitCode(SIGTERM) = %d, err %v", code, err)
	}
}
