package main

import (
	"bytes"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVerifyCommand(t *testing.T) {
	out, err := run(t, "verify", "--epoch", "12345", "--client", "client", "--nonce", "0", "--max", "36")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !strings.Contains(out, "value:       17") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if !strings.Contains(out, "6baad6f126fa53233f5120dd32225d4a9eeaea26dce58789f0b3b6efcdb0dadb") {
		t.Errorf("public hash missing:\n%s", out)
	}

	secretOut, err := run(t, "verify", "--secret", "5994471abb01112afcc18159f6cc74b4f511b99806da59b3caf5a9c173cacfc5",
		"--client", "client", "--nonce", "1", "--max", "9999")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !strings.Contains(secretOut, "value:       4986") {
		t.Errorf("unexpected output:\n%s", secretOut)
	}
}

func TestVerifyCommandErrors(t *testing.T) {
	tests := [][]string{
		{"verify", "--client", "c"},
		{"verify", "--secret", "s", "--epoch", "1", "--client", "c"},
		{"verify", "--secret", "s"},
		{"verify", "--secret", "s", "--client", "c", "--min", "5", "--max", "1"},
	}
	for _, args := range tests {
		if _, err := run(t, args...); err == nil {
			t.Errorf("%v: expected error", args)
		}
	}
}

func TestSeedCommand(t *testing.T) {
	out, err := run(t, "seed", "--epoch", "12345")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	for _, want := range []string{
		"epoch:       12345",
		"starts:      1970-09-15T04:30:00Z",
		"secret seed: 5994471abb01112afcc18159f6cc74b4f511b99806da59b3caf5a9c173cacfc5",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	out, err = run(t, "seed", "--at", "1970-09-15T04:59:59Z")
	if err != nil {
		t.Fatalf("seed --at: %v", err)
	}
	if !strings.Contains(out, "epoch:       12345") {
		t.Errorf("unexpected epoch:\n%s", out)
	}
}
