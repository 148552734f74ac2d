package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const greetProgram = `
command main
    PushStringFromTable 0 "Hello,"
    PushParameter 1
    Concatenate space
    Print bos
    PushStringFromTable 0 "done"
    SetReturnValue bos
end
`

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append([]string{"--color", "off"}, args...))
	err := rootCmd.Execute()
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
	cleanups = nil
	return stdout.String(), stderr.String(), err
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "greet.leoasm")
	if err := os.WriteFile(path, []byte(greetProgram), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	stdout, stderr, err := execute(t, "run", "--result", path, "--", "World")
	if err != nil {
		t.Fatalf("run: %v\n%s", err, stderr)
	}
	if stdout != "Hello, World\ndone\n" {
		t.Fatalf("stdout = %q", stdout)
	}
}

func TestAsmAndDisasmCommands(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "greet.leoasm")
	if err := os.WriteFile(src, []byte(greetProgram), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, stderr, err := execute(t, "asm", src); err != nil {
		t.Fatalf("asm: %v\n%s", err, stderr)
	}
	image := filepath.Join(dir, "greet.leob")
	if _, err := os.Stat(image); err != nil {
		t.Fatalf("image not written: %v", err)
	}
	fromSource, _, err := execute(t, "disasm", src)
	if err != nil {
		t.Fatalf("disasm source: %v", err)
	}
	fromImage, _, err := execute(t, "disasm", image)
	if err != nil {
		t.Fatalf("disasm image: %v", err)
	}
	if fromSource != fromImage || !strings.Contains(fromImage, "Print") {
		t.Fatalf("disassembly differs:\n%s\n---\n%s", fromSource, fromImage)
	}
}

func TestRunCommandReportsErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.leoasm")
	if err := os.WriteFile(path, []byte("command main\n  PushInteger 0 1\n  PushInteger 0 0\n  Divide\nend\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, stderr, err := execute(t, "run", path)
	if err == nil {
		t.Fatalf("expected a failure")
	}
	if !strings.Contains(stderr, "error LEO1007: Can't divide by zero.") {
		t.Fatalf("stderr = %q", stderr)
	}
}

func TestVersionCommand(t *testing.T) {
	t.Cleanup(func() {
		versionFlags.format, versionFlags.hash = "pretty", false
	})

	stdout, _, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(stdout, "leo ") || !strings.Contains(stdout, "(image schema 1)") {
		t.Fatalf("stdout = %q", stdout)
	}

	stdout, _, err = execute(t, "version", "--format", "json", "--hash")
	if err != nil {
		t.Fatalf("version json: %v", err)
	}
	var r buildReport
	if err := json.Unmarshal([]byte(stdout), &r); err != nil {
		t.Fatalf("decode %q: %v", stdout, err)
	}
	if r.Tool != "leo" || r.ImageSchema != 1 || r.Commit == "" || r.Built != "" {
		t.Fatalf("report = %+v", r)
	}

	if _, _, err := execute(t, "version", "--format", "xml"); err == nil {
		t.Fatalf("expected an error for --format xml")
	}
}
