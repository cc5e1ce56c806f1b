package tools_test

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"wallcrop/internal/config"
	"wallcrop/internal/services"
	"wallcrop/internal/tools"
)

type call struct {
	binary string
	args   []string
}

type stubExecutor struct {
	calls []call
	err   error
}

func (s *stubExecutor) Run(_ context.Context, binary string, args []string, _, _ func(string)) error {
	s.calls = append(s.calls, call{binary: binary, args: append([]string(nil), args...)})
	return s.err
}

func newToolbox(stub *stubExecutor) *tools.Toolbox {
	return tools.New(config.Default().Tools, nil, tools.WithExecutor(stub))
}

func TestOptimizeDispatchesByExtension(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		dst  string
		want call
	}{
		{filepath.Join(dir, "a.webp"), call{"cwebp", []string{"-q", "100", "-m", "6", "-mt", "-af", "/tmp/a.png", "-o", filepath.Join(dir, "a.webp")}}},
		{filepath.Join(dir, "a.JPG"), call{"jpegoptim", []string{"--strip-all", "/tmp/a.png", "--dest", dir}}},
		{filepath.Join(dir, "a.png"), call{"oxipng", []string{"--opt", "max", "/tmp/a.png", "--out", filepath.Join(dir, "a.png")}}},
	}
	for _, tc := range cases {
		stub := &stubExecutor{}
		if err := newToolbox(stub).Optimize(context.Background(), "/tmp/a.png", tc.dst); err != nil {
			t.Fatalf("Optimize(%s): %v", tc.dst, err)
		}
		if diff := cmp.Diff([]call{tc.want}, stub.calls, cmp.AllowUnexported(call{})); diff != "" {
			t.Fatalf("call mismatch for %s (-want +got):\n%s", tc.dst, diff)
		}
	}
}

func TestOptimizeRejectsUnknownExtension(t *testing.T) {
	stub := &stubExecutor{}
	err := newToolbox(stub).Optimize(context.Background(), "a.png", filepath.Join(t.TempDir(), "a.gif"))
	if !errors.Is(err, services.ErrInput) {
		t.Fatalf("expected input error, got %v", err)
	}
	if len(stub.calls) != 0 {
		t.Fatalf("expected no tool call, got %v", stub.calls)
	}
}

func TestUpscaleArgs(t *testing.T) {
	stub := &stubExecutor{}
	dst := filepath.Join(t.TempDir(), "a.webp")
	if err := newToolbox(stub).Upscale(context.Background(), "/src/a.png", dst, 3); err != nil {
		t.Fatalf("Upscale: %v", err)
	}
	want := []call{{"realcugan-ncnn-vulkan", []string{"-i", "/src/a.png", "-s", "3", "-o", dst}}}
	if diff := cmp.Diff(want, stub.calls, cmp.AllowUnexported(call{})); diff != "" {
		t.Fatalf("call mismatch (-want +got):\n%s", diff)
	}
	if err := newToolbox(stub).Upscale(context.Background(), "/src/a.png", dst, 1); !errors.Is(err, services.ErrProtocol) {
		t.Fatalf("expected protocol error for factor 1, got %v", err)
	}
}

func TestPreviewSkipsEmpty(t *testing.T) {
	stub := &stubExecutor{}
	box := newToolbox(stub)
	if err := box.Preview(context.Background(), nil); err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if len(stub.calls) != 0 {
		t.Fatalf("expected no hand-off, got %v", stub.calls)
	}
	if err := box.Preview(context.Background(), []string{"/w/a.webp", "/w/b.webp"}); err != nil {
		t.Fatalf("Preview: %v", err)
	}
	want := []call{{"wallpaper-ui", []string{"/w/a.webp", "/w/b.webp"}}}
	if diff := cmp.Diff(want, stub.calls, cmp.AllowUnexported(call{})); diff != "" {
		t.Fatalf("call mismatch (-want +got):\n%s", diff)
	}
}

func TestPreviewEditorFlags(t *testing.T) {
	stub := &stubExecutor{}
	box := tools.New(config.Default().Tools, nil, tools.WithExecutor(stub), tools.WithEditorFlags("--show-faces"))
	if err := box.Preview(context.Background(), []string{"/w/a.webp"}); err != nil {
		t.Fatalf("Preview: %v", err)
	}
	want := []call{{"wallpaper-ui", []string{"--show-faces", "/w/a.webp"}}}
	if diff := cmp.Diff(want, stub.calls, cmp.AllowUnexported(call{})); diff != "" {
		t.Fatalf("call mismatch (-want +got):\n%s", diff)
	}
}

func TestToolErrorsPropagate(t *testing.T) {
	stub := &stubExecutor{err: services.Wrap(services.ErrExternalTool, "cwebp", "wait", "", errors.New("boom"))}
	err := newToolbox(stub).Optimize(context.Background(), "a.png", filepath.Join(t.TempDir(), "a.webp"))
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestCommandExecutorStreamsLines(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}
	var out, errs []string
	err = tools.CommandExecutor{}.Run(context.Background(), sh, []string{"-c", "echo one; echo two; echo oops >&2"},
		func(line string) { out = append(out, line) },
		func(line string) { errs = append(errs, line) },
	)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if diff := cmp.Diff([]string{"one", "two"}, out); diff != "" {
		t.Fatalf("stdout mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"oops"}, errs); diff != "" {
		t.Fatalf("stderr mismatch (-want +got):\n%s", diff)
	}
}

func TestCommandExecutorFailures(t *testing.T) {
	err := tools.CommandExecutor{}.Run(context.Background(), filepath.Join(t.TempDir(), "missing-binary"), nil, nil, nil)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error for spawn failure, got %v", err)
	}
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("sh not available")
	}
	err = tools.CommandExecutor{}.Run(context.Background(), "/bin/sh", []string{"-c", "echo bad >&2; exit 3"}, nil, nil)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error for exit status, got %v", err)
	}
}

func TestCommandExecutorStopsOnCancel(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("sh not available")
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	start := time.Now()
	err := tools.CommandExecutor{}.Run(ctx, "/bin/sh", []string{"-c", "echo ready; exec sleep 30"},
		func(string) { cancel() }, nil)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error after cancel, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Fatalf("tool was not stopped on cancel (took %s)", elapsed)
	}
}
