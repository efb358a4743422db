package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mediatag/internal/history"
	"mediatag/internal/rewrite"
	"mediatag/internal/testsupport"
)

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "Verify mode: range")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected second init without --overwrite to fail")
	}
}

func TestApplyWritesOutputAndRecordsHistory(t *testing.T) {
	env := setupCLITestEnv(t)
	input := env.mediaFile(t, "clip.mp4")
	output := filepath.Join(env.baseDir, "out", "clip.mp4")

	out, _, err := runCLI(t, []string{"apply", input, "-o", output, "-m", "title=New Title", "--verify"}, env.configPath)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	requireContains(t, out, "Verified")
	requireContains(t, out, "expected 240 frames, decoded 240")
	requireContains(t, out, "Wrote "+output)

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data) != "remuxed" {
		t.Fatalf("output = %q, want stub payload", data)
	}

	out, _, err = runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "apply")
	requireContains(t, out, "verify")
	requireContains(t, out, "succeeded")
}

func TestApplyUnchangedCopiesInput(t *testing.T) {
	env := setupCLITestEnv(t)
	input := env.mediaFile(t, "clip.mkv")
	output := filepath.Join(env.baseDir, "out", "clip.mkv")

	if _, _, err := runCLI(t, []string{"apply", input, "-o", output}, env.configPath); err != nil {
		t.Fatalf("apply: %v", err)
	}
	want, _ := os.ReadFile(input)
	got, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(got) != string(want) {
		t.Fatal("expected byte-identical copy when nothing changes")
	}
}

func TestApplyErrors(t *testing.T) {
	env := setupCLITestEnv(t)
	input := env.mediaFile(t, "clip.mp4")

	if _, _, err := runCLI(t, []string{"apply", input}, env.configPath); err == nil || !strings.Contains(err.Error(), "--output") {
		t.Fatalf("expected missing output error, got %v", err)
	}

	_, _, err := runCLI(t, []string{"apply", input, "-o", input, "-m", "title=x"}, env.configPath)
	if !errors.Is(err, rewrite.ErrSamePath) {
		t.Fatalf("expected ErrSamePath, got %v", err)
	}

	_, _, err = runCLI(t, []string{"apply", input, "-o", input + ".out", "-m", "=x"}, env.configPath)
	if err == nil {
		t.Fatal("expected empty metadata key to be rejected")
	}

	out, _, err := runCLI(t, []string{"history", "--failed"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "failed")
}

func TestVerifyCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	good := env.mediaFile(t, "good.mp4")
	missing := filepath.Join(env.baseDir, "media", "missing.mp4")

	out, _, err := runCLI(t, []string{"verify", good}, env.configPath)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	requireContains(t, out, "Policy: range (discrepancy 5)")
	requireContains(t, out, "240")
	requireContains(t, out, "pass")

	out, _, err = runCLI(t, []string{"verify", "--mode", "exact", good, missing}, env.configPath)
	if err == nil {
		t.Fatal("expected failure for missing file")
	}
	requireContains(t, err.Error(), "1 of 2")
	requireContains(t, out, "Policy: exact")
	requireContains(t, out, "input not found")

	if _, _, err := runCLI(t, []string{"verify", "--mode", "bogus", good}, env.configPath); err == nil {
		t.Fatal("expected invalid mode to fail")
	}
}

func TestVerifyCommandDisabled(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithVerify("disabled", 0))
	file := env.mediaFile(t, "any.mkv")

	out, _, err := runCLI(t, []string{"verify", file}, env.configPath)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	requireContains(t, out, "Policy: disabled")
	requireContains(t, out, "pass")
}

func TestMetaCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	file := env.mediaFile(t, "song.m4a")

	out, _, err := runCLI(t, []string{"meta", file}, env.configPath)
	if err != nil {
		t.Fatalf("meta: %v", err)
	}
	requireContains(t, out, "Stub Title")
	if strings.Index(out, "artist") > strings.Index(out, "title") {
		t.Fatalf("expected keys in sorted order:\n%s", out)
	}

	out, _, err = runCLI(t, []string{"meta", "--json", file}, env.configPath)
	if err != nil {
		t.Fatalf("meta --json: %v", err)
	}
	requireContains(t, out, `"artist": "Stub Artist"`)

	if _, _, err := runCLI(t, []string{"meta", "--native", file}, env.configPath); err == nil {
		t.Fatal("expected native read of untagged file to fail")
	}
}

func TestCoversCommands(t *testing.T) {
	env := setupCLITestEnv(t)
	file := env.mediaFile(t, "movie.mp4")

	out, _, err := runCLI(t, []string{"covers", "list", file}, env.configPath)
	if err != nil {
		t.Fatalf("covers list: %v", err)
	}
	requireContains(t, out, "STREAM")
	requireContains(t, out, "2")

	target := filepath.Join(env.baseDir, "art", "cover.jpg")
	out, _, err = runCLI(t, []string{"covers", "extract", file, "-o", target}, env.configPath)
	if err != nil {
		t.Fatalf("covers extract: %v", err)
	}
	requireContains(t, out, "Wrote stream 2")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected extracted cover: %v", err)
	}

	if _, _, err := runCLI(t, []string{"covers", "extract", file}, env.configPath); err == nil {
		t.Fatal("expected missing --output to fail")
	}
}

func TestInfoCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	file := env.mediaFile(t, "movie.mp4")

	out, _, err := runCLI(t, []string{"info", file}, env.configPath)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	requireContains(t, out, "mov,mp4,m4a")
	requireContains(t, out, "2 video, 1 audio, 3 total")
	requireContains(t, out, "1920x1080")
	requireContains(t, out, "mjpeg")

	out, _, err = runCLI(t, []string{"info", "--json", file}, env.configPath)
	if err != nil {
		t.Fatalf("info --json: %v", err)
	}
	requireContains(t, out, `"codec_name": "aac"`)
}

func TestBatchCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	env.mediaFile(t, "a.mp4")
	env.mediaFile(t, "b.mkv")
	env.mediaFile(t, "notes.txt")
	env.mediaFile(t, "nested/c.mp4")
	inputDir := filepath.Join(env.baseDir, "media")
	outputDir := filepath.Join(env.baseDir, "out")

	out, _, err := runCLI(t, []string{"batch", inputDir, outputDir, "-m", "comment=batch", "--workers", "2"}, env.configPath)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	requireContains(t, out, "2 succeeded, 0 failed")
	for _, name := range []string{"a.mp4", "b.mkv"} {
		if _, err := os.Stat(filepath.Join(outputDir, name)); err != nil {
			t.Fatalf("expected output %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(outputDir, "nested", "c.mp4")); !os.IsNotExist(err) {
		t.Fatalf("expected nested file skipped without --recursive, stat err %v", err)
	}
	// Two files, each with an apply and a verify entry.
	requireHistoryCounts(t, env, 4, 0)

	out, _, err = runCLI(t, []string{"batch", "--recursive", "--no-verify", inputDir, outputDir + "-r"}, env.configPath)
	if err != nil {
		t.Fatalf("batch --recursive: %v", err)
	}
	requireContains(t, out, "3 succeeded")
	requireHistoryCounts(t, env, 7, 0)

	if _, _, err := runCLI(t, []string{"batch", inputDir, inputDir}, env.configPath); err == nil {
		t.Fatal("expected identical input and output directories to fail")
	}
}

func TestStatusCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "== Tools ==")
	requireContains(t, out, "ffmpeg version 7.1-stub")
	requireContains(t, out, "ffprobe version 7.1-stub")
	requireContains(t, out, "read/write ok")
	requireContains(t, out, "history.db")
}

func requireHistoryCounts(t *testing.T, env *cliTestEnv, succeeded, failed int) {
	t.Helper()
	store := testsupport.MustOpenHistory(t, env.cfg)
	counts, err := store.Counts(context.Background())
	if err != nil {
		t.Fatalf("Counts failed: %v", err)
	}
	if counts[history.StatusSucceeded] != succeeded || counts[history.StatusFailed] != failed {
		t.Fatalf("history counts = %v, want %d succeeded and %d failed", counts, succeeded, failed)
	}
}
