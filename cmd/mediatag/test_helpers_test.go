package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"mediatag/internal/config"
	"mediatag/internal/testsupport"
)

const ffprobeStub = `#!/bin/sh
case "$*" in
  *-version*)
    echo "ffprobe version 7.1-stub"
    ;;
  *"stream=r_frame_rate,duration"*)
    printf '[STREAM]\nr_frame_rate=24/1\nduration=10.000000\n[/STREAM]\n'
    ;;
  *format_tags*)
    printf '[FORMAT]\nTAG:title=Stub Title\nTAG:artist=Stub Artist\n[/FORMAT]\n'
    ;;
  *stream_disposition*)
    printf '[STREAM]\nindex=0\nDISPOSITION:attached_pic=0\n[/STREAM]\n[STREAM]\nindex=2\nDISPOSITION:attached_pic=1\n[/STREAM]\n'
    ;;
  *-show_streams*)
    printf '{"streams":[{"index":0,"codec_name":"h264","codec_type":"video","width":1920,"height":1080,"r_frame_rate":"24/1","disposition":{"attached_pic":0}},{"index":1,"codec_name":"aac","codec_type":"audio","r_frame_rate":"0/0"},{"index":2,"codec_name":"mjpeg","codec_type":"video","width":600,"height":600,"r_frame_rate":"90000/1","disposition":{"attached_pic":1}}],"format":{"filename":"x","nb_streams":3,"format_name":"mov,mp4,m4a","duration":"10.000000","size":"4096"}}'
    ;;
  *)
    exit 1
    ;;
esac
`

// ffmpegStub reports 240 decoded frames on null decodes and otherwise writes
// a placeholder to its last argument.
const ffmpegStub = `#!/bin/sh
case "$*" in
  *-version*)
    echo "ffmpeg version 7.1-stub"
    exit 0
    ;;
  *"-f null"*)
    printf 'frame=  120 fps=0.0 q=-0.0 size=N/A\rframe=  240 fps=480 q=-0.0 Lsize=N/A\n' >&2
    exit 0
    ;;
esac
for last; do :; done
printf 'remuxed' > "$last"
`

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("MEDIATAG_FFMPEG", "")
	t.Setenv("MEDIATAG_FFPROBE", "")

	binDir := filepath.Join(base, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("mkdir bin: %v", err)
	}
	cfg.Tools.FFmpeg = writeStub(t, binDir, "ffmpeg", ffmpegStub)
	cfg.Tools.FFprobe = writeStub(t, binDir, "ffprobe", ffprobeStub)

	configPath := filepath.Join(base, "mediatag.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func writeStub(t *testing.T, dir, name, script string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	return path
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q\n--- output ---\n%s", needle, haystack)
	}
}

func (env *cliTestEnv) mediaFile(t *testing.T, rel string) string {
	t.Helper()
	path := filepath.Join(env.baseDir, "media", rel)
	testsupport.WriteFile(t, path, 2048)
	return path
}
