package coverart

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"mediatag/internal/media/toolexec"
	"mediatag/internal/testsupport"
)

const dispositionOutput = `[STREAM]
index=0
DISPOSITION:attached_pic=0
[/STREAM]
[STREAM]
index=2
DISPOSITION:attached_pic=1
[/STREAM]
[STREAM]
index=3
DISPOSITION:attached_pic=1
[/STREAM]
`

func probeFixture(t *testing.T, text string) (*testsupport.FakeExecutor, string) {
	t.Helper()
	input := filepath.Join(t.TempDir(), "in.mkv")
	testsupport.WriteFile(t, input, 8)
	fake := testsupport.NewFakeExecutor().On(toolexec.Inspection, testsupport.Response{
		Output: toolexec.Output{Text: text},
	})
	return fake, input
}

func TestAttachedPictureStreamsInEncounterOrder(t *testing.T) {
	fake, input := probeFixture(t, dispositionOutput)
	got := NewLocator(fake, nil, nil).AttachedPictureStreams(context.Background(), input)
	if !reflect.DeepEqual(got, []int{2, 3}) {
		t.Fatalf("AttachedPictureStreams = %v, want [2 3]", got)
	}
	args := fake.CallsFor(toolexec.Inspection)[0]
	want := []string{"-v", "0", "-select_streams", "v", "-show_entries", "stream=index:stream_disposition=attached_pic", "-i", input}
	if !reflect.DeepEqual(args, want) {
		t.Fatalf("unexpected args %v", args)
	}
}

func TestAttachedPictureStreamsOnlyLiteralOne(t *testing.T) {
	fake, input := probeFixture(t, "[STREAM]\nindex=1\nDISPOSITION:attached_pic=true\n[/STREAM]\n[STREAM]\nindex=4\nDISPOSITION:attached_pic=1\n[/STREAM]\n")
	got := NewLocator(fake, nil, nil).AttachedPictureStreams(context.Background(), input)
	if !reflect.DeepEqual(got, []int{4}) {
		t.Fatalf("AttachedPictureStreams = %v, want [4]", got)
	}
}

func TestAttachedPictureStreamsDegradesToEmpty(t *testing.T) {
	badIndex, input := probeFixture(t, "[STREAM]\nindex=x\nDISPOSITION:attached_pic=1\n[/STREAM]\n")
	locator := NewLocator(badIndex, nil, nil)
	if got := locator.AttachedPictureStreams(context.Background(), input); got == nil || len(got) != 0 {
		t.Fatalf("expected empty slice for bad index, got %v", got)
	}
	if locator.Find(context.Background(), input).Known() {
		t.Fatal("expected unknown result for bad index")
	}

	missing := filepath.Join(t.TempDir(), "missing.mkv")
	if got := NewLocator(testsupport.NewFakeExecutor(), nil, nil).AttachedPictureStreams(context.Background(), missing); len(got) != 0 {
		t.Fatalf("expected empty slice for missing file, got %v", got)
	}

	if got := NewLocator(testsupport.NewFakeExecutor(), nil, nil).AttachedPictureStreams(context.Background(), input); len(got) != 0 {
		t.Fatalf("expected empty slice on launch failure, got %v", got)
	}
}

func TestExtractWritesOutput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.mkv")
	testsupport.WriteFile(t, input, 8)
	output := filepath.Join(dir, "covers", "cover.jpg")

	fake := testsupport.NewFakeExecutor().On(toolexec.Transform, testsupport.Response{
		Hook: func(args []string) error {
			return os.WriteFile(args[len(args)-1], []byte{0xff, 0xd8, 0xff}, 0o644)
		},
	})
	if !NewExtractor(fake, nil).Extract(context.Background(), input, 2, output) {
		t.Fatal("expected extraction to succeed")
	}
	want := []string{"-i", input, "-map", "0:2", "-frames:v", "1", "-c", "copy", "-y", output}
	if got := fake.CallsFor(toolexec.Transform)[0]; !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected args %v", got)
	}
}

func TestExtractReportsMissingOutput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.mkv")
	testsupport.WriteFile(t, input, 8)

	fake := testsupport.NewFakeExecutor().On(toolexec.Transform, testsupport.Response{
		Output: toolexec.Output{Text: "Stream map '0:9' matches no streams.", ExitCode: 1},
	})
	extractor := NewExtractor(fake, nil)
	if extractor.Extract(context.Background(), input, 9, filepath.Join(dir, "cover.jpg")) {
		t.Fatal("expected failure when no output is written")
	}
	if extractor.Extract(context.Background(), input, -1, filepath.Join(dir, "cover.jpg")) {
		t.Fatal("expected failure for negative index")
	}
	if len(fake.Calls()) != 1 {
		t.Fatalf("negative index should not run ffmpeg, got %d calls", len(fake.Calls()))
	}
}

func TestSniffImage(t *testing.T) {
	dir := t.TempDir()
	png := filepath.Join(dir, "cover.png")
	if err := os.WriteFile(png, []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), 0o644); err != nil {
		t.Fatalf("write png: %v", err)
	}
	text := filepath.Join(dir, "cover.jpg")
	if err := os.WriteFile(text, []byte("just some text pretending to be an image\n"), 0o644); err != nil {
		t.Fatalf("write text: %v", err)
	}

	kind, err := SniffImage(png)
	if err != nil || kind != "image/png" {
		t.Fatalf("SniffImage(png) = %q, %v", kind, err)
	}
	if _, err := SniffImage(text); !errors.Is(err, ErrNotImage) {
		t.Fatalf("expected ErrNotImage, got %v", err)
	}
	if _, err := SniffImage(filepath.Join(dir, "missing.png")); err == nil || errors.Is(err, ErrNotImage) {
		t.Fatalf("expected read error for missing file, got %v", err)
	}
}
