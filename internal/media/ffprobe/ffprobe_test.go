package ffprobe

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"mediatag/internal/media/toolexec"
)

type stubExecutor struct {
	out   toolexec.Output
	err   error
	calls [][]string
}

func (s *stubExecutor) Run(_ context.Context, tool toolexec.Tool, args []string) (toolexec.Output, error) {
	if tool != toolexec.Inspection {
		return toolexec.Output{}, errors.New("unexpected tool")
	}
	s.calls = append(s.calls, args)
	return s.out, s.err
}

const sampleJSON = `{
  "streams": [
    {"index": 0, "codec_name": "h264", "codec_type": "video", "r_frame_rate": "24/1", "disposition": {"attached_pic": 0}},
    {"index": 1, "codec_name": "aac", "codec_type": "audio"},
    {"index": 2, "codec_name": "mjpeg", "codec_type": "video", "disposition": {"attached_pic": 1}}
  ],
  "format": {"duration": "123.45", "size": "1000", "tags": {"title": "Sample"}}
}`

func TestInspectParsesSummary(t *testing.T) {
	exec := &stubExecutor{out: toolexec.Output{Text: sampleJSON}}

	result, err := Inspect(context.Background(), exec, "/media/in.mkv")
	if err != nil {
		t.Fatalf("Inspect returned error: %v", err)
	}
	if !reflect.DeepEqual(exec.calls[0], SummaryArgs("/media/in.mkv")) {
		t.Fatalf("unexpected args %v", exec.calls[0])
	}
	if result.VideoStreamCount() != 2 || result.AudioStreamCount() != 1 {
		t.Fatalf("unexpected stream counts: %d video, %d audio", result.VideoStreamCount(), result.AudioStreamCount())
	}
	if !result.Streams[2].AttachedPicture() || result.Streams[0].AttachedPicture() {
		t.Fatal("attached picture flags not decoded")
	}
	if result.DurationSeconds() != 123.45 || result.SizeBytes() != 1000 {
		t.Fatalf("unexpected format values: %v %d", result.DurationSeconds(), result.SizeBytes())
	}
	if result.Format.Tags["title"] != "Sample" {
		t.Fatalf("unexpected tags: %v", result.Format.Tags)
	}
}

func TestInspectFailsOnNonZeroExit(t *testing.T) {
	exec := &stubExecutor{out: toolexec.Output{Text: "in.mkv: Invalid data found when processing input", ExitCode: 1}}
	if _, err := Inspect(context.Background(), exec, "in.mkv"); err == nil {
		t.Fatal("expected error for failed probe")
	}
}

func TestInspectRequiresPath(t *testing.T) {
	if _, err := Inspect(context.Background(), &stubExecutor{}, "  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestResultHelpersHandleInvalidNumbers(t *testing.T) {
	result := Result{Format: Format{Duration: "bad", Size: "-1"}}
	if !math.IsNaN(result.DurationSeconds()) {
		t.Fatalf("expected duration NaN, got %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 0 {
		t.Fatalf("expected size 0, got %d", result.SizeBytes())
	}
}

func TestQueryArgs(t *testing.T) {
	if got := TimingArgs("in.mkv", ""); !reflect.DeepEqual(got, []string{
		"-v", "0", "-select_streams", "v", "-show_entries", "stream=r_frame_rate,duration", "-i", "in.mkv",
	}) {
		t.Fatalf("unexpected timing args %v", got)
	}
	if got := DispositionArgs("in.mkv"); got[len(got)-3] != "stream=index:stream_disposition=attached_pic" {
		t.Fatalf("unexpected disposition args %v", got)
	}
	if got := FormatTagsArgs("in.mkv"); !reflect.DeepEqual(got, []string{"-v", "0", "-show_entries", "format_tags", "-i", "in.mkv"}) {
		t.Fatalf("unexpected tag args %v", got)
	}
}
