package rewrite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"sync"
	"testing"

	"mediatag/internal/media/toolexec"
	"mediatag/internal/testsupport"
)

type staticLocator struct {
	indices []int
	calls   int
}

func (s *staticLocator) AttachedPictureStreams(context.Context, string) []int {
	s.calls++
	return s.indices
}

// writeOutput mimics ffmpeg by creating the last argument.
func writeOutput(content string) func([]string) error {
	return func(args []string) error {
		return os.WriteFile(args[len(args)-1], []byte(content), 0o644)
	}
}

func writePNG(t *testing.T, path string, size int64) {
	t.Helper()
	testsupport.WriteFile(t, path, size)
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	if _, err := f.WriteAt([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), 0); err != nil {
		t.Fatalf("write png header: %v", err)
	}
}

func setup(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	input := filepath.Join(dir, "in.mkv")
	testsupport.WriteFile(t, input, 4096)
	return input, filepath.Join(dir, "out", "out.mkv")
}

func TestApplyFastPathCopiesWithoutTools(t *testing.T) {
	input, output := setup(t)
	fake := testsupport.NewFakeExecutor()
	engine := New(fake, WithLockDir(filepath.Join(t.TempDir(), "locks")))

	err := engine.Apply(context.Background(), Request{
		Input:            input,
		Output:           output,
		Cover:            CoverSpec{PreserveExisting: true},
		PreserveMetadata: true,
	})
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	want, _ := os.ReadFile(input)
	got, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !slices.Equal(got, want) {
		t.Fatal("output is not a byte-identical copy")
	}
	if calls := fake.Calls(); len(calls) != 0 {
		t.Fatalf("expected no tool calls, got %v", calls)
	}
	assertNoPartials(t, filepath.Dir(output))
}

func TestApplyRejectsSamePath(t *testing.T) {
	input, _ := setup(t)
	fake := testsupport.NewFakeExecutor()
	err := New(fake).Apply(context.Background(), Request{
		Input:    input,
		Output:   filepath.Join(filepath.Dir(input), ".", "in.mkv"),
		Metadata: map[string]string{"title": "x"},
	})
	if !errors.Is(err, ErrSamePath) {
		t.Fatalf("expected ErrSamePath, got %v", err)
	}
	if len(fake.Calls()) != 0 {
		t.Fatal("no tool should run when paths are identical")
	}
}

func TestApplyPreconditions(t *testing.T) {
	input, output := setup(t)
	dir := filepath.Dir(input)
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		req  Request
		want error
	}{
		{"empty input", Request{Output: output}, ErrInputNotFound},
		{"missing input", Request{Input: filepath.Join(dir, "nope.mkv"), Output: output}, ErrInputNotFound},
		{"directory input", Request{Input: dir, Output: output}, ErrInputNotFound},
		{"empty output", Request{Input: input}, ErrOutputUnavailable},
		{"uncreatable parent", Request{Input: input, Output: filepath.Join(blocker, "sub", "out.mkv")}, ErrOutputUnavailable},
		{"directory output", Request{Input: input, Output: dir}, ErrOutputUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := testsupport.NewFakeExecutor()
			if err := New(fake).Apply(context.Background(), tt.req); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if len(fake.Calls()) != 0 {
				t.Fatal("no tool should run on precondition failure")
			}
		})
	}
}

func TestApplyCoverSizeLimit(t *testing.T) {
	input, output := setup(t)
	dir := t.TempDir()

	oversized := filepath.Join(dir, "big.png")
	writePNG(t, oversized, MaxCoverBytes+1)
	fake := testsupport.NewFakeExecutor()
	err := New(fake).Apply(context.Background(), Request{Input: input, Output: output, Cover: CoverSpec{Path: oversized}})
	if !errors.Is(err, ErrCoverTooLarge) {
		t.Fatalf("expected ErrCoverTooLarge, got %v", err)
	}
	if len(fake.Calls()) != 0 {
		t.Fatal("no tool should run for an oversized cover")
	}

	limit := filepath.Join(dir, "limit.png")
	writePNG(t, limit, MaxCoverBytes)
	fake = testsupport.NewFakeExecutor().On(toolexec.Transform, testsupport.Response{Hook: writeOutput("muxed")})
	if err := New(fake).Apply(context.Background(), Request{Input: input, Output: output, Cover: CoverSpec{Path: limit}}); err != nil {
		t.Fatalf("cover at the limit should be accepted, got %v", err)
	}
}

func TestApplyRejectsNonImageCover(t *testing.T) {
	input, output := setup(t)
	cover := filepath.Join(t.TempDir(), "cover.jpg")
	if err := os.WriteFile(cover, []byte("plain text, not a picture\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	fake := testsupport.NewFakeExecutor()
	err := New(fake).Apply(context.Background(), Request{Input: input, Output: output, Cover: CoverSpec{Path: cover}})
	if !errors.Is(err, ErrCoverNotImage) {
		t.Fatalf("expected ErrCoverNotImage, got %v", err)
	}
}

func TestApplyReplaceCover(t *testing.T) {
	input, output := setup(t)
	cover := filepath.Join(t.TempDir(), "cover.png")
	writePNG(t, cover, 64)

	fake := testsupport.NewFakeExecutor().On(toolexec.Transform, testsupport.Response{Hook: writeOutput("muxed")})
	locator := &staticLocator{indices: []int{2}}
	err := New(fake, WithLocator(locator)).Apply(context.Background(), Request{
		Input:            input,
		Output:           output,
		Cover:            CoverSpec{Path: cover},
		Metadata:         map[string]string{"title": "New"},
		PreserveMetadata: true,
	})
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	args := fake.CallsFor(toolexec.Transform)[0]
	want := []string{"-i", input, "-i", cover, "-map", "1", "-map", "0", "-disposition:0", "attached_pic", "-y", "-c", "copy", "-metadata", "title=New"}
	if !reflect.DeepEqual(args[:len(args)-1], want) {
		t.Fatalf("unexpected args %v", args)
	}
	if locator.calls != 0 {
		t.Fatal("locator should not run when replacing the cover")
	}
	got, err := os.ReadFile(output)
	if err != nil || string(got) != "muxed" {
		t.Fatalf("unexpected output %q, %v", got, err)
	}
	assertNoPartials(t, filepath.Dir(output))
}

func TestApplyRemoveCoverExcludesLocatedStreams(t *testing.T) {
	input, output := setup(t)
	fake := testsupport.NewFakeExecutor().On(toolexec.Transform, testsupport.Response{Hook: writeOutput("muxed")})
	locator := &staticLocator{indices: []int{2}}

	err := New(fake, WithLocator(locator)).Apply(context.Background(), Request{
		Input:            input,
		Output:           output,
		Cover:            CoverSpec{PreserveExisting: false},
		PreserveMetadata: true,
	})
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	args := fake.CallsFor(toolexec.Transform)[0]
	var negative []string
	for i, arg := range args {
		if arg == "-map" && i+1 < len(args) && args[i+1][0] == '-' {
			negative = append(negative, args[i+1])
		}
	}
	if !reflect.DeepEqual(negative, []string{"-0:2"}) {
		t.Fatalf("expected exactly one exclusion for stream 2, got %v in %v", negative, args)
	}
}

func TestApplyMissingCoverFallsBackToPreserve(t *testing.T) {
	input, output := setup(t)
	fake := testsupport.NewFakeExecutor()
	err := New(fake).Apply(context.Background(), Request{
		Input:            input,
		Output:           output,
		Cover:            CoverSpec{Path: filepath.Join(t.TempDir(), "gone.jpg"), PreserveExisting: true},
		PreserveMetadata: true,
	})
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if len(fake.Calls()) != 0 {
		t.Fatal("a missing cover with nothing else to change should take the copy path")
	}
}

func TestApplyStripMetadataUsesLocatorFromProbe(t *testing.T) {
	input, output := setup(t)
	fake := testsupport.NewFakeExecutor().
		On(toolexec.Inspection, testsupport.Response{Output: toolexec.Output{
			Text: "[STREAM]\nindex=0\nDISPOSITION:attached_pic=0\n[/STREAM]\n[STREAM]\nindex=3\nDISPOSITION:attached_pic=1\n[/STREAM]\n",
		}}).
		On(toolexec.Transform, testsupport.Response{Hook: writeOutput("muxed")})

	err := New(fake).Apply(context.Background(), Request{
		Input:    input,
		Output:   output,
		Metadata: map[string]string{"title": "T"},
	})
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	args := fake.CallsFor(toolexec.Transform)[0]
	want := []string{"-i", input, "-map", "0", "-map", "-0:3", "-y", "-c", "copy", "-map_metadata", "-1", "-metadata", "title=T"}
	if !reflect.DeepEqual(args[:len(args)-1], want) {
		t.Fatalf("unexpected args %v", args)
	}
}

func TestApplyTransformFailures(t *testing.T) {
	tests := []struct {
		name string
		resp testsupport.Response
	}{
		{"launch failure", testsupport.Response{Err: toolexec.ErrLaunch}},
		{"non-zero exit", testsupport.Response{Output: toolexec.Output{Text: "Invalid argument", ExitCode: 1}, Hook: writeOutput("partial")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input, output := setup(t)
			fake := testsupport.NewFakeExecutor().On(toolexec.Transform, tt.resp)
			err := New(fake).Apply(context.Background(), Request{
				Input:            input,
				Output:           output,
				Metadata:         map[string]string{"title": "T"},
				PreserveMetadata: true,
				Cover:            CoverSpec{PreserveExisting: true},
			})
			if !errors.Is(err, ErrTransform) {
				t.Fatalf("expected ErrTransform, got %v", err)
			}
			if _, statErr := os.Stat(output); !os.IsNotExist(statErr) {
				t.Fatalf("expected no output after failure, stat err %v", statErr)
			}
			assertNoPartials(t, filepath.Dir(output))
		})
	}
}

func TestApplySerializesSameOutput(t *testing.T) {
	input, output := setup(t)
	var (
		mu      sync.Mutex
		active  int
		overlap bool
	)
	fake := testsupport.NewFakeExecutor().On(toolexec.Transform, testsupport.Response{
		Hook: func(args []string) error {
			mu.Lock()
			active++
			if active > 1 {
				overlap = true
			}
			mu.Unlock()
			err := os.WriteFile(args[len(args)-1], []byte("muxed"), 0o644)
			mu.Lock()
			active--
			mu.Unlock()
			return err
		},
	})
	engine := New(fake, WithLockDir(filepath.Join(t.TempDir(), "locks")))

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = engine.Apply(context.Background(), Request{
				Input:            input,
				Output:           output,
				Metadata:         map[string]string{"title": "T"},
				PreserveMetadata: true,
				Cover:            CoverSpec{PreserveExisting: true},
			})
		}()
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			t.Fatalf("Apply returned error: %v", err)
		}
	}
	if overlap {
		t.Fatal("concurrent applies to one output overlapped")
	}
}

func assertNoPartials(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, entry := range entries {
		if entry.Name()[0] == '.' {
			t.Fatalf("leftover temp file %s", entry.Name())
		}
	}
}
