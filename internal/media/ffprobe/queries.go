package ffprobe

// TimingArgs requests r_frame_rate and duration for the streams matched by
// selector (for example "v" for all video streams).
func TimingArgs(path, selector string) []string {
	if selector == "" {
		selector = "v"
	}
	return []string{
		"-v", "0",
		"-select_streams", selector,
		"-show_entries", "stream=r_frame_rate,duration",
		"-i", path,
	}
}

// FormatTagsArgs requests container-level tags.
func FormatTagsArgs(path string) []string {
	return []string{
		"-v", "0",
		"-show_entries", "format_tags",
		"-i", path,
	}
}

// DispositionArgs requests the index and attached_pic disposition of every
// video stream.
func DispositionArgs(path string) []string {
	return []string{
		"-v", "0",
		"-select_streams", "v",
		"-show_entries", "stream=index:stream_disposition=attached_pic",
		"-i", path,
	}
}

// SummaryArgs requests the JSON stream and format summary used by Inspect.
func SummaryArgs(path string) []string {
	return []string{
		"-v", "error",
		"-hide_banner",
		"-show_format",
		"-show_streams",
		"-of", "json",
		"-i", path,
	}
}
