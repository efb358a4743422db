package config

const (
	defaultConfigPath       = "~/.config/mediatag/config.toml"
	defaultStateDir         = "~/.local/share/mediatag"
	defaultLogDir           = "~/.local/share/mediatag/logs"
	defaultLockDir          = "~/.local/share/mediatag/locks"
	defaultFFmpeg           = "ffmpeg"
	defaultFFprobe          = "ffprobe"
	defaultVerifyMode       = "range"
	defaultDiscrepancy      = 5
	defaultStreamSelector   = "v"
	defaultBatchWorkers     = 2
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultToolTimeoutSecs  = 0
	defaultVerifyAfterApply = true
)

var defaultExtensions = []string{".mkv", ".mp4", ".m4v", ".m4a", ".mov", ".webm"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
			LockDir:  defaultLockDir,
		},
		Tools: Tools{
			FFmpeg:         defaultFFmpeg,
			FFprobe:        defaultFFprobe,
			TimeoutSeconds: defaultToolTimeoutSecs,
		},
		Verify: Verify{
			Mode:           defaultVerifyMode,
			Discrepancy:    defaultDiscrepancy,
			StreamSelector: defaultStreamSelector,
		},
		Rewrite: Rewrite{
			PreserveCover:    true,
			PreserveMetadata: true,
		},
		Batch: Batch{
			Extensions:       append([]string(nil), defaultExtensions...),
			Workers:          defaultBatchWorkers,
			Recursive:        false,
			VerifyAfterApply: defaultVerifyAfterApply,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
