package config

import "time"

const (
	defaultConfigPath     = "~/.config/sheetpack/config.toml"
	projectConfigName     = "sheetpack.toml"
	defaultLogDir         = "~/.local/share/sheetpack/logs"
	defaultAsepriteBinary = "aseprite"
	defaultExtension      = ".aseprite"
	defaultFilenameFormat = "{title}_{frame}"
	defaultPaddingPixels  = 1
	defaultDebounceMillis = 500
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

var defaultIgnore = []string{"**/.git", "**/node_modules"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir: defaultLogDir,
		},
		Aseprite: Aseprite{
			Binary: defaultAsepriteBinary,
		},
		Pack: Pack{
			Extension:      defaultExtension,
			FilenameFormat: defaultFilenameFormat,
			BorderPadding:  defaultPaddingPixels,
			ShapePadding:   defaultPaddingPixels,
			Ignore:         append([]string(nil), defaultIgnore...),
		},
		Watch: Watch{
			DebounceMillis: defaultDebounceMillis,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

// Debounce returns the watch debounce window as a duration.
func (w Watch) Debounce() time.Duration {
	return time.Duration(w.DebounceMillis) * time.Millisecond
}
