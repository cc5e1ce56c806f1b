package config

const (
	defaultConfigPath     = "~/.config/wallcrop/config.toml"
	defaultWallpapersDir  = "~/Pictures/Wallpapers"
	defaultStoreFile      = "wallpapers.csv"
	defaultTempDir        = "/tmp"
	defaultMinWidth       = 3840
	defaultMinHeight      = 2160
	defaultPollIntervalMS = 200
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
	defaultCwebp          = "cwebp"
	defaultJpegoptim      = "jpegoptim"
	defaultOxipng         = "oxipng"
	defaultUpscaler       = "realcugan-ncnn-vulkan"
	defaultDetector       = "anime-face-detector"
	defaultEditor         = "wallpaper-ui"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WallpapersDir: defaultWallpapersDir,
			TempDir:       defaultTempDir,
		},
		Pipeline: Pipeline{
			MinWidth:       defaultMinWidth,
			MinHeight:      defaultMinHeight,
			PollIntervalMS: defaultPollIntervalMS,
		},
		Tools: Tools{
			Cwebp:     defaultCwebp,
			Jpegoptim: defaultJpegoptim,
			Oxipng:    defaultOxipng,
			Upscaler:  defaultUpscaler,
			Detector:  defaultDetector,
			Editor:    defaultEditor,
		},
		Resolutions: []Resolution{
			{Name: "HD", Ratio: "1920x1080"},
			{Name: "Ultrawide", Ratio: "3440x1440"},
			{Name: "Framework", Ratio: "2256x1504"},
			{Name: "Vertical", Ratio: "1440x2560"},
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
