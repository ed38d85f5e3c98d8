package config

const (
	defaultSourceDir       = "gamedata"
	defaultOutDir          = "docs"
	defaultLogDir          = "~/.local/share/almanac/logs"
	defaultMinFreeMB       = 64
	defaultImagesDir       = "images"
	defaultImageManifest   = "image_manifest.json"
	defaultBundleOutDir    = "bundles"
	defaultBundleSizeMB    = 25
	defaultExcelChunkChars = 15000
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			SourceDir: defaultSourceDir,
			OutDir:    defaultOutDir,
			LogDir:    defaultLogDir,
		},
		Extract: Extract{
			WrapStoryJSON: false,
			ExcelSuffixes: []string{".json"},
			StorySuffixes: []string{".txt", ".json"},
			MinFreeMB:     defaultMinFreeMB,
		},
		Images: Images{
			Dir:        defaultImagesDir,
			Manifest:   defaultImageManifest,
			Extensions: []string{".jpg", ".jpeg", ".png", ".webp", ".gif"},
		},
		Bundle: Bundle{
			OutDir:          defaultBundleOutDir,
			SizeMB:          defaultBundleSizeMB,
			ExcelChunkChars: defaultExcelChunkChars,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
