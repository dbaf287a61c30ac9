package config

import (
	"strconv"
	"strings"
	"time"
)

// Config holds the qpaper server configuration.
type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	History HistoryConfig
	Paper   PaperConfig
	Preview PreviewConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host     string
	Port     string
	BasePath string
	// MaxBodyBytes caps JSON request bodies.
	MaxBodyBytes int64
}

// StorageConfig controls where generated PDFs are written and how they are
// linked.
type StorageConfig struct {
	ArtifactDir string
	// BaseURL prefixes artifact keys to build public download links.
	BaseURL string
	// TempDir holds decoded images while a paper renders.
	TempDir string
}

// HistoryConfig points at the sqlite database that records generations.
type HistoryConfig struct {
	DSN string
}

// PaperConfig holds rendering and retention settings.
type PaperConfig struct {
	BengaliFont      string
	Letterhead       string
	FilenameTemplate string
	Retention        time.Duration
	CleanupInterval  time.Duration
	ImageTimeout     time.Duration
	// ImageRoots and ImageHosts restrict where paper images may come from.
	ImageRoots []string
	ImageHosts []string
}

// PreviewConfig controls the HTML/Chromium preview renderer.
type PreviewConfig struct {
	Enabled       bool
	ChromiumPath  string
	Headless      bool
	Timeout       time.Duration
	Args          []string
	PageMargin    float64
	BlockExternal bool
}

// Defaults returns a Config with sensible defaults.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Host:         "localhost",
			Port:         "8080",
			BasePath:     "/api/papers",
			MaxBodyBytes: 16 << 20,
		},
		Storage: StorageConfig{
			ArtifactDir: "./papers",
		},
		History: HistoryConfig{
			DSN: "file:qpaper.db?cache=shared",
		},
		Paper: PaperConfig{
			Retention:       30 * 24 * time.Hour,
			CleanupInterval: time.Hour,
			ImageTimeout:    10 * time.Second,
		},
		Preview: PreviewConfig{
			Enabled:    true,
			Headless:   true,
			Timeout:    30 * time.Second,
			PageMargin: 40,
		},
	}
}

// FromEnv overlays environment values onto cfg. Unparseable values are
// ignored.
func FromEnv(cfg Config, getenv func(string) string) Config {
	if getenv == nil {
		return cfg
	}

	if port := getenv("PORT"); port != "" {
		cfg.Server.Port = port
	}
	if host := getenv("HOST"); host != "" {
		cfg.Server.Host = host
	}
	if base := getenv("QPAPER_BASE_PATH"); base != "" {
		cfg.Server.BasePath = base
	}
	if limit := getenv("QPAPER_MAX_BODY_BYTES"); limit != "" {
		if parsed, err := strconv.ParseInt(limit, 10, 64); err == nil && parsed > 0 {
			cfg.Server.MaxBodyBytes = parsed
		}
	}

	if dir := getenv("ARTIFACT_DIR"); dir != "" {
		cfg.Storage.ArtifactDir = dir
	}
	if baseURL := getenv("QPAPER_BASE_URL"); baseURL != "" {
		cfg.Storage.BaseURL = baseURL
	}
	if tmp := getenv("QPAPER_TEMP_DIR"); tmp != "" {
		cfg.Storage.TempDir = tmp
	}

	if dsn := getenv("QPAPER_DB_DSN"); dsn != "" {
		cfg.History.DSN = dsn
	}

	if font := getenv("QPAPER_BENGALI_FONT"); font != "" {
		cfg.Paper.BengaliFont = font
	}
	if letterhead := getenv("QPAPER_LETTERHEAD"); letterhead != "" {
		cfg.Paper.Letterhead = letterhead
	}
	if tpl := getenv("QPAPER_FILENAME_TEMPLATE"); tpl != "" {
		cfg.Paper.FilenameTemplate = tpl
	}
	if d, ok := duration(getenv("QPAPER_RETENTION")); ok {
		cfg.Paper.Retention = d
	}
	if d, ok := duration(getenv("QPAPER_CLEANUP_INTERVAL")); ok {
		cfg.Paper.CleanupInterval = d
	}
	if d, ok := duration(getenv("QPAPER_IMAGE_TIMEOUT")); ok {
		cfg.Paper.ImageTimeout = d
	}
	if roots := getenv("QPAPER_IMAGE_ROOTS"); roots != "" {
		cfg.Paper.ImageRoots = splitCSV(roots)
	}
	if hosts := getenv("QPAPER_IMAGE_HOSTS"); hosts != "" {
		cfg.Paper.ImageHosts = splitCSV(hosts)
	}

	if enabled := getenv("QPAPER_PREVIEW_ENABLED"); enabled != "" {
		if parsed, err := strconv.ParseBool(enabled); err == nil {
			cfg.Preview.Enabled = parsed
		}
	}
	if path := getenv("QPAPER_CHROMIUM_PATH"); path != "" {
		cfg.Preview.ChromiumPath = path
	}
	if headless := getenv("QPAPER_CHROMIUM_HEADLESS"); headless != "" {
		if parsed, err := strconv.ParseBool(headless); err == nil {
			cfg.Preview.Headless = parsed
		}
	}
	if d, ok := duration(getenv("QPAPER_CHROMIUM_TIMEOUT")); ok {
		cfg.Preview.Timeout = d
	}
	if args := getenv("QPAPER_CHROMIUM_ARGS"); args != "" {
		cfg.Preview.Args = splitCSV(args)
	}
	if margin := getenv("QPAPER_PREVIEW_MARGIN"); margin != "" {
		if parsed, err := strconv.ParseFloat(margin, 64); err == nil && parsed > 0 {
			cfg.Preview.PageMargin = parsed
		}
	}
	if block := getenv("QPAPER_PREVIEW_BLOCK_EXTERNAL"); block != "" {
		if parsed, err := strconv.ParseBool(block); err == nil {
			cfg.Preview.BlockExternal = parsed
		}
	}
	return cfg
}

// Addr is the listen address.
func (c Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// duration accepts Go durations ("90m") or whole seconds ("300").
func duration(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return 0, false
		}
		return time.Duration(secs) * time.Second, true
	}
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		return 0, false
	}
	return d, true
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
