package paper

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	defaultImageTimeout  = 10 * time.Second
	defaultImageMaxBytes = 8 << 20
	tempImagePrefix      = "qpaper-img-"
)

// Image types fpdf embeds natively; everything else decodable is transcoded.
var embeddableImages = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
}

// ImageSource classifies an image reference.
type ImageSource string

const (
	SourceUnknown ImageSource = "unknown"
	SourceDataURI ImageSource = "data_uri"
	SourceLocal   ImageSource = "local"
	SourceRemote  ImageSource = "remote"
)

// ResolvedImage is an image ready for placement. Release must be called once
// placement finished, successful or not.
type ResolvedImage struct {
	Path     string
	WidthPx  int
	HeightPx int
	release  func()
}

// Release removes any temporary file backing the image.
func (img ResolvedImage) Release() {
	if img.release != nil {
		img.release()
	}
}

// ImageResolverConfig configures image resolution.
type ImageResolverConfig struct {
	TempDir     string
	Client      *http.Client
	Timeout     time.Duration
	MaxBytes    int64
	IDGenerator func() string
	Logger      Logger

	// AllowedRoots limits local images to files under these directories.
	// Empty allows any readable path.
	AllowedRoots []string
	// AllowedHosts limits remote images to these hosts and their subdomains.
	// Empty allows any host.
	AllowedHosts []string
}

// ImageResolver turns image references into local files fpdf can embed.
type ImageResolver struct {
	tempDir  string
	client   *http.Client
	timeout  time.Duration
	maxBytes int64
	newID    func() string
	logger   Logger
	roots    []string
	hosts    []string
}

// NewImageResolver creates a resolver with defaults for unset fields.
func NewImageResolver(cfg ImageResolverConfig) *ImageResolver {
	r := &ImageResolver{
		tempDir:  cfg.TempDir,
		client:   cfg.Client,
		timeout:  cfg.Timeout,
		maxBytes: cfg.MaxBytes,
		newID:    cfg.IDGenerator,
		logger:   cfg.Logger,
	}
	if r.tempDir == "" {
		r.tempDir = os.TempDir()
	}
	if r.client == nil {
		r.client = http.DefaultClient
	}
	if r.timeout <= 0 {
		r.timeout = defaultImageTimeout
	}
	if r.maxBytes <= 0 {
		r.maxBytes = defaultImageMaxBytes
	}
	if r.newID == nil {
		r.newID = func() string { return uuid.NewString() }
	}
	if r.logger == nil {
		r.logger = NopLogger{}
	}
	for _, root := range cfg.AllowedRoots {
		if root = strings.TrimSpace(root); root == "" {
			continue
		}
		if abs, err := filepath.Abs(root); err == nil {
			r.roots = append(r.roots, abs)
		}
	}
	for _, host := range cfg.AllowedHosts {
		if host = strings.Trim(strings.ToLower(strings.TrimSpace(host)), "."); host != "" {
			r.hosts = append(r.hosts, host)
		}
	}
	return r
}

// Classify reports how a reference would be resolved.
func Classify(ref string) ImageSource {
	ref = strings.TrimSpace(ref)
	switch {
	case ref == "":
		return SourceUnknown
	case strings.HasPrefix(strings.ToLower(ref), "data:image/"):
		return SourceDataURI
	}
	if info, err := os.Stat(ref); err == nil && info.Mode().IsRegular() {
		return SourceLocal
	}
	if parsed, err := url.Parse(ref); err == nil && parsed.Host != "" {
		if parsed.Scheme == "http" || parsed.Scheme == "https" {
			return SourceRemote
		}
	}
	return SourceUnknown
}

// Resolve materializes ref as an embeddable file. Failures other than a
// malformed or disallowed reference are reported as KindImage.
func (r *ImageResolver) Resolve(ctx context.Context, ref string) (ResolvedImage, error) {
	ref = strings.TrimSpace(ref)
	img, err := r.resolve(ctx, ref)
	if err != nil && KindFromError(err) == KindInternal {
		err = NewError(KindImage, "image "+imageName(ref)+" unavailable", err)
	}
	return img, err
}

func (r *ImageResolver) resolve(ctx context.Context, ref string) (ResolvedImage, error) {
	switch Classify(ref) {
	case SourceDataURI:
		data, err := decodeDataURI(ref)
		if err != nil {
			return ResolvedImage{}, err
		}
		return r.materialize(data)
	case SourceRemote:
		if !r.hostAllowed(ref) {
			return ResolvedImage{}, NewError(KindValidation, "image host not allowed", nil)
		}
		data, err := r.fetch(ctx, ref)
		if err != nil {
			return ResolvedImage{}, err
		}
		return r.materialize(data)
	case SourceLocal:
		if !r.pathAllowed(ref) {
			return ResolvedImage{}, NewError(KindValidation, "image path not allowed", nil)
		}
		return r.local(ref)
	default:
		return ResolvedImage{}, NewError(KindImage, "unresolvable image source", nil)
	}
}

func (r *ImageResolver) pathAllowed(ref string) bool {
	if len(r.roots) == 0 {
		return true
	}
	abs, err := filepath.Abs(ref)
	if err != nil {
		return false
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	for _, root := range r.roots {
		if rootPath, err := filepath.EvalSymlinks(root); err == nil {
			root = rootPath
		}
		rel, err := filepath.Rel(root, abs)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (r *ImageResolver) hostAllowed(ref string) bool {
	if len(r.hosts) == 0 {
		return true
	}
	parsed, err := url.Parse(ref)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	for _, allowed := range r.hosts {
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return true
		}
	}
	return false
}

func (r *ImageResolver) local(ref string) (ResolvedImage, error) {
	file, err := os.Open(ref)
	if err != nil {
		return ResolvedImage{}, err
	}
	defer file.Close()

	kind, err := mimetype.DetectReader(file)
	if err != nil {
		return ResolvedImage{}, err
	}
	if _, ok := embeddableImages[kind.String()]; !ok {
		data, err := os.ReadFile(ref)
		if err != nil {
			return ResolvedImage{}, err
		}
		return r.materialize(data)
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return ResolvedImage{}, err
	}
	cfg, _, err := image.DecodeConfig(file)
	if err != nil {
		return ResolvedImage{}, fmt.Errorf("decode image %s: %w", ref, err)
	}
	return ResolvedImage{Path: ref, WidthPx: cfg.Width, HeightPx: cfg.Height}, nil
}

func (r *ImageResolver) fetch(ctx context.Context, ref string) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch image: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, r.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > r.maxBytes {
		return nil, NewError(KindImage, "image exceeds size limit", nil)
	}
	return data, nil
}

// materialize writes data to a uniquely named temp file, transcoding formats
// fpdf cannot embed to PNG.
func (r *ImageResolver) materialize(data []byte) (ResolvedImage, error) {
	kind := mimetype.Detect(data)
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ResolvedImage{}, fmt.Errorf("decode %s: %w", kind.String(), err)
	}

	ext, native := embeddableImages[kind.String()]
	if !native {
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return ResolvedImage{}, fmt.Errorf("decode %s: %w", kind.String(), err)
		}
		// fpdf rejects 16-bit PNGs; flatten to 8-bit NRGBA.
		flat := image.NewNRGBA(img.Bounds())
		draw.Draw(flat, flat.Bounds(), img, img.Bounds().Min, draw.Src)
		var buf bytes.Buffer
		if err := png.Encode(&buf, flat); err != nil {
			return ResolvedImage{}, err
		}
		r.logger.Debugf("transcoded %s image to png", kind.String())
		data = buf.Bytes()
		ext = ".png"
	}

	target := filepath.Join(r.tempDir, tempImagePrefix+r.newID()+ext)
	file, err := os.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return ResolvedImage{}, err
	}
	if _, err := file.Write(data); err != nil {
		_ = file.Close()
		_ = os.Remove(target)
		return ResolvedImage{}, err
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(target)
		return ResolvedImage{}, err
	}

	logger := r.logger
	return ResolvedImage{
		Path:     target,
		WidthPx:  cfg.Width,
		HeightPx: cfg.Height,
		release: func() {
			if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
				logger.Errorf("remove temp image %s: %v", target, err)
			}
		},
	}, nil
}

func decodeDataURI(ref string) ([]byte, error) {
	header, payload, ok := strings.Cut(ref, ",")
	if !ok {
		return nil, NewError(KindValidation, "malformed data uri", nil)
	}
	if !strings.HasSuffix(strings.ToLower(header), ";base64") {
		return nil, NewError(KindValidation, "data uri must be base64 encoded", nil)
	}
	payload = strings.TrimSpace(payload)
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
	}
	if err != nil {
		return nil, NewError(KindValidation, "malformed data uri", err)
	}
	return data, nil
}

// imageName is the short name shown in placeholders.
func imageName(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "image"
	}
	if strings.HasPrefix(strings.ToLower(ref), "data:") {
		return "embedded"
	}
	if parsed, err := url.Parse(ref); err == nil && parsed.Host != "" {
		if base := path.Base(parsed.Path); base != "/" && base != "." {
			return base
		}
		return parsed.Host
	}
	return filepath.Base(ref)
}
