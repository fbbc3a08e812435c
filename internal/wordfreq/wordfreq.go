// Package wordfreq builds letter frequency models from the wordfreq dataset.
package wordfreq

import (
	"archive/zip"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const pypiEndpoint = "https://pypi.org/pypi/wordfreq/json"

const dataPrefix = "wordfreq/data/"

// Wheel describes a cached wordfreq wheel.
type Wheel struct {
	Version  string
	Path     string
	Filename string
	Cached   bool
}

type pypiFile struct {
	URL         string `json:"url"`
	Filename    string `json:"filename"`
	Packagetype string `json:"packagetype"`
}

type pypiResponse struct {
	Info struct {
		Version string `json:"version"`
	} `json:"info"`
	URLs []pypiFile `json:"urls"`
}

// DownloadLatestWheel fetches the latest wordfreq wheel into cacheDir.
func DownloadLatestWheel(ctx context.Context, cacheDir string) (Wheel, error) {
	return downloadWheel(ctx, pypiEndpoint, cacheDir)
}

func downloadWheel(ctx context.Context, endpoint, cacheDir string) (Wheel, error) {
	if cacheDir == "" {
		return Wheel{}, fmt.Errorf("cache directory is required")
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return Wheel{}, fmt.Errorf("failed to create cache dir: %w", err)
	}

	resp, err := httpRequest(ctx, endpoint)
	if err != nil {
		return Wheel{}, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return Wheel{}, fmt.Errorf("unexpected pypi status: %s", resp.Status)
	}

	var payload pypiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Wheel{}, fmt.Errorf("failed to decode pypi response: %w", err)
	}
	if payload.Info.Version == "" {
		return Wheel{}, fmt.Errorf("missing version in pypi response")
	}
	file, ok := pickWheel(payload.URLs)
	if !ok {
		return Wheel{}, fmt.Errorf("no suitable wordfreq wheel found")
	}

	wheel := Wheel{Version: payload.Info.Version, Path: filepath.Join(cacheDir, file.Filename), Filename: file.Filename}
	if _, err := os.Stat(wheel.Path); err == nil {
		wheel.Cached = true
		return wheel, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return Wheel{}, fmt.Errorf("failed to stat cached wheel: %w", err)
	}

	if err := fetchTo(ctx, file.URL, wheel.Path); err != nil {
		return Wheel{}, err
	}
	return wheel, nil
}

func fetchTo(ctx context.Context, url, destPath string) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), "wordfreq-*.whl")
	if err != nil {
		return fmt.Errorf("failed to create temp wheel: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	resp, err := httpRequest(ctx, url)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected wheel status: %s", resp.Status)
	}
	if _, err := io.Copy(tmpFile, resp.Body); err != nil {
		return fmt.Errorf("failed to download wheel: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp wheel: %w", err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to move wheel into cache: %w", err)
	}
	return nil
}

func httpRequest(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// pickWheel prefers the pure-python wheel and falls back to any wheel.
func pickWheel(files []pypiFile) (pypiFile, bool) {
	for _, f := range files {
		if f.Packagetype == "bdist_wheel" && strings.HasSuffix(f.Filename, "py3-none-any.whl") {
			return f, true
		}
	}
	for _, f := range files {
		if f.Packagetype == "bdist_wheel" {
			return f, true
		}
	}
	return pypiFile{}, false
}

// ListLanguages returns the sorted language codes with word data in the wheel.
func ListLanguages(wheelPath string) ([]string, error) {
	reader, err := zip.OpenReader(wheelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open wheel: %w", err)
	}
	defer func() {
		_ = reader.Close()
	}()

	seen := map[string]struct{}{}
	for _, file := range reader.File {
		lang, _ := parseDataName(file.Name)
		if lang != "" {
			seen[lang] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return nil, fmt.Errorf("no languages found in wordfreq wheel")
	}
	out := make([]string, 0, len(seen))
	for lang := range seen {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out, nil
}

// parseDataName splits "wordfreq/data/large_ru.msgpack.gz" into ("ru", "large").
func parseDataName(name string) (lang, listType string) {
	name = strings.ToLower(name)
	if !strings.HasPrefix(name, dataPrefix) || !strings.HasSuffix(name, ".msgpack.gz") {
		return "", ""
	}
	base := strings.TrimSuffix(strings.TrimPrefix(name, dataPrefix), ".msgpack.gz")
	for _, t := range []string{"large", "small"} {
		if strings.HasPrefix(base, t+"_") {
			return strings.TrimPrefix(base, t+"_"), t
		}
	}
	return "", ""
}

// openWordList opens the largest word list available for lang.
func openWordList(reader *zip.Reader, lang string) (io.ReadCloser, error) {
	lang = strings.ToLower(lang)
	var small *zip.File
	for _, file := range reader.File {
		l, t := parseDataName(file.Name)
		if l != lang {
			continue
		}
		if t == "large" {
			return openGzip(file)
		}
		small = file
	}
	if small == nil {
		return nil, fmt.Errorf("no word list for language %q", lang)
	}
	return openGzip(small)
}

type gzipFile struct {
	*gzip.Reader
	raw io.ReadCloser
}

func (g gzipFile) Close() error {
	gerr := g.Reader.Close()
	if err := g.raw.Close(); err != nil {
		return err
	}
	return gerr
}

func openGzip(file *zip.File) (io.ReadCloser, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}
	gr, err := gzip.NewReader(rc)
	if err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	return gzipFile{Reader: gr, raw: rc}, nil
}
