// Package launcher opens finished reports in the default browser.
package launcher

import (
	"net"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmehdipour/segment-reports/internal/config"
	"github.com/jmehdipour/segment-reports/internal/logger"
	"github.com/pkg/browser"
	"go.uber.org/zap"
)

// Launcher prefers the preview server and falls back to the file itself.
type Launcher struct {
	Enabled      bool
	Addr         string // preview server, host:port
	Dir          string // directory the preview server serves
	BaseURL      string
	ProbeTimeout time.Duration
	Open         func(url string) error
}

func New(c config.Config) *Launcher {
	return &Launcher{
		Enabled:      c.Launcher.Enabled,
		Addr:         c.Preview.Addr,
		Dir:          c.Preview.Dir,
		BaseURL:      c.Launcher.BaseURL,
		ProbeTimeout: c.Launcher.ProbeTimeout,
		Open:         browser.OpenURL,
	}
}

// Probe reports whether something accepts TCP connections on addr.
func Probe(addr string, timeout time.Duration) bool {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// Target picks the URL for a written report without opening it. The preview
// URL is only used for files under Dir; anything else opens as a file.
func (l *Launcher) Target(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	fileURL := (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
	if l.Addr == "" || !Probe(l.Addr, l.ProbeTimeout) {
		return fileURL, nil
	}

	rel, ok := l.served(abs)
	if !ok {
		logger.Log.Warn("report is outside the preview directory, opening as file",
			zap.String("path", abs), zap.String("preview_dir", l.Dir))
		return fileURL, nil
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return l.BaseURL + strings.Join(parts, "/"), nil
}

// served returns abs relative to Dir when Dir contains it.
func (l *Launcher) served(abs string) (string, bool) {
	dir := l.Dir
	if dir == "" {
		dir = "."
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return rel, true
}

// OpenFile opens path. Failures are logged, never returned: a report that was
// written successfully stays a successful run.
func (l *Launcher) OpenFile(path string) string {
	if !l.Enabled {
		return ""
	}
	target, err := l.Target(path)
	if err != nil {
		logger.Log.Warn("resolve report path", zap.String("path", path), zap.Error(err))
		return ""
	}
	open := l.Open
	if open == nil {
		open = browser.OpenURL
	}
	if err := open(target); err != nil {
		logger.Log.Warn("open browser", zap.String("url", target), zap.Error(err))
		return target
	}
	logger.Log.Info("opened report", zap.String("url", target))
	return target
}
