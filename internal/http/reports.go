package http

import (
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	echo "github.com/labstack/echo/v4"
)

type reportFile struct {
	Name     string    `json:"name"`
	Format   string    `json:"format"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
	URL      string    `json:"url"`
}

// listReportsHandler lists the html and xlsx files in dir, newest first.
func listReportsHandler(dir string) echo.HandlerFunc {
	return func(c echo.Context) error {
		entries, err := os.ReadDir(dir)
		if err != nil {
			c.Logger().Errorf("read report dir failed: %v", err)

			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "cannot list reports"})
		}

		files := []reportFile{}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			ext := strings.ToLower(filepath.Ext(e.Name()))
			if ext != ".html" && ext != ".xlsx" {
				continue
			}
			info, err := e.Info()
			if err != nil {
				continue
			}
			files = append(files, reportFile{
				Name:     e.Name(),
				Format:   strings.TrimPrefix(ext, "."),
				Size:     info.Size(),
				Modified: info.ModTime().UTC(),
				URL:      "/" + e.Name(),
			})
		}
		sort.Slice(files, func(i, j int) bool {
			if !files[i].Modified.Equal(files[j].Modified) {
				return files[i].Modified.After(files[j].Modified)
			}
			return files[i].Name < files[j].Name
		})

		return c.JSON(http.StatusOK, map[string]any{
			"count":   len(files),
			"reports": files,
		})
	}
}
