// Package web holds the monitor page: an HTML view that polls the monitor
// API and draws the memory line, the free runs and the recorded tasks.
package web

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// DevModeEnv, when set to true or 1, makes GetAssets read the page from the
// source tree so that edits show up without rebuilding memplace.
const DevModeEnv = "MEMPLACE_MONITOR_DEV"

//go:embed dist/*
var staticAssets embed.FS

// GetAssets returns the files of the monitor page, index.html and app.js.
// They are embedded in the binary unless DevModeEnv is set.
func GetAssets() http.FileSystem {
	if devMode() {
		dir := sourceDistDir()

		fmt.Fprintf(os.Stderr, "Serving the memplace monitor page from %s\n", dir)

		return http.Dir(dir)
	}

	dist, err := fs.Sub(staticAssets, "dist")
	if err != nil {
		panic(err)
	}

	return http.FS(dist)
}

// sourceDistDir locates dist/ next to this file in the source tree.
func sourceDistDir() string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		panic("cannot locate the monitor page sources")
	}

	return filepath.Join(filepath.Dir(file), "dist")
}

func devMode() bool {
	v := strings.ToLower(os.Getenv(DevModeEnv))

	return v == "true" || v == "1"
}
