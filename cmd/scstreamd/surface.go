package main

import (
	"bufio"
	"os"
	"strings"

	"github.com/gempa-oss/scstream/config"
)

// loadSurface reads a flat "key=value" text file (blank lines and lines
// starting with '#' ignored) and decodes it via config.Parse, a config
// file over flags for anything with more than a handful of settings.
func loadSurface(path string) (*config.Surface, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	raw := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		raw[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return config.Parse(raw)
}
