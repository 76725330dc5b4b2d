package main

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

//go:embed defaults/config.yml defaults/words/*.txt
var defaultConfigs embed.FS

// initConfig creates the config directory and extracts the embedded default
// config and word lists, skipping any that already exist.
func initConfig(dir string) error {
	if err := os.MkdirAll(filepath.Join(dir, "words"), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	return fs.WalkDir(defaultConfigs, "defaults", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel("defaults", p)
		if err != nil {
			return err
		}
		dst := filepath.Join(dir, rel)
		if _, err := os.Stat(dst); err == nil {
			fmt.Printf("  skip %s (already exists)\n", rel)
			return nil
		}

		data, err := defaultConfigs.ReadFile(p)
		if err != nil {
			return fmt.Errorf("read embedded %s: %w", rel, err)
		}

		if err := os.WriteFile(dst, data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", dst, err)
		}
		fmt.Printf("  created %s\n", rel)
		return nil
	})
}
