package config

import (
	"os"
	"path/filepath"
)

var (
	DefaultWorkdir     = filepath.Join(workdir(), "sheets-search")
	DefaultConfig      = filepath.Join(workdir(), "sheets-search", "sheets-search.yaml")
	DefaultCredentials = filepath.Join(workdir(), "sheets-search", ".google", "credentials.json")
)

func workdir() string {
	programData := os.Getenv("ProgramData")
	if programData == "" {
		return `C:\ProgramData`
	}

	return programData
}
