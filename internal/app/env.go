package app

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/goextract/internal/failure"
)

// LoadEnvFiles loads dotenv files into the process environment. Later files
// override earlier ones and both override variables already set; missing
// files are skipped.
func LoadEnvFiles(paths ...string) error {
	for _, p := range paths {
		if strings.TrimSpace(p) == "" {
			continue
		}
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Overload(p); err != nil {
			return failure.Config(p, err, "load env file")
		}
		log.Debug().Str("file", p).Msg("env file loaded")
	}
	return nil
}
