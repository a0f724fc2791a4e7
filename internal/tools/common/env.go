// Package common holds the small shared pieces of the CLI tooling.
package common

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
)

// LoadEnvFile loads variables from a dotenv file. Variables already present
// in the environment win, and a missing file is not an error.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(path)
}
