package env

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// InstallLibEnv overrides the default install-lib.
const InstallLibEnv = "CMI_INSTALL_LIB"

// WorkDir returns the per-user directory cmi keeps its state in.
func WorkDir() (string, error) {
	userCacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(userCacheDir, ".cmi"), nil
}

// InstallLib returns the root under which packages are installed when no
// --install-lib is given.
func InstallLib() (string, error) {
	if dir := os.Getenv(InstallLibEnv); dir != "" {
		return filepath.Abs(dir)
	}
	workDir, err := WorkDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(workDir, "lib"), nil
}

// RecordPath returns the default install record of package name.
func RecordPath(installLib, name string) string {
	return filepath.Join(installLib, ".cmi", name+".json")
}

// LoadDotEnv loads dir/.env, if present, without overriding variables that
// are already set.
func LoadDotEnv(dir string) error {
	err := godotenv.Load(filepath.Join(dir, ".env"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
