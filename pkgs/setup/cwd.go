package setup

import (
	"fmt"
	"os"
)

// InDir runs fn with the process working directory set to dir. The previous
// working directory is restored when fn returns, fails or panics.
func InDir(dir string, fn func() error) (err error) {
	pwd, err := os.Getwd()
	if err != nil {
		return err
	}
	if err := os.Chdir(dir); err != nil {
		return err
	}
	defer func() {
		if cerr := os.Chdir(pwd); cerr != nil && err == nil {
			err = fmt.Errorf("restore working directory: %w", cerr)
		}
	}()
	return fn()
}
