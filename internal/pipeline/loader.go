package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DirLoader reads documents from dir. Names must stay inside it.
func DirLoader(dir string) Loader {
	return func(_ context.Context, name string) ([]byte, error) {
		if !filepath.IsLocal(name) {
			return nil, fmt.Errorf("document %q escapes %s", name, dir)
		}
		return os.ReadFile(filepath.Join(dir, name))
	}
}
