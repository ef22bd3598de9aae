package ken

import (
	"os"
	"path/filepath"

	"github.com/j-tyler/ken/internal/kenerr"
)

// StoreDirName is the directory every coordinator invocation looks for.
const StoreDirName = ".ken"

// DBFileName is the single file within StoreDirName holding the durable
// store.
const DBFileName = "ken.db"

// FindStoreDir walks upward from start looking for a .ken directory,
// returning its path. It signals kenerr.NotInitialized if none is found
// before reaching the filesystem root.
func FindStoreDir(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", kenerr.Wrap(kenerr.Io, "failed to resolve working directory", err)
	}

	for {
		candidate := filepath.Join(dir, StoreDirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", kenerr.New(kenerr.NotInitialized, "no .ken directory found in any ancestor of "+start)
		}
		dir = parent
	}
}

// DBPath joins a store directory with the db file name.
func DBPath(storeDir string) string {
	return filepath.Join(storeDir, DBFileName)
}

// InitStoreDir creates a fresh .ken directory under root. It fails with
// kenerr.AlreadyInitialized if one already exists there.
func InitStoreDir(root string) (string, error) {
	dir := filepath.Join(root, StoreDirName)
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		return "", kenerr.New(kenerr.AlreadyInitialized, dir+" already exists")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", kenerr.Wrap(kenerr.Io, "failed to create "+dir, err)
	}
	return dir, nil
}
