package ken

import (
	"os"
	"testing"

	"github.com/j-tyler/ken/internal/kenerr"
)

func TestInitStoreDirThenFindStoreDir(t *testing.T) {
	root := t.TempDir()

	dir, err := InitStoreDir(root)
	if err != nil {
		t.Fatalf("InitStoreDir: %v", err)
	}

	found, err := FindStoreDir(root)
	if err != nil {
		t.Fatalf("FindStoreDir: %v", err)
	}
	if found != dir {
		t.Fatalf("FindStoreDir = %s, want %s", found, dir)
	}
}

func TestInitStoreDirTwiceFails(t *testing.T) {
	root := t.TempDir()
	if _, err := InitStoreDir(root); err != nil {
		t.Fatalf("first InitStoreDir: %v", err)
	}
	_, err := InitStoreDir(root)
	if !kenerr.Is(err, kenerr.AlreadyInitialized) {
		t.Fatalf("expected AlreadyInitialized, got %v", err)
	}
}

func TestFindStoreDirWalksUpward(t *testing.T) {
	root := t.TempDir()
	if _, err := InitStoreDir(root); err != nil {
		t.Fatalf("InitStoreDir: %v", err)
	}
	nested := root + "/a/b/c"
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	found, err := FindStoreDir(nested)
	if err != nil {
		t.Fatalf("FindStoreDir: %v", err)
	}
	want := root + "/" + StoreDirName
	if found != want {
		t.Fatalf("FindStoreDir = %s, want %s", found, want)
	}
}

func TestFindStoreDirNotInitialized(t *testing.T) {
	root := t.TempDir()
	_, err := FindStoreDir(root)
	if !kenerr.Is(err, kenerr.NotInitialized) {
		t.Fatalf("expected NotInitialized, got %v", err)
	}
}
