package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FilesystemLoader loads assets from a directory on the filesystem.
// Implements AssetLoader interface.
type FilesystemLoader struct {
	basePath string
}

// NewFilesystemLoader creates a FilesystemLoader for the given base path.
// Returns ErrInvalidBasePath if the path is not a valid, readable directory.
func NewFilesystemLoader(basePath string) (*FilesystemLoader, error) {
	if basePath == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidBasePath)
	}

	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}

	// Resolve symlinks in base path for consistent containment checks.
	if realPath, err := filepath.EvalSymlinks(absPath); err == nil {
		absPath = realPath
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: directory does not exist: %s", ErrInvalidBasePath, absPath)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: not a directory: %s", ErrInvalidBasePath, absPath)
	}
	if _, err := os.ReadDir(absPath); err != nil {
		return nil, fmt.Errorf("%w: cannot read directory: %v", ErrInvalidBasePath, err)
	}

	return &FilesystemLoader{basePath: absPath}, nil
}

// LoadPage loads {basePath}/pages/{name}.html.
func (f *FilesystemLoader) LoadPage(name string) (string, error) {
	data, err := f.readNamed(pagesDir, name, pageExt, ErrPageNotFound)
	return string(data), err
}

// LoadProse loads {basePath}/prose/{locale}.md.
func (f *FilesystemLoader) LoadProse(locale string) (string, error) {
	data, err := f.readNamed(proseDir, locale, proseExt, ErrProseNotFound)
	return string(data), err
}

// LoadMessages loads {basePath}/messages/{locale}.yaml.
func (f *FilesystemLoader) LoadMessages(locale string) ([]byte, error) {
	return f.readNamed(messagesDir, locale, messagesExt, ErrMessagesNotFound)
}

// LoadStatic loads {basePath}/static/{path}.
func (f *FilesystemLoader) LoadStatic(p string) ([]byte, error) {
	if err := ValidateStaticPath(p); err != nil {
		return nil, err
	}
	return f.read(filepath.Join(f.basePath, staticDir, filepath.FromSlash(p)), p, ErrStaticNotFound)
}

func (f *FilesystemLoader) readNamed(dir, name, ext string, notFound error) ([]byte, error) {
	if err := ValidateAssetName(name); err != nil {
		return nil, err
	}
	return f.read(filepath.Join(f.basePath, dir, name+ext), name, notFound)
}

func (f *FilesystemLoader) read(filePath, name string, notFound error) ([]byte, error) {
	if err := f.verifyPathContainment(filePath); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath) // #nosec G304 -- path validated above
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %q", notFound, name)
		}
		return nil, fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
	return data, nil
}

// verifyPathContainment ensures the resolved file path is within basePath,
// following symlinks so a link cannot point outside it.
func (f *FilesystemLoader) verifyPathContainment(filePath string) error {
	absFilePath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("%w: cannot resolve path", ErrPathTraversal)
	}

	// A missing file keeps its unresolved path; the read fails with not-found.
	if realPath, err := filepath.EvalSymlinks(absFilePath); err == nil {
		absFilePath = realPath
	}

	// Separator suffix prevents /base/path matching /base/pathevil.
	if !strings.HasPrefix(absFilePath, f.basePath+string(filepath.Separator)) {
		return fmt.Errorf("%w: path escapes base directory", ErrPathTraversal)
	}
	return nil
}

// Compile-time interface check.
var _ AssetLoader = (*FilesystemLoader)(nil)
