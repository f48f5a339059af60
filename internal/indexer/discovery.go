package indexer

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// stateDir holds autodoc's own files and is never analyzed.
const stateDir = ".autodoc"

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// FileDiscovery finds source files under a root using include globs and
// ignore rules. It is the directory walker that feeds Engine.Run.
type FileDiscovery struct {
	rootDir         string
	includePatterns []compiledPattern
	ignorePatterns  []compiledPattern
}

// NewFileDiscovery creates a new file discovery instance.
func NewFileDiscovery(rootDir string, includePatterns, ignorePatterns []string) (*FileDiscovery, error) {
	fd := &FileDiscovery{
		rootDir: rootDir,
	}

	var err error
	if fd.includePatterns, err = compilePatterns(includePatterns); err != nil {
		return nil, err
	}
	if fd.ignorePatterns, err = compilePatterns(ignorePatterns); err != nil {
		return nil, err
	}

	return fd, nil
}

func compilePatterns(patterns []string) ([]compiledPattern, error) {
	out := make([]compiledPattern, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		out = append(out, compiledPattern{pattern: pattern, glob: g})
	}
	return out, nil
}

// DiscoverFiles walks the directory tree and returns matching files in
// lexical order. Ignored directories are not descended into.
func (fd *FileDiscovery) DiscoverFiles() ([]string, error) {
	files := []string{}

	err := filepath.WalkDir(fd.rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Get relative path for pattern matching
		relPath, err := filepath.Rel(fd.rootDir, path)
		if err != nil {
			return err
		}
		if relPath == "." {
			return nil
		}

		// Normalize path separators for glob matching
		relPath = filepath.ToSlash(relPath)

		if fd.shouldIgnore(relPath) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}

		if fd.Matches(relPath) {
			files = append(files, path)
		}
		return nil
	})

	return files, err
}

// Matches reports whether a root-relative, slash-separated path is an
// included, non-ignored file.
func (fd *FileDiscovery) Matches(relPath string) bool {
	if fd.shouldIgnore(relPath) {
		return false
	}
	return fd.matchesAnyPattern(relPath, fd.includePatterns)
}

// Ignored reports whether a path under the root is excluded by the ignore
// rules. It accepts absolute paths as delivered by the file watcher.
func (fd *FileDiscovery) Ignored(path string) bool {
	rel := path
	if filepath.IsAbs(path) {
		var err error
		if rel, err = filepath.Rel(fd.rootDir, path); err != nil {
			return false
		}
	}
	rel = filepath.ToSlash(rel)
	if rel == "." || strings.HasPrefix(rel, "../") {
		return false
	}
	return fd.shouldIgnore(rel)
}

// Root returns the directory discovery starts from.
func (fd *FileDiscovery) Root() string {
	return fd.rootDir
}

// shouldIgnore checks if a path matches any ignore pattern.
func (fd *FileDiscovery) shouldIgnore(relPath string) bool {
	if strings.HasPrefix(relPath, stateDir+"/") || relPath == stateDir {
		return true
	}

	// Check if the path matches any ignore pattern
	if fd.matchesAnyPattern(relPath, fd.ignorePatterns) {
		return true
	}

	// Also check if this is a directory that would match with /** suffix
	// For example, "venv" should match pattern "venv/**"
	pathWithSuffix := relPath + "/**"
	if fd.matchesAnyPattern(pathWithSuffix, fd.ignorePatterns) {
		return true
	}

	// A file under an ignored directory is ignored too
	for dir := relPath; strings.Contains(dir, "/"); {
		dir = dir[:strings.LastIndex(dir, "/")]
		if fd.matchesAnyPattern(dir, fd.ignorePatterns) || fd.matchesAnyPattern(dir+"/**", fd.ignorePatterns) {
			return true
		}
	}
	return false
}

// matchesAnyPattern checks if a path matches any of the given patterns.
func (fd *FileDiscovery) matchesAnyPattern(path string, patterns []compiledPattern) bool {
	for _, cp := range patterns {
		if cp.glob.Match(path) {
			return true
		}
	}

	// Special handling: if path is in root (no slash), also try matching against
	// patterns with **/ prefix removed. This makes "**/*.py" match both "setup.py"
	// and "pkg/module.py" as users would expect.
	if !strings.Contains(path, "/") {
		for _, cp := range patterns {
			if strings.HasPrefix(cp.pattern, "**/") {
				simplified := strings.TrimPrefix(cp.pattern, "**/")
				if simplifiedGlob, err := glob.Compile(simplified, '/'); err == nil {
					if simplifiedGlob.Match(path) {
						return true
					}
				}
			}
		}
	}

	return false
}
