// Package validation checks file arguments before they reach the
// compiler: exam sources, template files and output names.
package validation

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Limits on user-supplied input.
const (
	// MaxSourceSize is the largest exam source accepted (4 MB).
	MaxSourceSize = 4 << 20
	// MaxFilenameLength is the maximum allowed filename length.
	MaxFilenameLength = 255
	// MaxPathLength is the maximum allowed path length.
	MaxPathLength = 4096
)

// Validation errors.
var (
	ErrEmptyPath        = errors.New("path cannot be empty")
	ErrPathTooLong      = errors.New("path too long")
	ErrInvalidCharacter = errors.New("invalid character in path")
	ErrInvalidFilename  = errors.New("invalid filename")
	ErrFilenameTooLong  = errors.New("filename too long")
	ErrPathTraversal    = errors.New("path traversal detected")
	ErrNotText          = errors.New("not a text file")
	ErrTooLarge         = errors.New("file too large")
	ErrExtension        = errors.New("unsupported file extension")
)

// SourceExtensions are the accepted exam source extensions.
var SourceExtensions = []string{".exam", ".txt", ".etx"}

// TemplateExtensions are the accepted template file extensions.
var TemplateExtensions = []string{".tex", ".xml", ".yaml", ".yml"}

// ValidatePath checks length and rejects control characters.
func ValidatePath(path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	if len(path) > MaxPathLength {
		return ErrPathTooLong
	}
	if strings.Contains(path, "\x00") {
		return fmt.Errorf("%w: null byte not allowed", ErrInvalidCharacter)
	}
	for _, r := range path {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: control character not allowed", ErrInvalidCharacter)
		}
	}
	return nil
}

// ValidateFilename checks that name is a single safe path element.
func ValidateFilename(name string) error {
	if name == "" {
		return ErrInvalidFilename
	}
	if len(name) > MaxFilenameLength {
		return ErrFilenameTooLong
	}
	if name == "." || name == ".." {
		return fmt.Errorf("%w: reserved name", ErrInvalidFilename)
	}
	if strings.ContainsAny(name, "/\\") {
		return fmt.Errorf("%w: path separator not allowed", ErrInvalidFilename)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: control character not allowed", ErrInvalidFilename)
		}
	}
	// Reject names that read as command flags
	if strings.HasPrefix(name, "-") {
		return fmt.Errorf("%w: filename cannot start with hyphen", ErrInvalidFilename)
	}
	return nil
}

// SanitizeFilename turns user input, such as a build name, into a safe
// filename.
func SanitizeFilename(name string) (string, error) {
	name = strings.TrimSpace(name)
	name = strings.NewReplacer("/", "_", "\\", "_", "\x00", "").Replace(name)
	var b strings.Builder
	for _, r := range name {
		if !unicode.IsControl(r) {
			b.WriteRune(r)
		}
	}
	name = strings.TrimLeft(b.String(), "-")
	if err := ValidateFilename(name); err != nil {
		return "", err
	}
	return name, nil
}

// SanitizePath resolves userPath under baseDir and rejects paths that
// escape it. The cleaned relative path is returned.
func SanitizePath(baseDir, userPath string) (string, error) {
	if err := ValidatePath(userPath); err != nil {
		return "", err
	}
	clean := filepath.Clean(userPath)
	if filepath.IsAbs(clean) {
		return "", fmt.Errorf("%w: absolute path not allowed", ErrPathTraversal)
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base directory: %w", err)
	}
	absPath, err := filepath.Abs(filepath.Join(baseDir, clean))
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	rel, err := filepath.Rel(absBase, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrPathTraversal
	}
	return clean, nil
}

func hasExtension(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// CheckSourcePath validates the path of an exam source file.
func CheckSourcePath(path string) error {
	if err := ValidatePath(path); err != nil {
		return err
	}
	if !hasExtension(path, SourceExtensions) {
		return fmt.Errorf("%w: %s (want one of %s)", ErrExtension, filepath.Ext(path), strings.Join(SourceExtensions, ", "))
	}
	return nil
}

// CheckTemplatePath validates the path of a template file.
func CheckTemplatePath(path string) error {
	if err := ValidatePath(path); err != nil {
		return err
	}
	if !hasExtension(path, TemplateExtensions) {
		return fmt.Errorf("%w: %s (want one of %s)", ErrExtension, filepath.Ext(path), strings.Join(TemplateExtensions, ", "))
	}
	return nil
}

// ReadSource reads at most MaxSourceSize bytes of exam source and checks
// that they are UTF-8 text.
func ReadSource(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxSourceSize+1))
	if err != nil {
		return "", fmt.Errorf("read source: %w", err)
	}
	if len(data) > MaxSourceSize {
		return "", fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, MaxSourceSize)
	}
	if !IsLikelyText(data) {
		return "", ErrNotText
	}
	return string(data), nil
}

// IsLikelyText reports whether buf is valid UTF-8 without NUL bytes and
// mostly free of control characters. Empty input counts as text.
func IsLikelyText(buf []byte) bool {
	if bytes.IndexByte(buf, 0) != -1 || !utf8.Valid(buf) {
		return false
	}
	control := 0
	for _, b := range buf {
		if b < 0x20 && b != '\t' && b != '\n' && b != '\r' && b != '\f' {
			control++
		}
	}
	return control*20 <= len(buf)
}

// OutputPaths returns the exam, answer sheet and answer key paths for a
// source path, placed in dir. An empty dir keeps the source's directory.
func OutputPaths(dir, source string) (exam, sheet, key string) {
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	if dir == "" {
		dir = filepath.Dir(source)
	}
	return filepath.Join(dir, base+".tex"),
		filepath.Join(dir, base+"_sheet.tex"),
		filepath.Join(dir, base+"_key.tex")
}
