// Package bundle packs compiled exam documents into a .tar.xz archive
// with a manifest of SHA-256 and BLAKE3 digests.
package bundle

import (
	"archive/tar"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"

	"github.com/FocuswithJustin/ExamTeX/core/compiler"
	"github.com/FocuswithJustin/ExamTeX/core/errors"
)

// Names of the archive members.
const (
	ExamFile     = "exam.tex"
	SheetFile    = "answer-sheet.tex"
	KeyFile      = "answer-key.tex"
	ManifestFile = "manifest.json"
)

// Manifest describes a bundle.
type Manifest struct {
	BuildID     string      `json:"build_id"`
	Name        string      `json:"name"`
	Seed        int64       `json:"seed"`
	Fingerprint string      `json:"source_blake3"`
	Questions   int         `json:"questions"`
	Created     time.Time   `json:"created"`
	Files       []FileEntry `json:"files"`
}

// FileEntry records the digests of one member.
type FileEntry struct {
	Name   string `json:"name"`
	Size   int64  `json:"size"`
	SHA256 string `json:"sha256"`
	BLAKE3 string `json:"blake3"`
}

// Digest hashes data with both algorithms.
func Digest(name string, data []byte) FileEntry {
	s := sha256.Sum256(data)
	b := blake3.Sum256(data)
	return FileEntry{
		Name:   name,
		Size:   int64(len(data)),
		SHA256: hex.EncodeToString(s[:]),
		BLAKE3: hex.EncodeToString(b[:]),
	}
}

// NewBuildID returns a fresh build identifier.
func NewBuildID() string {
	return uuid.NewString()
}

// Write packs docs under the directory name in the archive and returns
// the manifest it stored. An empty buildID gets a fresh one.
func Write(w io.Writer, name, buildID string, docs *compiler.Documents) (*Manifest, error) {
	if buildID == "" {
		buildID = NewBuildID()
	}
	m := &Manifest{
		BuildID:     buildID,
		Name:        name,
		Seed:        docs.Seed,
		Fingerprint: docs.Fingerprint,
		Questions:   docs.Questions,
		Created:     time.Now().UTC().Truncate(time.Second),
	}
	members := []struct {
		name string
		data []byte
	}{
		{ExamFile, []byte(docs.Exam)},
		{SheetFile, []byte(docs.AnswerSheet)},
		{KeyFile, []byte(docs.AnswerKey)},
	}
	for _, mem := range members {
		m.Files = append(m.Files, Digest(mem.name, mem.data))
	}
	manifest, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encode manifest")
	}

	xw, err := xz.NewWriter(w)
	if err != nil {
		return nil, errors.Wrap(err, "xz writer")
	}
	tw := tar.NewWriter(xw)

	add := func(member string, data []byte) error {
		hdr := &tar.Header{
			Name:    name + "/" + member,
			Mode:    0o644,
			Size:    int64(len(data)),
			ModTime: m.Created,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		_, err := tw.Write(data)
		return err
	}
	if err := add(ManifestFile, append(manifest, '\n')); err != nil {
		return nil, errors.Wrap(err, "write manifest")
	}
	for _, mem := range members {
		if err := add(mem.name, mem.data); err != nil {
			return nil, errors.Wrapf(err, "write %s", mem.name)
		}
	}
	if err := tw.Close(); err != nil {
		return nil, errors.Wrap(err, "close tar")
	}
	if err := xw.Close(); err != nil {
		return nil, errors.Wrap(err, "close xz")
	}
	return m, nil
}

// WriteFile creates path, including parent directories, and writes the
// bundle into it. The directory name inside the archive is the file name
// without its .tar.xz suffix.
func WriteFile(path, buildID string, docs *compiler.Documents) (*Manifest, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.NewIO("create directory", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.NewIO("create bundle", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), ".tar.xz")
	m, err := Write(f, name, buildID, docs)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = errors.NewIO("close bundle", path, cerr)
	}
	if err != nil {
		os.Remove(path)
		return nil, err
	}
	return m, nil
}

// Contents is an unpacked bundle.
type Contents struct {
	Manifest Manifest
	Files    map[string][]byte // keyed by member name without the directory
}

// Read unpacks a bundle from r.
func Read(r io.Reader) (*Contents, error) {
	xr, err := xz.NewReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "xz reader")
	}
	tr := tar.NewReader(xr)
	c := &Contents{Files: map[string][]byte{}}
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "read header")
		}
		name := hdr.Name
		if i := strings.Index(name, "/"); i >= 0 {
			name = name[i+1:]
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, errors.Wrapf(err, "read %s", name)
		}
		c.Files[name] = data
	}

	raw, ok := c.Files[ManifestFile]
	if !ok {
		return nil, errors.NewNotFound("bundle member", ManifestFile)
	}
	if err := json.Unmarshal(raw, &c.Manifest); err != nil {
		return nil, errors.Wrap(err, "decode manifest")
	}
	delete(c.Files, ManifestFile)
	return c, nil
}

// ReadFile unpacks the bundle at path.
func ReadFile(path string) (*Contents, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIO("open bundle", path, err)
	}
	defer f.Close()
	return Read(f)
}

// Verify checks every member against the manifest digests.
func (c *Contents) Verify() error {
	for _, want := range c.Manifest.Files {
		data, ok := c.Files[want.Name]
		if !ok {
			return errors.NewNotFound("bundle member", want.Name)
		}
		if got := Digest(want.Name, data); got != want {
			return errors.NewValidation(0, want.Name, "digest mismatch")
		}
	}
	return nil
}
