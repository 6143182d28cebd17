package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/talenthub/go-hr-backend/internal/domain"
)

// LocalStore keeps resume blobs in a directory tree under root and serves
// them from the /media route at baseURL. Keys use forward slashes and are
// translated to native paths on access.
type LocalStore struct {
	root    string
	baseURL string
}

// NewLocalStore creates the media root (if missing) and returns a LocalStore.
func NewLocalStore(root, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &LocalStore{root: root, baseURL: baseURL}, nil
}

// Stage writes r to {root}/temp_resumes/{fileID}/{filename} and returns a
// media URL rooted at the configured public base.
func (s *LocalStore) Stage(ctx context.Context, r io.Reader, fileID, filename, contentType string) (Staged, error) {
	key := tempKey(fileID, filename)
	if err := s.write(key, r); err != nil {
		return Staged{}, err
	}
	return Staged{
		Descriptor: Descriptor{Kind: domain.StorageLocal, Key: key, Filename: filename},
		URL:        s.mediaURL(key),
	}, nil
}

// Promote copies the staged file to {root}/resumes/{ownerID}/{filename} and
// deletes the temporary copy. The copy-then-delete mirrors the object-store
// backend so both observe the same failure semantics: an error before the
// delete leaves the staged file untouched.
func (s *LocalStore) Promote(ctx context.Context, d Descriptor, ownerID string) (Promoted, error) {
	newKey := permanentKey(ownerID, d.Filename)

	src, err := os.Open(s.path(d.Key))
	if err != nil {
		return Promoted{}, err
	}
	defer src.Close()

	if err := s.write(newKey, src); err != nil {
		return Promoted{}, err
	}
	if err := os.Remove(s.path(d.Key)); err != nil {
		// Permanent copy exists; the leftover temp file is cleanup, not failure.
		log.Warn().Err(err).Str("key", d.Key).Msg("storage: remove staged file after promote")
	}
	s.pruneDir(filepath.Dir(s.path(d.Key)))

	return Promoted{
		Descriptor: Descriptor{Kind: domain.StorageLocal, Key: newKey, Filename: d.Filename},
		URL:        s.mediaURL(newKey),
	}, nil
}

// Discard removes a blob, logging (never returning) failures.
func (s *LocalStore) Discard(ctx context.Context, d Descriptor) {
	if err := os.Remove(s.path(d.Key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Str("key", d.Key).Msg("storage: discard failed")
		return
	}
	s.pruneDir(filepath.Dir(s.path(d.Key)))
}

// Open returns the permanent file for streaming.
func (s *LocalStore) Open(ctx context.Context, ownerID, filename string) (io.ReadCloser, error) {
	f, err := os.Open(s.path(permanentKey(ownerID, filename)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrBlobNotFound
		}
		return nil, err
	}
	return f, nil
}

// MediaRoot exposes the root directory so the router can mount it as a
// static file tree.
func (s *LocalStore) MediaRoot() string { return s.root }

func (s *LocalStore) path(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}

func (s *LocalStore) mediaURL(key string) string {
	return s.baseURL + "/media/" + key
}

func (s *LocalStore) write(key string, r io.Reader) error {
	p := s.path(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.Create(p)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(p)
		return err
	}
	return f.Close()
}

// pruneDir removes the per-token directory once its file is gone. Best
// effort: a non-empty directory is left alone.
func (s *LocalStore) pruneDir(dir string) {
	if dir == s.root || dir == "." {
		return
	}
	_ = os.Remove(dir)
}
