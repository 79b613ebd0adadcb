package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/MilenaMkrtumyan/movie-recommendation-and-booking-system/internal/model"
)

// File names inside the data directory.
const (
	UsersFile     = "users.json"
	MoviesFile    = "movies.json"
	ShowtimesFile = "showtimes.json"
	JournalFile   = "booking.journal"
)

// FileStore keeps each collection in its own JSON document under Dir, in
// the layout {"<collection>": [...]}. Users and showtimes persisted
// together go through a journal: once the journal is on disk the change is
// committed, and a pending journal is applied before any later write or
// load.
type FileStore struct {
	Dir string
	// ReadOnly stores never write. A pending journal is read in place of
	// the files it would overwrite.
	ReadOnly bool
	Log      *slog.Logger
}

// NewFileStore returns a FileStore rooted at dir.
func NewFileStore(dir string) *FileStore { return &FileStore{Dir: dir, Log: slog.Default()} }

// NewReadOnlyFileStore returns a FileStore for processes that only browse
// the data, such as the catalog server.
func NewReadOnlyFileStore(dir string) *FileStore {
	s := NewFileStore(dir)
	s.ReadOnly = true
	return s
}

var _ Store = (*FileStore)(nil)

var errReadOnly = errors.New("store is read-only")

type usersDoc struct {
	Users   []*model.User `json:"users"`
	UserSeq *int          `json:"user_sequence,omitempty"`
}

type moviesDoc struct {
	Movies []model.Movie `json:"movies"`
}

type showtimesDoc struct {
	Showtimes []*model.Showtime `json:"showtimes"`
}

// journal holds the complete new contents of both files.
type journal struct {
	Users     json.RawMessage `json:"users"`
	Showtimes json.RawMessage `json:"showtimes"`
}

func (s *FileStore) path(name string) string { return filepath.Join(s.Dir, name) }

// Load reads all three collections after applying a pending journal. A
// missing file, unreadable file, document without its collection key or
// null record fails with an *AccessError.
func (s *FileStore) Load(ctx context.Context) (*Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var pending *journal
	if s.ReadOnly {
		j, err := s.readJournal()
		if err != nil {
			return nil, err
		}
		pending = j
	} else if err := s.settle(); err != nil {
		return nil, err
	}

	var ud usersDoc
	if pending != nil {
		if err := json.Unmarshal(pending.Users, &ud); err != nil {
			return nil, accessErr(s.path(JournalFile), "decode", err)
		}
	} else if err := s.readDoc(UsersFile, &ud); err != nil {
		return nil, err
	}
	if ud.Users == nil {
		return nil, accessErr(s.path(UsersFile), "decode", errors.New(`missing "users" collection`))
	}
	if i := slices.Index(ud.Users, nil); i >= 0 {
		return nil, accessErr(s.path(UsersFile), "decode", fmt.Errorf("users[%d] is null", i))
	}

	var md moviesDoc
	if err := s.readDoc(MoviesFile, &md); err != nil {
		return nil, err
	}
	if md.Movies == nil {
		return nil, accessErr(s.path(MoviesFile), "decode", errors.New(`missing "movies" collection`))
	}

	var sd showtimesDoc
	if pending != nil {
		if err := json.Unmarshal(pending.Showtimes, &sd); err != nil {
			return nil, accessErr(s.path(JournalFile), "decode", err)
		}
	} else if err := s.readDoc(ShowtimesFile, &sd); err != nil {
		return nil, err
	}
	if sd.Showtimes == nil {
		return nil, accessErr(s.path(ShowtimesFile), "decode", errors.New(`missing "showtimes" collection`))
	}
	if i := slices.Index(sd.Showtimes, nil); i >= 0 {
		return nil, accessErr(s.path(ShowtimesFile), "decode", fmt.Errorf("showtimes[%d] is null", i))
	}

	seq := deriveUserSeq(ud.Users)
	if ud.UserSeq != nil && *ud.UserSeq > seq {
		seq = *ud.UserSeq
	}
	return &Dataset{
		Users:     ud.Users,
		Movies:    md.Movies,
		Showtimes: sd.Showtimes,
		UserSeq:   seq,
	}, nil
}

// Persist rewrites the collections selected by scope. A pending journal is
// applied first; if that fails nothing is written. When both collections
// are selected, Persist succeeds as soon as the journal is durable. File
// rewrites that fail after that point are retried by the next Persist or
// Load.
func (s *FileStore) Persist(ctx context.Context, d *Dataset, scope Scope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.ReadOnly {
		return accessErr(s.Dir, "write", errReadOnly)
	}
	if err := s.settle(); err != nil {
		return err
	}

	var usersJSON, showtimesJSON []byte
	var err error
	if scope.Has(ScopeUsers) {
		users := d.Users
		if users == nil {
			users = []*model.User{}
		}
		seq := d.UserSeq
		if usersJSON, err = encodeDoc(usersDoc{Users: users, UserSeq: &seq}); err != nil {
			return accessErr(s.path(UsersFile), "encode", err)
		}
	}
	if scope.Has(ScopeShowtimes) {
		showtimes := d.Showtimes
		if showtimes == nil {
			showtimes = []*model.Showtime{}
		}
		if showtimesJSON, err = encodeDoc(showtimesDoc{Showtimes: showtimes}); err != nil {
			return accessErr(s.path(ShowtimesFile), "encode", err)
		}
	}

	switch {
	case usersJSON != nil && showtimesJSON != nil:
		j, err := json.Marshal(journal{Users: usersJSON, Showtimes: showtimesJSON})
		if err != nil {
			return accessErr(s.path(JournalFile), "encode", err)
		}
		if err := writeFileAtomic(s.path(JournalFile), j); err != nil {
			return accessErr(s.path(JournalFile), "write", err)
		}
		if err := s.commit(usersJSON, showtimesJSON); err != nil {
			s.logger().Warn("journal committed, file rewrite deferred", "dir", s.Dir, "err", err)
		}
	case usersJSON != nil:
		if err := writeFileAtomic(s.path(UsersFile), usersJSON); err != nil {
			return accessErr(s.path(UsersFile), "write", err)
		}
	case showtimesJSON != nil:
		if err := writeFileAtomic(s.path(ShowtimesFile), showtimesJSON); err != nil {
			return accessErr(s.path(ShowtimesFile), "write", err)
		}
	}
	return nil
}

// Close is a no-op; files are not held open between calls.
func (s *FileStore) Close() error { return nil }

func (s *FileStore) logger() *slog.Logger {
	if s.Log == nil {
		return slog.Default()
	}
	return s.Log
}

// commit writes both files and then drops the journal.
func (s *FileStore) commit(usersJSON, showtimesJSON []byte) error {
	if err := writeFileAtomic(s.path(UsersFile), usersJSON); err != nil {
		return accessErr(s.path(UsersFile), "write", err)
	}
	if err := writeFileAtomic(s.path(ShowtimesFile), showtimesJSON); err != nil {
		return accessErr(s.path(ShowtimesFile), "write", err)
	}
	if err := os.Remove(s.path(JournalFile)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return accessErr(s.path(JournalFile), "remove", err)
	}
	return nil
}

// readJournal returns the pending journal, or nil when there is none.
func (s *FileStore) readJournal() (*journal, error) {
	raw, err := os.ReadFile(s.path(JournalFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, accessErr(s.path(JournalFile), "read", err)
	}
	var j journal
	if err := json.Unmarshal(raw, &j); err != nil {
		return nil, accessErr(s.path(JournalFile), "decode", err)
	}
	if len(j.Users) == 0 || len(j.Showtimes) == 0 {
		return nil, accessErr(s.path(JournalFile), "decode", errors.New("incomplete journal"))
	}
	return &j, nil
}

// settle applies a pending journal to the files.
func (s *FileStore) settle() error {
	j, err := s.readJournal()
	if err != nil || j == nil {
		return err
	}
	usersJSON, err := reindent(j.Users)
	if err != nil {
		return accessErr(s.path(JournalFile), "decode", err)
	}
	showtimesJSON, err := reindent(j.Showtimes)
	if err != nil {
		return accessErr(s.path(JournalFile), "decode", err)
	}
	return s.commit(usersJSON, showtimesJSON)
}

func (s *FileStore) readDoc(name string, v any) error {
	p := s.path(name)
	raw, err := os.ReadFile(p)
	if err != nil {
		return accessErr(p, "read", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return accessErr(p, "decode", err)
	}
	return nil
}

// encodeDoc uses the four-space indentation of the existing data files.
func encodeDoc(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "    ")
}

func reindent(raw json.RawMessage) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "    "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeFileAtomic writes data to a temporary file next to path, syncs it
// and renames it over path. Readers see either the old or the new content.
func writeFileAtomic(path string, data []byte) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()
	if _, err = f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp, 0o644); err != nil {
		return err
	}
	if err = os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
