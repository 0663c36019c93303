package session

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Store persists a session record.
type Store interface {
	// Ext is the artifact file extension, including the dot.
	Ext() string
	Save(path string, meta Meta, rec Record) error
	Load(path string) (Record, error)
}

// Meta describes the session an artifact belongs to.
type Meta struct {
	Participant string
	CapturedAt  time.Time
}

var errNilStore = errors.New("session: nil store")

// Recorder owns the session record. It writes it to dir exactly once.
type Recorder struct {
	store Store
	dir   string
	meta  Meta
	now   func() time.Time

	rec Record

	finalized bool
	path      string
	err       error
}

// NewRecorder returns a recorder that saves into dir through store. now supplies
// the capture timestamp used in the artifact name; nil means time.Now.
func NewRecorder(store Store, dir, participant string, now func() time.Time) *Recorder {
	if now == nil {
		now = time.Now
	}
	return &Recorder{
		store: store,
		dir:   dir,
		meta:  Meta{Participant: participant},
		now:   now,
		rec:   Record{},
	}
}

// Append adds a finished (or interrupted) trial. Appends after Finalize are ignored.
func (r *Recorder) Append(tr TrialRecord) {
	if r.finalized {
		return
	}
	r.rec = append(r.rec, tr)
}

// Len returns the number of trials appended so far.
func (r *Recorder) Len() int { return len(r.rec) }

// Record returns the trials appended so far.
func (r *Recorder) Record() Record { return r.rec }

// Finalized reports whether Finalize has run.
func (r *Recorder) Finalized() bool { return r.finalized }

// Finalize writes the session artifact and returns its path. Only the first call
// writes; later calls return the first result.
func (r *Recorder) Finalize() (string, error) {
	if r.finalized {
		return r.path, r.err
	}
	r.finalized = true

	if r.store == nil {
		r.err = errNilStore
		return "", r.err
	}
	r.meta.CapturedAt = r.now()
	path := filepath.Join(r.dir, ArtifactName(r.meta, r.store.Ext()))
	if err := r.store.Save(path, r.meta, r.rec); err != nil {
		r.err = fmt.Errorf("save session: %w", err)
		return "", r.err
	}
	r.path = path
	return path, nil
}

// ArtifactName returns "data_<participant>_<YYYYMMDD_HHMMSS><ext>".
func ArtifactName(meta Meta, ext string) string {
	return fmt.Sprintf("data_%s_%s%s", SanitizeID(meta.Participant), meta.CapturedAt.Format("20060102_150405"), ext)
}

// SanitizeID makes a participant id safe to embed in a file name.
func SanitizeID(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == ':' || r == 0:
			return '_'
		case r < 0x20 || r == 0x7F:
			return -1
		}
		return r
	}, id)
}
