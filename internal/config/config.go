// Package config provides configuration management for pnntprss.
// Adapted from go-pugleaf for the feed-to-NNTP bridge use case.
package config

import (
	"log"
	"os"
	"path/filepath"
)

var AppVersion = "-unset-" // will be set at build time

// NNTP protocol constants
const (
	DOT  = "."
	CR   = "\r"
	LF   = "\n"
	CRLF = CR + LF
)

// Defaults mirrored from the original settings.py.
const (
	DefaultFeedPollInterval    = 1800 // seconds
	DefaultFeedPollConcurrency = 4
	DefaultSocketTimeoutSecs   = 20
	DefaultLockExpirySecs      = 30 * 60
	DefaultLockRetrySecs       = 5
	DefaultNNTPPort            = 4321
	DefaultUserAgent           = "pnntprss/1.0 +https://github.com/go-while/pnntprss"
)

// Settings is the explicit configuration threaded into the Scheduler,
// Poller, Store and NNTP session, replacing the original implementation's
// module-level globals.
type Settings struct {
	// BaseDir is $HOME/.pnntprss by default.
	BaseDir string
	// GroupsDir is BaseDir/groups.
	GroupsDir string
	// LogPath is BaseDir/log.
	LogPath string

	FeedPollInterval    int // seconds
	ArticleLifetime     int // seconds, 0 means infinite
	UserAgent           string
	FeedPollConcurrency int

	LockExpirySecs int
	LockRetrySecs  int

	SocketTimeoutSecs int

	NNTPAddr string

	AppVersion string
}

// NewDefault returns Settings populated the way the original settings.py
// populates module globals, rooted at $HOME/.pnntprss.
func NewDefault() *Settings {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	base := filepath.Join(home, ".pnntprss")
	return &Settings{
		BaseDir:             base,
		GroupsDir:           filepath.Join(base, "groups"),
		LogPath:             filepath.Join(base, "log"),
		FeedPollInterval:    DefaultFeedPollInterval,
		ArticleLifetime:     0,
		UserAgent:           DefaultUserAgent,
		FeedPollConcurrency: DefaultFeedPollConcurrency,
		LockExpirySecs:      DefaultLockExpirySecs,
		LockRetrySecs:       DefaultLockRetrySecs,
		SocketTimeoutSecs:   DefaultSocketTimeoutSecs,
		NNTPAddr:            ":4321",
		AppVersion:          AppVersion,
	}
}

// EnsureDirs creates BaseDir and GroupsDir if they don't exist yet.
func (s *Settings) EnsureDirs() error {
	if err := os.MkdirAll(s.GroupsDir, 0o755); err != nil {
		return err
	}
	return nil
}

// SetupLogging directs the standard logger at LogPath, the way the
// original settings.py configures the logging module. If toStderr is
// true, output additionally goes to stderr (log_to_stderr()).
func SetupLogging(s *Settings, toStderr bool) (*os.File, error) {
	if err := s.EnsureDirs(); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(s.LogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	if toStderr {
		log.SetOutput(&teeWriter{f, os.Stderr})
	} else {
		log.SetOutput(f)
	}
	log.SetFlags(log.Ldate | log.Ltime)
	return f, nil
}

type teeWriter struct {
	a, b *os.File
}

func (t *teeWriter) Write(p []byte) (int, error) {
	t.a.Write(p)
	return t.b.Write(p)
}
