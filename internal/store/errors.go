package store

import "errors"

// ErrNoSuchGroup is returned by Load when a group directory does not
// exist.
var ErrNoSuchGroup = errors.New("store: no such group")

// ErrGroupAlreadyExists is returned by Create when a group directory
// already exists.
var ErrGroupAlreadyExists = errors.New("store: group already exists")

// ErrMissingHref is returned by Create when no feed URL was supplied,
// resolving spec.md §9's open question: a group cannot exist without a
// feed to poll.
var ErrMissingHref = errors.New("store: href is required to create a group")
