// Package seismic ties the forward index, posting lists, blocking, and
// summarization together into the buildable, queryable InvertedIndex (spec
// §3-4.G-I).
package seismic

import "errors"

// ErrConfigurationInvalid is raised at build entry when a Configuration's
// parameters are outside their valid ranges (spec §7).
var ErrConfigurationInvalid = errors.New("seismic: invalid configuration")

// ErrOutOfRange is raised at build when a document's forward-index offset
// or vector length cannot be packed into a posting word (spec §7).
var ErrOutOfRange = errors.New("seismic: value out of range")
