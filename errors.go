package kmajority

import (
	"errors"
	"fmt"

	"github.com/hupe1980/kmajority/vocabulary"
)

var (
	// ErrConfiguration is matched by every *ConfigurationError.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrInsufficientData is matched by every *InsufficientDataError.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrFormat is matched by every *FormatError.
	ErrFormat = vocabulary.ErrFormat
	// ErrNoCentroids is returned when centroids are requested before
	// Cluster or LoadVocabulary has produced any.
	ErrNoCentroids = errors.New("no centroids: run Cluster or load a vocabulary first")
)

// FormatError reports an inconsistent persisted vocabulary.
type FormatError = vocabulary.FormatError

// ConfigurationError indicates an invalid parameter or a mismatch between
// the requested clustering and the dataset.
type ConfigurationError struct {
	Param  string
	Value  any
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%v: %s=%v: %s", ErrConfiguration, e.Param, e.Value, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// InsufficientDataError indicates there are not enough usable data points
// for the requested number of clusters.
//
// When detected up front (more clusters than points) the error also matches
// ErrConfiguration, since the request itself cannot be satisfied.
type InsufficientDataError struct {
	Points   int
	Clusters int
	Reason   string
	atConfig bool
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%v: %s (%d points, %d clusters)", ErrInsufficientData, e.Reason, e.Points, e.Clusters)
}

// Unwrap returns ErrInsufficientData and, for up-front failures, ErrConfiguration.
func (e *InsufficientDataError) Unwrap() []error {
	if e.atConfig {
		return []error{ErrInsufficientData, ErrConfiguration}
	}
	return []error{ErrInsufficientData}
}
