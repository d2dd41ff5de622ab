package srs

import (
	"errors"
	"time"

	"github.com/phrazzld/scry-review/internal/domain"
)

// Common errors
var (
	// ErrInvalidGrade is returned when asked to apply a grade outside Again..Easy.
	ErrInvalidGrade = domain.ErrInvalidGrade

	// ErrNilParams is returned when a service is constructed without params.
	ErrNilParams = errors.New("srs params cannot be nil")
)

// Service defines the interface for scheduler operations
type Service interface {
	// NextState computes the memory state after grading a card at now.
	NextState(state domain.MemoryState, grade domain.Grade, now time.Time) (domain.MemoryState, error)

	// GradeForScore derives the grade for a validation score.
	GradeForScore(score float64) domain.Grade
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new SRS service with default parameters
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new SRS service with custom parameters
func NewServiceWithParams(params *Params) (Service, error) {
	if params == nil {
		return nil, ErrNilParams
	}
	return &defaultService{
		params: params,
	}, nil
}

// NextState implements the Service interface
func (s *defaultService) NextState(
	state domain.MemoryState,
	grade domain.Grade,
	now time.Time,
) (domain.MemoryState, error) {
	return advanceWithParams(state, grade, now, s.params)
}

// GradeForScore implements the Service interface
func (s *defaultService) GradeForScore(score float64) domain.Grade {
	return scoreToGrade(score, s.params)
}
