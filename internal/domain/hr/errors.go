package hr

import "errors"

var (
	ErrEmployeeNotFound    = errors.New("employee not found")
	ErrCandidateNotFound   = errors.New("candidate not found")
	ErrVacancyNotFound     = errors.New("vacancy not found")
	ErrTrainingNotFound    = errors.New("training not found")
	ErrPerformanceNotFound = errors.New("performance review not found")
	ErrTimeEntryNotFound   = errors.New("time entry not found")
	ErrProcessNotFound     = errors.New("disciplinary process not found")
	ErrDocumentNotFound    = errors.New("document not found")
	ErrAlreadyEnrolled     = errors.New("employee already enrolled")
	ErrNotEnrolled         = errors.New("employee not enrolled")
	ErrDuplicateTaxID      = errors.New("tax id already registered")
)
