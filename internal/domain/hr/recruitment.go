package hr

import (
	"context"
	"strings"

	"hrdesk/internal/domain/documents"
	"hrdesk/internal/domain/records"
	"hrdesk/internal/domain/session"
)

type CandidateInput struct {
	Name   string `json:"name" validate:"required"`
	Email  string `json:"email" validate:"required,email_shape"`
	Resume string `json:"resume"`
	Status string `json:"status" validate:"omitempty,oneof=Applied Interview Approved Rejected"`
}

type VacancyInput struct {
	Title        string `json:"title" validate:"required"`
	Description  string `json:"desc"`
	Requirements string `json:"req"`
	Closing      string `json:"closing" validate:"omitempty,date"`
}

func (s *Service) ListCandidates(ctx context.Context, status string) ([]records.Candidate, error) {
	candidates, err := lenient(load(ctx, s.Store, records.Candidates, candidateKey))
	if err != nil {
		return nil, err
	}
	if status == "" {
		return candidates, nil
	}
	out := []records.Candidate{}
	for _, c := range candidates {
		if strings.EqualFold(c.Status, status) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Service) GetCandidate(ctx context.Context, id string) (records.Candidate, error) {
	candidates, err := load(ctx, s.Store, records.Candidates, candidateKey)
	if err != nil {
		return records.Candidate{}, err
	}
	idx := indexOf(candidates, id, candidateKey)
	if idx < 0 {
		return records.Candidate{}, ErrCandidateNotFound
	}
	return candidates[idx], nil
}

func (s *Service) CreateCandidate(ctx context.Context, sess session.Session, in CandidateInput) (records.Candidate, error) {
	ctx, unlock := s.Store.Lock(ctx)
	defer unlock()
	in = trimCandidate(in)
	if err := s.Checker.Struct(in); err != nil {
		return records.Candidate{}, err
	}
	candidates, err := load(ctx, s.Store, records.Candidates, candidateKey)
	if err != nil {
		return records.Candidate{}, err
	}
	c := records.Candidate{ID: newID(), Documents: []records.Document{}}
	applyCandidateInput(&c, in)
	candidates = append(candidates, c)
	if err := records.Set(ctx, s.Store, records.Candidates, candidates); err != nil {
		return records.Candidate{}, err
	}
	s.record(ctx, sess, ActionCreate, EntityCandidate, c.ID.String())
	return c, nil
}

func (s *Service) UpdateCandidate(ctx context.Context, sess session.Session, id string, in CandidateInput) (records.Candidate, error) {
	ctx, unlock := s.Store.Lock(ctx)
	defer unlock()
	in = trimCandidate(in)
	if err := s.Checker.Struct(in); err != nil {
		return records.Candidate{}, err
	}
	candidates, err := load(ctx, s.Store, records.Candidates, candidateKey)
	if err != nil {
		return records.Candidate{}, err
	}
	idx := indexOf(candidates, id, candidateKey)
	if idx < 0 {
		return records.Candidate{}, ErrCandidateNotFound
	}
	applyCandidateInput(&candidates[idx], in)
	if err := records.Set(ctx, s.Store, records.Candidates, candidates); err != nil {
		return records.Candidate{}, err
	}
	s.record(ctx, sess, ActionUpdate, EntityCandidate, id)
	return candidates[idx], nil
}

func (s *Service) DeleteCandidate(ctx context.Context, sess session.Session, id string) error {
	ctx, unlock := s.Store.Lock(ctx)
	defer unlock()
	candidates, err := load(ctx, s.Store, records.Candidates, candidateKey)
	if err != nil {
		return err
	}
	idx := indexOf(candidates, id, candidateKey)
	if idx < 0 {
		return ErrCandidateNotFound
	}
	candidates = removeAt(candidates, idx)
	if err := records.Set(ctx, s.Store, records.Candidates, candidates); err != nil {
		return err
	}
	s.record(ctx, sess, ActionDelete, EntityCandidate, id)
	return nil
}

func (s *Service) AttachCandidateDocument(ctx context.Context, sess session.Session, id string, up documents.Upload) (records.Document, error) {
	ctx, unlock := s.Store.Lock(ctx)
	defer unlock()
	candidates, err := load(ctx, s.Store, records.Candidates, candidateKey)
	if err != nil {
		return records.Document{}, err
	}
	idx := indexOf(candidates, id, candidateKey)
	if idx < 0 {
		return records.Document{}, ErrCandidateNotFound
	}
	doc, err := s.newDocument(up, candidates[idx].Documents)
	if err != nil {
		return records.Document{}, err
	}
	candidates[idx].Documents = append(candidates[idx].Documents, doc)
	if err := records.Set(ctx, s.Store, records.Candidates, candidates); err != nil {
		return records.Document{}, err
	}
	s.record(ctx, sess, ActionAttach, EntityDocument, id)
	return doc, nil
}

func (s *Service) RemoveCandidateDocument(ctx context.Context, sess session.Session, id string, docID int64) error {
	ctx, unlock := s.Store.Lock(ctx)
	defer unlock()
	candidates, err := load(ctx, s.Store, records.Candidates, candidateKey)
	if err != nil {
		return err
	}
	idx := indexOf(candidates, id, candidateKey)
	if idx < 0 {
		return ErrCandidateNotFound
	}
	docs, ok := documents.Remove(candidates[idx].Documents, docID)
	if !ok {
		return ErrDocumentNotFound
	}
	candidates[idx].Documents = docs
	if err := records.Set(ctx, s.Store, records.Candidates, candidates); err != nil {
		return err
	}
	s.record(ctx, sess, ActionDetach, EntityDocument, id)
	return nil
}

func trimCandidate(in CandidateInput) CandidateInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Resume = strings.TrimSpace(in.Resume)
	in.Status = strings.TrimSpace(in.Status)
	return in
}

func applyCandidateInput(c *records.Candidate, in CandidateInput) {
	c.Name = in.Name
	c.Email = in.Email
	c.Resume = in.Resume
	c.Status = in.Status
	if c.Status == "" {
		c.Status = records.CandidateApplied
	}
	if c.Documents == nil {
		c.Documents = []records.Document{}
	}
}

func (s *Service) ListVacancies(ctx context.Context) ([]records.Vacancy, error) {
	return lenient(load(ctx, s.Store, records.Vacancies, vacancyKey))
}

func (s *Service) CreateVacancy(ctx context.Context, sess session.Session, in VacancyInput) (records.Vacancy, error) {
	ctx, unlock := s.Store.Lock(ctx)
	defer unlock()
	in = trimVacancy(in)
	if err := s.Checker.Struct(in); err != nil {
		return records.Vacancy{}, err
	}
	vacancies, err := load(ctx, s.Store, records.Vacancies, vacancyKey)
	if err != nil {
		return records.Vacancy{}, err
	}
	v := records.Vacancy{
		ID:           newID(),
		Title:        in.Title,
		Description:  in.Description,
		Requirements: in.Requirements,
		Closing:      in.Closing,
	}
	vacancies = append(vacancies, v)
	if err := records.Set(ctx, s.Store, records.Vacancies, vacancies); err != nil {
		return records.Vacancy{}, err
	}
	s.record(ctx, sess, ActionCreate, EntityVacancy, v.ID.String())
	return v, nil
}

func (s *Service) UpdateVacancy(ctx context.Context, sess session.Session, id string, in VacancyInput) (records.Vacancy, error) {
	ctx, unlock := s.Store.Lock(ctx)
	defer unlock()
	in = trimVacancy(in)
	if err := s.Checker.Struct(in); err != nil {
		return records.Vacancy{}, err
	}
	vacancies, err := load(ctx, s.Store, records.Vacancies, vacancyKey)
	if err != nil {
		return records.Vacancy{}, err
	}
	idx := indexOf(vacancies, id, vacancyKey)
	if idx < 0 {
		return records.Vacancy{}, ErrVacancyNotFound
	}
	v := &vacancies[idx]
	v.Title = in.Title
	v.Description = in.Description
	v.Requirements = in.Requirements
	v.Closing = in.Closing
	if err := records.Set(ctx, s.Store, records.Vacancies, vacancies); err != nil {
		return records.Vacancy{}, err
	}
	s.record(ctx, sess, ActionUpdate, EntityVacancy, id)
	return *v, nil
}

func (s *Service) DeleteVacancy(ctx context.Context, sess session.Session, id string) error {
	ctx, unlock := s.Store.Lock(ctx)
	defer unlock()
	vacancies, err := load(ctx, s.Store, records.Vacancies, vacancyKey)
	if err != nil {
		return err
	}
	idx := indexOf(vacancies, id, vacancyKey)
	if idx < 0 {
		return ErrVacancyNotFound
	}
	vacancies = removeAt(vacancies, idx)
	if err := records.Set(ctx, s.Store, records.Vacancies, vacancies); err != nil {
		return err
	}
	s.record(ctx, sess, ActionDelete, EntityVacancy, id)
	return nil
}

func trimVacancy(in VacancyInput) VacancyInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Requirements = strings.TrimSpace(in.Requirements)
	in.Closing = strings.TrimSpace(in.Closing)
	return in
}
