package hr

import (
	"context"
	"strings"

	"hrdesk/internal/domain/records"
	"hrdesk/internal/domain/session"
)

type TrainingInput struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"desc"`
	Type        string `json:"type"`
	EndDate     string `json:"end" validate:"omitempty,date"`
}

type PerformanceInput struct {
	EmployeeID string `json:"employeeId" validate:"required"`
	Evaluator  string `json:"evaluator" validate:"required"`
	Period     string `json:"period" validate:"required"`
	Score      string `json:"score" validate:"required"`
	Comments   string `json:"comments"`
}

func (s *Service) ListTrainings(ctx context.Context) ([]records.Training, error) {
	trainings, err := lenient(load(ctx, s.Store, records.Trainings, trainingKey))
	if err != nil {
		return nil, err
	}
	for i := range trainings {
		if trainings[i].Enrolled == nil {
			trainings[i].Enrolled = []string{}
		}
	}
	return trainings, nil
}

func (s *Service) CreateTraining(ctx context.Context, sess session.Session, in TrainingInput) (records.Training, error) {
	ctx, unlock := s.Store.Lock(ctx)
	defer unlock()
	in = trimTraining(in)
	if err := s.Checker.Struct(in); err != nil {
		return records.Training{}, err
	}
	trainings, err := load(ctx, s.Store, records.Trainings, trainingKey)
	if err != nil {
		return records.Training{}, err
	}
	t := records.Training{
		ID:          newID(),
		Title:       in.Title,
		Description: in.Description,
		Type:        in.Type,
		EndDate:     in.EndDate,
		Enrolled:    []string{},
	}
	trainings = append(trainings, t)
	if err := records.Set(ctx, s.Store, records.Trainings, trainings); err != nil {
		return records.Training{}, err
	}
	s.record(ctx, sess, ActionCreate, EntityTraining, t.ID.String())
	return t, nil
}

func (s *Service) UpdateTraining(ctx context.Context, sess session.Session, id string, in TrainingInput) (records.Training, error) {
	ctx, unlock := s.Store.Lock(ctx)
	defer unlock()
	in = trimTraining(in)
	if err := s.Checker.Struct(in); err != nil {
		return records.Training{}, err
	}
	trainings, err := load(ctx, s.Store, records.Trainings, trainingKey)
	if err != nil {
		return records.Training{}, err
	}
	idx := indexOf(trainings, id, trainingKey)
	if idx < 0 {
		return records.Training{}, ErrTrainingNotFound
	}
	t := &trainings[idx]
	t.Title = in.Title
	t.Description = in.Description
	t.Type = in.Type
	t.EndDate = in.EndDate
	if t.Enrolled == nil {
		t.Enrolled = []string{}
	}
	if err := records.Set(ctx, s.Store, records.Trainings, trainings); err != nil {
		return records.Training{}, err
	}
	s.record(ctx, sess, ActionUpdate, EntityTraining, id)
	return *t, nil
}

func (s *Service) DeleteTraining(ctx context.Context, sess session.Session, id string) error {
	ctx, unlock := s.Store.Lock(ctx)
	defer unlock()
	trainings, err := load(ctx, s.Store, records.Trainings, trainingKey)
	if err != nil {
		return err
	}
	idx := indexOf(trainings, id, trainingKey)
	if idx < 0 {
		return ErrTrainingNotFound
	}
	trainings = removeAt(trainings, idx)
	if err := records.Set(ctx, s.Store, records.Trainings, trainings); err != nil {
		return err
	}
	s.record(ctx, sess, ActionDelete, EntityTraining, id)
	return nil
}

// Enroll adds an employee id to a training. The employee must exist and may
// be enrolled once.
func (s *Service) Enroll(ctx context.Context, sess session.Session, trainingID, employeeID string) (records.Training, error) {
	ctx, unlock := s.Store.Lock(ctx)
	defer unlock()
	if _, err := s.employee(ctx, employeeID); err != nil {
		return records.Training{}, err
	}
	trainings, err := load(ctx, s.Store, records.Trainings, trainingKey)
	if err != nil {
		return records.Training{}, err
	}
	idx := indexOf(trainings, trainingID, trainingKey)
	if idx < 0 {
		return records.Training{}, ErrTrainingNotFound
	}
	t := &trainings[idx]
	for _, id := range t.Enrolled {
		if id == employeeID {
			return records.Training{}, ErrAlreadyEnrolled
		}
	}
	t.Enrolled = append(t.Enrolled, employeeID)
	if err := records.Set(ctx, s.Store, records.Trainings, trainings); err != nil {
		return records.Training{}, err
	}
	s.record(ctx, sess, ActionEnroll, EntityTraining, trainingID)
	return *t, nil
}

func (s *Service) Unenroll(ctx context.Context, sess session.Session, trainingID, employeeID string) (records.Training, error) {
	ctx, unlock := s.Store.Lock(ctx)
	defer unlock()
	trainings, err := load(ctx, s.Store, records.Trainings, trainingKey)
	if err != nil {
		return records.Training{}, err
	}
	idx := indexOf(trainings, trainingID, trainingKey)
	if idx < 0 {
		return records.Training{}, ErrTrainingNotFound
	}
	next, ok := without(trainings[idx].Enrolled, employeeID)
	if !ok {
		return records.Training{}, ErrNotEnrolled
	}
	trainings[idx].Enrolled = next
	if err := records.Set(ctx, s.Store, records.Trainings, trainings); err != nil {
		return records.Training{}, err
	}
	s.record(ctx, sess, ActionUnenroll, EntityTraining, trainingID)
	return trainings[idx], nil
}

func trimTraining(in TrainingInput) TrainingInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Type = strings.TrimSpace(in.Type)
	in.EndDate = strings.TrimSpace(in.EndDate)
	return in
}

// ListPerformances returns every review, or one employee's when employeeID is
// set.
func (s *Service) ListPerformances(ctx context.Context, employeeID string) ([]records.Performance, error) {
	reviews, err := lenient(load(ctx, s.Store, records.Performances, performanceKey))
	if err != nil {
		return nil, err
	}
	if employeeID == "" {
		return reviews, nil
	}
	out := []records.Performance{}
	for _, p := range reviews {
		if p.EmployeeID.String() == employeeID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Service) CreatePerformance(ctx context.Context, sess session.Session, in PerformanceInput) (records.Performance, error) {
	ctx, unlock := s.Store.Lock(ctx)
	defer unlock()
	in = trimPerformance(in)
	if err := s.Checker.Struct(in); err != nil {
		return records.Performance{}, err
	}
	emp, err := s.employee(ctx, in.EmployeeID)
	if err != nil {
		return records.Performance{}, err
	}
	reviews, err := load(ctx, s.Store, records.Performances, performanceKey)
	if err != nil {
		return records.Performance{}, err
	}
	p := records.Performance{
		ID:           newID(),
		EmployeeID:   emp.ID,
		EmployeeName: emp.Name,
		Evaluator:    in.Evaluator,
		Period:       in.Period,
		Score:        in.Score,
		Comments:     in.Comments,
	}
	reviews = append(reviews, p)
	if err := records.Set(ctx, s.Store, records.Performances, reviews); err != nil {
		return records.Performance{}, err
	}
	s.record(ctx, sess, ActionCreate, EntityPerformance, p.ID.String())
	return p, nil
}

func (s *Service) DeletePerformance(ctx context.Context, sess session.Session, id string) error {
	ctx, unlock := s.Store.Lock(ctx)
	defer unlock()
	reviews, err := load(ctx, s.Store, records.Performances, performanceKey)
	if err != nil {
		return err
	}
	idx := indexOf(reviews, id, performanceKey)
	if idx < 0 {
		return ErrPerformanceNotFound
	}
	reviews = removeAt(reviews, idx)
	if err := records.Set(ctx, s.Store, records.Performances, reviews); err != nil {
		return err
	}
	s.record(ctx, sess, ActionDelete, EntityPerformance, id)
	return nil
}

func trimPerformance(in PerformanceInput) PerformanceInput {
	in.EmployeeID = strings.TrimSpace(in.EmployeeID)
	in.Evaluator = strings.TrimSpace(in.Evaluator)
	in.Period = strings.TrimSpace(in.Period)
	in.Score = strings.TrimSpace(in.Score)
	in.Comments = strings.TrimSpace(in.Comments)
	return in
}
