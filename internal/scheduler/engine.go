package scheduler

import (
	"errors"
	"math/rand"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/tennis-lesson-scheduler/internal/models"
)

// DefaultPasses is the number of passes run when Options.Passes is unset.
const DefaultPasses = 3

// ErrNothingToSchedule is returned when the roster is empty.
var ErrNothingToSchedule = errors.New("nothing to schedule")

// Options configures an Engine.
type Options struct {
	Passes  int
	Seed    int64
	Weights Weights
	Logger  *zap.Logger
}

// Input is everything a scheduling run reads. Nothing in it is mutated.
type Input struct {
	Students    []models.Student
	Coaches     []models.Coach
	Constraints []models.Constraint
	Locked      []models.ScheduleEntry
}

// Result is the outcome of a scheduling run.
type Result struct {
	Entries        []models.ScheduleEntry
	Unscheduled    []models.UnscheduledStudent
	RejectedLocked []models.ScheduleEntry
	PassProgress   []int
	Seed           int64
}

// Engine places students into the weekly grid using greedy multi-pass scoring.
type Engine struct {
	passes  int
	seed    int64
	weights Weights
	logger  *zap.Logger
}

// NewEngine builds an engine, filling unset options with defaults.
func NewEngine(opts Options) *Engine {
	if opts.Passes <= 0 {
		opts.Passes = DefaultPasses
	}
	if opts.Weights == (Weights{}) {
		opts.Weights = DefaultWeights()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Engine{
		passes:  opts.Passes,
		seed:    opts.Seed,
		weights: opts.Weights,
		logger:  opts.Logger,
	}
}

type assignment struct {
	student models.Student
	coach   models.Coach
}

// Schedule runs the passes and returns the resulting entries. A zero seed picks
// one from the clock; the seed used is reported on the result.
func (e *Engine) Schedule(in Input) (*Result, error) {
	if len(in.Students) == 0 {
		return nil, ErrNothingToSchedule
	}

	seed := e.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	coaches := make(map[string]models.Coach, len(in.Coaches))
	for _, coach := range in.Coaches {
		coaches[coach.ID] = coach
	}

	st := newState(in.Constraints)
	result := &Result{Seed: seed}

	for _, entry := range in.Locked {
		coach, ok := coaches[entry.CoachID]
		if !ok || !entry.Cell().Valid() || !st.fits(coach, entry.Cell()) {
			e.logger.Warn("locked entry rejected",
				zap.String("coach_id", entry.CoachID),
				zap.String("student_id", entry.StudentID),
				zap.String("cell", entry.Cell().Label()),
			)
			result.RejectedLocked = append(result.RejectedLocked, entry)
			continue
		}
		entry.Locked = true
		st.place(entry)
	}

	order := make([]assignment, 0, len(in.Students))
	for _, student := range in.Students {
		coach, ok := coaches[student.CoachID]
		if !ok {
			e.logger.Warn("student references unknown coach",
				zap.String("student_id", student.ID),
				zap.String("coach_id", student.CoachID),
			)
			continue
		}
		order = append(order, assignment{student: student, coach: coach})
	}

	sort.SliceStable(order, func(i, j int) bool {
		ni, nj := st.remaining(order[i].student), st.remaining(order[j].student)
		if ni != nj {
			return ni > nj
		}
		return order[i].coach.ID < order[j].coach.ID
	})

	for pass := 1; pass <= e.passes; pass++ {
		if pass > 1 {
			rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		}
		for _, a := range order {
			e.fill(st, a)
		}
		result.PassProgress = append(result.PassProgress, len(st.entries))
		e.logger.Debug("scheduling pass finished",
			zap.Int("pass", pass),
			zap.Int("placed", len(st.entries)),
			zap.Int("remaining", st.unmet(in.Students)),
		)
	}

	result.Entries = st.entries
	for _, student := range in.Students {
		placed := st.studentPlaced[student.ID]
		if placed < student.LessonsPerWeek {
			result.Unscheduled = append(result.Unscheduled, models.UnscheduledStudent{
				StudentID: student.ID,
				Name:      student.Name,
				Needed:    student.LessonsPerWeek,
				Scheduled: placed,
			})
		}
	}

	e.logger.Info("schedule generated",
		zap.Int64("seed", seed),
		zap.Int("entries", len(result.Entries)),
		zap.Int("unscheduled", len(result.Unscheduled)),
	)
	return result, nil
}

// fill places lessons for one student until the need is met or no cell is feasible.
func (e *Engine) fill(st *state, a assignment) {
	for st.remaining(a.student) > 0 {
		cell, ok := e.bestCell(st, a)
		if !ok {
			return
		}
		st.place(models.ScheduleEntry{
			Day:         cell.Day,
			Slot:        cell.Slot,
			CoachID:     a.coach.ID,
			StudentID:   a.student.ID,
			StudentName: a.student.Name,
		})
	}
}

// bestCell returns the highest scoring feasible cell; ties keep the earliest cell.
func (e *Engine) bestCell(st *state, a assignment) (models.Cell, bool) {
	var best models.Cell
	bestScore := Infeasible
	for _, cell := range models.WeekCells() {
		score := st.score(e.weights, a.student, a.coach, cell)
		if score > bestScore {
			best, bestScore = cell, score
		}
	}
	return best, bestScore > Infeasible
}
