package evaluation

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/joacominatel/sqlgrader/internal/logger"
)

// Evaluator grades a student query against a reference solution.
// It holds no per-call state and is safe for concurrent use.
type Evaluator struct {
	executor *Executor
	messages Messages
	log      *logger.Logger
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithLocale selects the feedback catalog.
func WithLocale(locale string) Option {
	return func(e *Evaluator) { e.messages = MessagesFor(locale) }
}

// WithLogger sets the logger used for verdicts.
func WithLogger(log *logger.Logger) Option {
	return func(e *Evaluator) { e.log = log }
}

// NewEvaluator creates an Evaluator over executor.
func NewEvaluator(executor *Executor, opts ...Option) *Evaluator {
	e := &Evaluator{
		executor: executor,
		messages: MessagesFor(DefaultLocale),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// EvaluateQuery runs both queries concurrently and classifies the outcome.
// It never returns an error: every failure maps to a category.
func (e *Evaluator) EvaluateQuery(ctx context.Context, studentQuery, solutionQuery string, databaseID int64) EvaluationResult {
	return e.Evaluate(ctx, studentQuery, solutionQuery, databaseID).Result
}

// Evaluate is EvaluateQuery that also returns the executed results.
func (e *Evaluator) Evaluate(ctx context.Context, studentQuery, solutionQuery string, databaseID int64) Report {
	log := e.log.WithFields(map[string]any{
		"evaluation_id": uuid.NewString(),
		"database_id":   databaseID,
	})

	var (
		student, expected       *QueryResult
		studentErr, solutionErr error
	)
	// Sides are independent: a failure on one does not cancel the other.
	var g errgroup.Group
	g.Go(func() error {
		student, studentErr = e.executor.Execute(ctx, studentQuery, databaseID, "student")
		return studentErr
	})
	g.Go(func() error {
		expected, solutionErr = e.executor.Execute(ctx, solutionQuery, databaseID, "solution")
		return solutionErr
	})
	_ = g.Wait()

	if studentErr != nil || solutionErr != nil {
		err := studentErr
		if err == nil {
			err = solutionErr
			log.Error(solutionErr, "reference solution failed")
		}
		res := e.fromError(err)
		log.With("category", string(res.Category)).Info("evaluation finished")
		return Report{Result: res, Student: student, Expected: expected}
	}

	cmp := Compare(student, expected)
	category := categorize(cmp)
	res := EvaluationResult{
		IsCorrect:        category == CategoryCorrect,
		Category:         category,
		Feedback:         e.messages.forComparison(category, cmp),
		ExecutionTimeMs:  student.ExecutionTimeMs,
		TechnicalDetails: &cmp,
	}
	log.WithFields(map[string]any{
		"category":    string(category),
		"duration_ms": student.ExecutionTimeMs,
	}).Info("evaluation finished")
	return Report{Result: res, Student: student, Expected: expected}
}

func categorize(cmp ComparisonResult) Category {
	switch {
	case cmp.IsExactMatch:
		return CategoryCorrect
	case !cmp.ColumnsMatch:
		return CategoryWrongColumns
	case !cmp.RowCountMatch:
		return CategoryWrongRowCount
	default:
		return CategoryWrongData
	}
}

func (e *Evaluator) fromError(err error) EvaluationResult {
	res := EvaluationResult{Category: CategoryExecutionError, Feedback: e.messages.ExecutionError}

	var qe *QueryError
	if !errors.As(err, &qe) {
		return res
	}
	switch {
	case qe.Kind == KindTimeout:
		res.Category = CategoryTimeoutError
		res.Feedback = e.messages.Timeout
	case qe.UserSafe():
		res.Category = CategorySyntaxError
		res.Feedback = qe.Message
	}
	return res
}
