package evaluation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/joacominatel/sqlgrader/internal/database"
)

type fakeResponse struct {
	raw       *database.RawResult
	err       error
	delay     time.Duration
	ignoreCtx bool
}

type fakeRunner struct {
	mu        sync.Mutex
	responses map[string]fakeResponse
	queries   []string
	limits    []int
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{responses: map[string]fakeResponse{}}
}

func (f *fakeRunner) on(query string, resp fakeResponse) *fakeRunner {
	f.responses[query] = resp
	return f
}

func (f *fakeRunner) RunQuery(ctx context.Context, _ int64, query string, limit int) (*database.RawResult, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.limits = append(f.limits, limit)
	resp, ok := f.responses[query]
	f.mu.Unlock()

	if !ok {
		return nil, errors.New(`ERROR: syntax error at or near "SELCT" (SQLSTATE 42601)`)
	}
	if resp.delay > 0 {
		if resp.ignoreCtx {
			time.Sleep(resp.delay)
		} else {
			select {
			case <-time.After(resp.delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return resp.raw, resp.err
}

func (f *fakeRunner) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

func raw(columns []string, rows ...[]any) *database.RawResult {
	fields := make([]database.Field, len(columns))
	for i, c := range columns {
		fields[i] = database.Field{Name: c}
	}
	if rows == nil {
		rows = [][]any{}
	}
	return &database.RawResult{Fields: fields, Rows: rows}
}

func result(columns []string, rows ...Row) *QueryResult {
	if rows == nil {
		rows = []Row{}
	}
	return &QueryResult{Columns: columns, Rows: rows, RowCount: len(rows)}
}
