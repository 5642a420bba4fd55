package repository

import (
	"errors"

	"hunttickets/internal/database"

	"github.com/lib/pq"
)

type Repositories struct {
	Events    *EventRepository
	Tickets   *TicketRepository
	Policies  *PoliciesRepository
	Producers *ProducerRepository
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Events:    NewEventRepository(db),
		Tickets:   NewTicketRepository(db),
		Policies:  NewPoliciesRepository(db),
		Producers: NewProducerRepository(db),
	}
}

// PostgreSQL error codes the stores react to
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

func pqCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// where accumulates "AND" conditions and their positional arguments.
type where struct {
	clauses []string
	args    []any
}

// add appends cond with every "?" replaced by the next $n placeholder.
func (w *where) add(cond string, args ...any) {
	for _, a := range args {
		w.args = append(w.args, a)
		cond = replaceFirst(cond, "?", placeholder(len(w.args)))
	}
	w.clauses = append(w.clauses, cond)
}

func (w *where) sql() string {
	out := " WHERE 1=1"
	for _, c := range w.clauses {
		out += " AND " + c
	}
	return out
}

// page appends LIMIT/OFFSET when set.
func (w *where) page(limit, offset int) string {
	out := ""
	if limit > 0 {
		w.args = append(w.args, limit)
		out += " LIMIT " + placeholder(len(w.args))
	}
	if offset > 0 {
		w.args = append(w.args, offset)
		out += " OFFSET " + placeholder(len(w.args))
	}
	return out
}
