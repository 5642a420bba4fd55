package repository

import (
	"strconv"
	"strings"
)

func placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}

func replaceFirst(s, old, repl string) string {
	return strings.Replace(s, old, repl, 1)
}

// setList builds the SET clause of a partial update.
type setList struct {
	cols []string
	args []any
}

func (s *setList) set(col string, v any) {
	s.args = append(s.args, v)
	s.cols = append(s.cols, col+" = "+placeholder(len(s.args)))
}

// setExpr is like set but with a custom right hand side; "?" marks the argument.
func (s *setList) setExpr(col, expr string, v any) {
	s.args = append(s.args, v)
	s.cols = append(s.cols, col+" = "+replaceFirst(expr, "?", placeholder(len(s.args))))
}

func (s *setList) sql() string {
	return strings.Join(s.cols, ", ")
}

// next is the placeholder for an argument appended after the SET values.
func (s *setList) next(v any) string {
	s.args = append(s.args, v)
	return placeholder(len(s.args))
}
