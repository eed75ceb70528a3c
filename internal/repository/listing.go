package repository

import (
	"strings"

	"github.com/GTDGit/wilayah_api/internal/models"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// pageWindow is a PageQuery resolved against an allow-list of sort columns.
type pageWindow struct {
	offset  int
	limit   int
	orderBy string
}

// resolvePage clamps offset/limit and maps the client-supplied sort column
// onto a trusted SQL expression. Unknown columns fall back to fallback and
// unknown directions to ascending, so no client input reaches ORDER BY.
func resolvePage(q models.PageQuery, columns map[string]string, fallback, tieBreak string) pageWindow {
	w := pageWindow{offset: q.Offset, limit: q.Limit}
	if w.offset < 0 {
		w.offset = 0
	}
	if w.limit < 1 {
		w.limit = defaultPageLimit
	}
	if w.limit > maxPageLimit {
		w.limit = maxPageLimit
	}

	col, ok := columns[strings.ToLower(strings.TrimSpace(q.SortColumn))]
	if !ok {
		col = columns[fallback]
	}
	dir := "ASC"
	if strings.EqualFold(strings.TrimSpace(q.SortDirection), models.SortDesc) {
		dir = "DESC"
	}
	w.orderBy = col + " " + dir + ", " + tieBreak + " ASC"
	return w
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching term as a literal substring.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}
