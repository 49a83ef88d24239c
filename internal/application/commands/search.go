package commands

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/sahilm/fuzzy"

	"adda/internal/application"
	"adda/internal/domain"
	"adda/internal/ports"
)

// ProjectMatch is a project row with its relevance to a query
type ProjectMatch struct {
	domain.ProjectEntity
	Score int
}

// SearchProjectsCommand finds projects of one source by fuzzy name or id match
type SearchProjectsCommand struct {
	table          ports.ProjectTable
	Source         domain.ProjectSource
	Query          string
	IncludeDeleted bool
}

// NewSearchProjectsCommand creates a new SearchProjectsCommand
func NewSearchProjectsCommand(table ports.ProjectTable, source domain.ProjectSource, query string) *SearchProjectsCommand {
	return &SearchProjectsCommand{
		table:  table,
		Source: source,
		Query:  query,
	}
}

// Execute runs the search and returns scored, sorted matches
func (c *SearchProjectsCommand) Execute(ctx context.Context) ([]ProjectMatch, error) {
	partitionKey := c.Source.PartitionKey()
	if partitionKey == "" {
		return nil, fmt.Errorf("%w: %s", application.ErrInvalidSource, c.Source)
	}
	if len(c.Query) < 2 {
		return nil, nil
	}

	rows, err := c.table.List(ctx, partitionKey, domain.ProjectFilter{IncludeDeleted: c.IncludeDeleted})
	if err != nil {
		return nil, err
	}

	return FuzzySort(rows, c.Query), nil
}

// FuzzyScore rates how well target matches query. Substring matches score
// 100 (150 as a prefix); other in-order matches score between 1 and 99;
// 0 means no match.
func FuzzyScore(target, query string) int {
	if query == "" {
		return 0
	}

	lower, q := strings.ToLower(target), strings.ToLower(query)
	if strings.Contains(lower, q) {
		if strings.HasPrefix(lower, q) {
			return 150
		}
		return 100
	}

	matches := fuzzy.Find(query, []string{target})
	if len(matches) == 0 {
		return 0
	}
	return min(max(50+matches[0].Score, 1), 99)
}

// FuzzySort keeps the rows matching query, best match first
func FuzzySort(rows []domain.ProjectEntity, query string) []ProjectMatch {
	scored := make([]ProjectMatch, 0, len(rows))

	for _, r := range rows {
		best := max(FuzzyScore(r.Name, query), FuzzyScore(r.RowKey, query))
		if best > 0 {
			scored = append(scored, ProjectMatch{ProjectEntity: r, Score: best})
		}
	}

	// Stable so equal scores keep the table's name order
	slices.SortStableFunc(scored, func(a, b ProjectMatch) int {
		return b.Score - a.Score
	})

	return scored
}
