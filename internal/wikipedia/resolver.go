package wikipedia

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// resolveStage is one tier of the disambiguation cascade: given the search
// hits for (title, year), it either produces a match or passes. Stages run
// in order and the first match wins.
type resolveStage func(ctx context.Context, hits []string, title string, year int) (string, bool, error)

var filmSuffix = regexp.MustCompile(`\((\d{4} )?film\)$`)

// ResolveTitle disambiguates a commercial title/year pair against the
// opensearch index. Returns "" when no article can be matched; that is not
// an error. The search index ranks by textual relevance, so suffix matches
// like "(2010 film)" are preferred over position before falling back to the
// first hit.
func (c *Client) ResolveTitle(ctx context.Context, title string, year int) (string, error) {
	hits, err := c.OpenSearch(ctx, title)
	if err != nil {
		return "", err
	}
	if len(hits) == 0 {
		return "", nil
	}
	if len(hits) == 1 {
		return hits[0], nil
	}

	stages := []resolveStage{
		matchYearFilmSuffix,
		matchFilmSuffix,
		c.requerySuffixed,
		matchFirstHit,
	}
	for _, stage := range stages {
		match, ok, err := stage(ctx, hits, title, year)
		if err != nil {
			return "", err
		}
		if ok {
			return match, nil
		}
	}
	return "", nil
}

// CleanResolvedTitle strips a disambiguation suffix like " (2010 film)" or
// " (film)" from a resolved article title.
func CleanResolvedTitle(resolved string) string {
	return strings.TrimSpace(filmSuffix.ReplaceAllString(resolved, ""))
}

// matchYearFilmSuffix takes the first hit carrying an exact "(<year> film)"
// suffix, the highest-precision disambiguation signal available.
func matchYearFilmSuffix(_ context.Context, hits []string, _ string, year int) (string, bool, error) {
	suffix := fmt.Sprintf("(%d film)", year)
	for _, hit := range hits {
		if strings.HasSuffix(hit, suffix) {
			return hit, true, nil
		}
	}
	return "", false, nil
}

// matchFilmSuffix takes the first hit carrying a generic "(film)" suffix.
func matchFilmSuffix(_ context.Context, hits []string, _ string, _ int) (string, bool, error) {
	for _, hit := range hits {
		if strings.HasSuffix(hit, "(film)") {
			return hit, true, nil
		}
	}
	return "", false, nil
}

// requerySuffixed fires only when the hit list is full to the search limit,
// the signature of an over-broad title (e.g. "The American") whose film
// article may not place in the top results at all. It re-queries with the
// disambiguation suffix appended, year-specific first.
func (c *Client) requerySuffixed(ctx context.Context, hits []string, title string, year int) (string, bool, error) {
	if len(hits) != c.searchLimit {
		return "", false, nil
	}
	for _, query := range []string{
		fmt.Sprintf("%s (%d film)", title, year),
		fmt.Sprintf("%s (film)", title),
	} {
		requeried, err := c.OpenSearch(ctx, query)
		if err != nil {
			return "", false, err
		}
		if len(requeried) > 0 {
			return requeried[0], true, nil
		}
	}
	return "", false, nil
}

// matchFirstHit is the terminal fallback: just take the top-ranked hit.
func matchFirstHit(_ context.Context, hits []string, _ string, _ int) (string, bool, error) {
	return hits[0], true, nil
}

// LogResolution emits the verbose-mode diagnostics for one resolution.
func (c *Client) LogResolution(title string, resolved string) {
	if resolved == "" {
		c.log.Info("no article found", zap.String("title", title))
		return
	}
	if !strings.EqualFold(CleanResolvedTitle(resolved), title) {
		c.log.Info("resolved to differently-named article",
			zap.String("title", title),
			zap.String("resolved", resolved),
		)
	}
}
