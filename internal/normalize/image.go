package normalize

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/user/bookmeta/internal/repository"
	"github.com/user/bookmeta/pkg/metrics"
)

var (
	amazonSizeToken = regexp.MustCompile(`\._[^/.]*_\.`)
	goodreadsSize   = regexp.MustCompile(`/books/(\d+)[a-z]?/`)
)

const goodreadsCompressed = "compressed.photo."

var goodreadsSuffixes = []string{"i", "l", "m", ""}

// CoverCandidates lists the URL variants worth probing for src. The original
// URL always comes first so resolution can never fail outright.
func CoverCandidates(src string) []string {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil
	}
	seen := map[string]struct{}{}
	var out []string
	add := func(u string) {
		if _, ok := seen[u]; ok || u == "" {
			return
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}

	add(src)
	bases := []string{src}
	if stripped := amazonSizeToken.ReplaceAllString(src, "."); stripped != src {
		add(stripped)
		bases = append(bases, stripped)
	}

	for _, base := range bases {
		if !goodreadsSize.MatchString(base) {
			continue
		}
		paths := []string{base}
		if strings.Contains(base, goodreadsCompressed) {
			paths = append(paths, strings.Replace(base, goodreadsCompressed, "", 1))
		}
		for _, p := range paths {
			for _, suffix := range goodreadsSuffixes {
				add(goodreadsSize.ReplaceAllString(p, "/books/${1}"+suffix+"/"))
			}
		}
	}
	return out
}

// CoverResolver picks the largest loadable variant of a cover URL.
type CoverResolver struct {
	prober  repository.ImageProber
	timeout time.Duration
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewCoverResolver builds a resolver. A nil prober makes Resolve return its
// input unchanged.
func NewCoverResolver(prober repository.ImageProber, timeout time.Duration, logger *zap.Logger, m *metrics.Metrics) *CoverResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CoverResolver{prober: prober, timeout: timeout, logger: logger, metrics: m}
}

// Resolve probes every candidate concurrently, waits for all of them and
// returns the one with the largest measured area. A failed probe scores 0 and
// can never beat a probe that loaded; when nothing loads, src is returned.
func (r *CoverResolver) Resolve(ctx context.Context, src string) string {
	candidates := CoverCandidates(src)
	if len(candidates) == 0 || r == nil || r.prober == nil {
		return strings.TrimSpace(src)
	}

	areas := make([]int, len(candidates))
	var wg sync.WaitGroup
	for i, candidate := range candidates {
		wg.Add(1)
		go func(i int, candidate string) {
			defer wg.Done()
			probeCtx := ctx
			if r.timeout > 0 {
				var cancel context.CancelFunc
				probeCtx, cancel = context.WithTimeout(ctx, r.timeout)
				defer cancel()
			}
			area, err := r.prober.Probe(probeCtx, candidate)
			if err != nil {
				r.logger.Debug("cover probe failed", zap.String("url", candidate), zap.Error(err))
				r.metrics.IncImageProbe("failed")
				return
			}
			r.metrics.IncImageProbe("loaded")
			areas[i] = area
		}(i, candidate)
	}
	wg.Wait()

	best, bestArea := candidates[0], 0
	for i, area := range areas {
		if area > bestArea {
			best, bestArea = candidates[i], area
		}
	}
	r.logger.Debug("cover resolved", zap.String("src", src), zap.String("best", best), zap.Int("area", bestArea))
	return best
}
