package linkgen

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/recipescan/internal/config"
)

// ErrNoSampler is returned when a sample generator has no store to draw from.
var ErrNoSampler = errors.New("sample links need a store")

// ErrInvalidArgs is returned when profile arguments don't fit the generator.
var ErrInvalidArgs = errors.New("invalid profile arguments")

// Sampler draws stored URLs at random. database.Collection satisfies it.
type Sampler interface {
	SampleURLs(ctx context.Context, n int) ([]string, error)
}

// Generate returns the seed URLs for links. args override the generator's
// settings: the page range for pages ("first [last]"), the date range for
// dates ("first [last]" in the block's layout), the size for sample, and
// extra URLs for static.
func Generate(ctx context.Context, links config.Links, args []string, sampler Sampler) ([]string, error) {
	switch links.Type {
	case "", config.LinksStatic:
		return dedup(append(append([]string{}, links.URLs...), args...)), nil
	case config.LinksPages:
		return pages(links, args)
	case config.LinksSample:
		return sample(ctx, links, args, sampler)
	case config.LinksDates:
		return dates(links, args)
	default:
		return nil, fmt.Errorf("%w: unknown type %q", config.ErrInvalidLinks, links.Type)
	}
}

func pages(links config.Links, args []string) ([]string, error) {
	first, last := links.First, links.Last

	if len(args) > 2 {
		return nil, fmt.Errorf("%w: pages takes first and optional last page", ErrInvalidArgs)
	}
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return nil, fmt.Errorf("%w: first page %q", ErrInvalidArgs, args[0])
		}
		first, last = n, n
	}
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return nil, fmt.Errorf("%w: last page %q", ErrInvalidArgs, args[1])
		}
		last = n
	}
	if last == 0 {
		last = first
	}
	if last < first {
		return nil, fmt.Errorf("%w: last page %d before first page %d", ErrInvalidArgs, last, first)
	}

	urls := make([]string, 0, last-first+1)
	for p := first; p <= last; p++ {
		r := strings.NewReplacer(
			config.PagePlaceholder, strconv.Itoa(p),
			config.OffsetPlaceholder, strconv.Itoa((p-1)*links.PageSize+1),
		)
		urls = append(urls, r.Replace(links.Template))
	}
	return urls, nil
}

// dates expands the template once per month from the first date to the
// last, both inclusive. Each step adds the number of days of the current
// month, so the day of month is kept where the next month has it.
func dates(links config.Links, args []string) ([]string, error) {
	if len(args) > 2 {
		return nil, fmt.Errorf("%w: dates takes first and optional last date", ErrInvalidArgs)
	}

	firstDate, lastDate := links.FirstDate, links.LastDate
	if len(args) > 0 {
		firstDate, lastDate = args[0], ""
	}
	if len(args) > 1 {
		lastDate = args[1]
	}
	if firstDate == "" {
		return nil, fmt.Errorf("%w: dates need a first date", ErrInvalidArgs)
	}

	current, end, err := links.DateRange(firstDate, lastDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgs, err)
	}
	if end.Before(current) {
		return nil, fmt.Errorf("%w: last date %s before first date %s", ErrInvalidArgs, lastDate, firstDate)
	}

	layout := links.DateLayout()
	var urls []string
	for !current.After(end) {
		urls = append(urls, strings.ReplaceAll(links.Template, config.DatePlaceholder, current.Format(layout)))
		current = current.AddDate(0, 0, daysIn(current))
	}
	return urls, nil
}

// daysIn returns the number of days in the month of t.
func daysIn(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func sample(ctx context.Context, links config.Links, args []string, sampler Sampler) ([]string, error) {
	size := links.Size
	if len(args) > 1 {
		return nil, fmt.Errorf("%w: sample takes one size", ErrInvalidArgs)
	}
	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: sample size %q", ErrInvalidArgs, args[0])
		}
		size = n
	}

	urls := append([]string{}, links.URLs...)
	if size == 0 {
		return dedup(urls), nil
	}
	if sampler == nil {
		return nil, ErrNoSampler
	}

	sampled, err := sampler.SampleURLs(ctx, size)
	if err != nil {
		return nil, fmt.Errorf("failed to sample stored urls: %w", err)
	}
	return dedup(append(urls, sampled...)), nil
}

// ReadLinks reads one URL per line. Blank lines and lines starting with #
// are ignored.
func ReadLinks(r io.Reader) ([]string, error) {
	var links []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		links = append(links, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return links, nil
}

// ReadLinkFile reads the links in the file at path.
func ReadLinkFile(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided link file path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to open link file: %w", err)
	}
	defer f.Close()

	return ReadLinks(f)
}

// dedup removes repeated URLs, keeping the first occurrence.
func dedup(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
