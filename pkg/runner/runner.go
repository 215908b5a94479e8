// Package runner sends every request of a collection in order and
// summarizes the outcome.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/holps-7/striko/pkg/model"
)

// Sender performs one HTTP exchange.
type Sender interface {
	Execute(ctx context.Context, req model.Request) model.Response
}

// Recorder receives every executed request. *core.Session implements it.
type Recorder interface {
	SaveToActivity(req model.Request) bool
}

// Options controls a run.
type Options struct {
	// RPS caps requests per second. Zero or less means no pacing.
	RPS float64
	// StopOnFailure ends the run after the first failed request.
	StopOnFailure bool
}

// Result is the outcome of one request.
type Result struct {
	Name       string `json:"name"`
	Path       string `json:"path,omitempty"`
	RequestID  string `json:"request_id"`
	Method     string `json:"method"`
	URL        string `json:"url"`
	Status     int    `json:"status"`
	StatusText string `json:"status_text"`
	TimeMS     int64  `json:"time_ms"`
	Size       int    `json:"size"`
	Passed     bool   `json:"passed"`
	Error      string `json:"error,omitempty"`
}

// Summary is the outcome of a whole run.
type Summary struct {
	Collection  string        `json:"collection"`
	StartTime   time.Time     `json:"start_time"`
	EndTime     time.Time     `json:"end_time"`
	Duration    time.Duration `json:"duration"`
	Total       int           `json:"total"`   // Requests in the collection
	Passed      int           `json:"passed"`  // Completed with a status below 400
	Failed      int           `json:"failed"`  // Network errors and 4xx/5xx
	Skipped     int           `json:"skipped"` // Not sent because the run stopped early
	Results     []Result      `json:"results"`
	StatusCodes map[int]int   `json:"status_codes"`
	MinLatency  time.Duration `json:"min_latency"`
	AvgLatency  time.Duration `json:"avg_latency"`
	LatencyP50  time.Duration `json:"latency_p50"`
	LatencyP95  time.Duration `json:"latency_p95"`
	MaxLatency  time.Duration `json:"max_latency"`
}

// Runner executes collections.
type Runner struct {
	sender   Sender
	recorder Recorder
	logger   *slog.Logger
}

// New creates a runner. recorder may be nil.
func New(sender Sender, recorder Recorder, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{sender: sender, recorder: recorder, logger: logger}
}

// Passed reports whether resp counts as a pass.
func Passed(resp model.Response) bool {
	return resp.Status != 0 && resp.Status < 400
}

// Run sends the top-level requests of c and then the requests of each folder,
// depth-first. When ctx ends the partial summary is returned with ctx's error.
func (r *Runner) Run(ctx context.Context, c model.Collection, opts Options) (Summary, error) {
	reqs := c.Flatten()
	summary := Summary{
		Collection:  c.Name,
		StartTime:   time.Now(),
		Total:       len(reqs),
		Results:     make([]Result, 0, len(reqs)),
		StatusCodes: make(map[int]int),
	}

	var limiter *rate.Limiter
	if opts.RPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RPS), 1)
	}

	var runErr error
	for _, fr := range reqs {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				runErr = err
				break
			}
		}
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		result := r.runOne(ctx, fr)
		summary.Results = append(summary.Results, result)
		if result.Status != 0 {
			summary.StatusCodes[result.Status]++
		}
		if result.Passed {
			summary.Passed++
			continue
		}
		summary.Failed++
		if opts.StopOnFailure {
			r.logger.Info("stopping run after failure", "collection", c.Name, "request", result.Name)
			break
		}
	}

	summary.Skipped = summary.Total - len(summary.Results)
	summary.EndTime = time.Now()
	summary.Duration = summary.EndTime.Sub(summary.StartTime)
	summary.computeLatency()

	r.logger.Info("run finished", "collection", c.Name, "passed", summary.Passed, "failed", summary.Failed, "skipped", summary.Skipped)
	return summary, runErr
}

func (r *Runner) runOne(ctx context.Context, fr model.FolderRequest) Result {
	req := fr.Request
	resp := r.sender.Execute(ctx, req)
	if r.recorder != nil {
		r.recorder.SaveToActivity(req)
	}

	result := Result{
		Name:       req.DisplayName(),
		Path:       fr.Path,
		RequestID:  req.ID,
		Method:     model.NormalizeMethod(req.Method),
		URL:        req.URL,
		Status:     resp.Status,
		StatusText: resp.StatusText,
		TimeMS:     resp.Time,
		Size:       resp.Size,
		Passed:     Passed(resp),
		Error:      resp.ErrorMessage(),
	}
	r.logger.Debug("request executed", "name", result.Name, "status", result.Status, "ms", result.TimeMS)
	return result
}

// computeLatency fills the latency fields from completed exchanges only.
func (s *Summary) computeLatency() {
	var latencies []time.Duration
	for _, res := range s.Results {
		if res.Status != 0 {
			latencies = append(latencies, time.Duration(res.TimeMS)*time.Millisecond)
		}
	}
	if len(latencies) == 0 {
		return
	}

	sort.Slice(latencies, func(i, j int) bool {
		return latencies[i] < latencies[j]
	})

	s.MinLatency = latencies[0]
	s.MaxLatency = latencies[len(latencies)-1]
	s.LatencyP50 = latencies[percentileIndex(len(latencies), 50)]
	s.LatencyP95 = latencies[percentileIndex(len(latencies), 95)]

	var sum time.Duration
	for _, lat := range latencies {
		sum += lat
	}
	s.AvgLatency = sum / time.Duration(len(latencies))
}

// percentileIndex calculates the index for a given percentile
func percentileIndex(n int, percentile int) int {
	if n == 0 {
		return 0
	}
	index := int(math.Ceil(float64(n)*float64(percentile)/100.0)) - 1
	if index < 0 {
		index = 0
	}
	if index >= n {
		index = n - 1
	}
	return index
}

// Format renders a plain-text report of s.
func Format(s Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Collection: %s\n", s.Collection)
	fmt.Fprintf(&b, "Duration: %.2fs\n\n", s.Duration.Seconds())

	for _, res := range s.Results {
		mark := "✓"
		if !res.Passed {
			mark = "✗"
		}
		name := res.Name
		if res.Path != "" {
			name = res.Path + "/" + name
		}
		if res.Status == 0 {
			fmt.Fprintf(&b, "%s %s %s (%s)\n", mark, res.Method, name, res.Error)
			continue
		}
		fmt.Fprintf(&b, "%s %s %s %d %s %dms\n", mark, res.Method, name, res.Status, res.StatusText, res.TimeMS)
	}

	fmt.Fprintf(&b, "\nTotal: %d  Passed: %d  Failed: %d", s.Total, s.Passed, s.Failed)
	if s.Skipped > 0 {
		fmt.Fprintf(&b, "  Skipped: %d", s.Skipped)
	}
	b.WriteString("\n")

	if s.MaxLatency > 0 {
		fmt.Fprintf(&b, "Latency: min %v  avg %v  p50 %v  p95 %v  max %v\n",
			s.MinLatency, s.AvgLatency, s.LatencyP50, s.LatencyP95, s.MaxLatency)
	}

	if len(s.StatusCodes) > 0 {
		codes := make([]int, 0, len(s.StatusCodes))
		for code := range s.StatusCodes {
			codes = append(codes, code)
		}
		sort.Ints(codes)
		b.WriteString("Status codes:")
		for _, code := range codes {
			fmt.Fprintf(&b, " %d×%d", code, s.StatusCodes[code])
		}
		b.WriteString("\n")
	}
	return b.String()
}
