package core

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/spf13/afero"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/internal/classifier"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/internal/config"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/internal/embedding"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/internal/filesystem"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/internal/phash"
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/pkg/models"
	"go.uber.org/zap"
)

// ProgressCallback is called to report scan progress
type ProgressCallback func(phase string, current, total int, message string)

// groupOrder is the order in which groups are enumerated
var groupOrder = []models.FileType{models.TypeImage, models.TypeText, models.TypeCode}

// DuplicateScanner finds exact and near-duplicate pairs within a folder
type DuplicateScanner struct {
	config           *config.Config
	fs               afero.Fs
	logger           *zap.Logger
	registry         *embedding.Registry
	phash            *phash.Engine
	walker           *filesystem.Walker
	classifier       *classifier.Classifier
	progressCallback ProgressCallback
}

// NewDuplicateScanner creates a scanner that embeds files through registry
func NewDuplicateScanner(cfg *config.Config, fs afero.Fs, registry *embedding.Registry, logger *zap.Logger) *DuplicateScanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DuplicateScanner{
		config:     cfg,
		fs:         fs,
		logger:     logger,
		registry:   registry,
		phash:      phash.NewEngine(fs),
		walker:     filesystem.NewWalker(fs, cfg.Exclude, logger).SkipPaths(cfg.ArtifactPaths()...),
		classifier: classifier.New(fs),
	}
}

// SetProgressCallback sets the progress callback function
func (s *DuplicateScanner) SetProgressCallback(cb ProgressCallback) {
	s.progressCallback = cb
}

// reportProgress calls the progress callback if set
func (s *DuplicateScanner) reportProgress(phase string, current, total int, message string) {
	if s.progressCallback != nil {
		s.progressCallback(phase, current, total, message)
	}
}

// pairJob is one unordered pair inside a group
type pairJob struct {
	index int
	group models.FileType
	a, b  string
}

type outcome int

const (
	outcomeNoMatch outcome = iota
	outcomeScored
	outcomeMatch
	outcomePHashFiltered
	outcomeSkipped
)

type pairResult struct {
	index   int
	pair    *models.DuplicatePair
	outcome outcome
}

// Scan walks folder and returns its duplicate pairs, EXACT_DUPLICATE first.
// Failures on a single file or pair skip that pair and never abort the scan.
func (s *DuplicateScanner) Scan(ctx context.Context, folder string, threshold float64) (*models.ScanResults, error) {
	root, err := filepath.Abs(folder)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve folder: %w", err)
	}
	info, err := s.fs.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", models.ErrUnreadableFile, root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", models.ErrUsage, root)
	}

	s.logger.Info("Starting duplicate scan",
		zap.String("path", root),
		zap.Float64("threshold", threshold))

	results := &models.ScanResults{
		StartTime: time.Now(),
		ScanPath:  root,
		Threshold: threshold,
		Pairs:     []*models.DuplicatePair{},
		Stats:     &models.ScanStatistics{},
	}

	// Group files
	s.reportProgress("walking", 0, 0, "Collecting files...")
	groups, err := s.collectGroups(root, results.Stats)
	if err != nil {
		return nil, err
	}

	jobs := enumeratePairs(groups)
	results.Stats.PairsVisited = len(jobs)
	s.reportProgress("walking", results.Stats.TotalFiles, results.Stats.TotalFiles,
		fmt.Sprintf("Found %d files, %d candidate pairs", results.Stats.TotalFiles, len(jobs)))

	workers := s.config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	results.Stats.WorkersUsed = workers

	evaluated, err := s.comparePairs(ctx, jobs, workers, threshold)
	if err != nil {
		return nil, err
	}

	for _, r := range evaluated {
		switch r.outcome {
		case outcomeMatch:
			results.AddPair(r.pair)
		case outcomePHashFiltered:
			results.Stats.PHashFiltered++
		case outcomeSkipped:
			results.Stats.PairsSkipped++
		}
	}

	sort.SliceStable(results.Pairs, func(i, j int) bool {
		return results.Pairs[i].MatchType == models.MatchExact && results.Pairs[j].MatchType != models.MatchExact
	})

	results.EndTime = time.Now()
	results.Duration = results.EndTime.Sub(results.StartTime)

	s.logger.Info("Duplicate scan completed",
		zap.Duration("duration", results.Duration),
		zap.Int("pairs", len(results.Pairs)),
		zap.Int("exact", results.Stats.ExactMatches),
		zap.Int("near", results.Stats.NearMatches))

	return results, nil
}

// collectGroups walks root once and buckets files by subtype
func (s *DuplicateScanner) collectGroups(root string, stats *models.ScanStatistics) (map[models.FileType][]string, error) {
	groups := make(map[models.FileType][]string)
	err := s.walker.Walk(root, func(fi *models.FileInfo) error {
		if fi.IsDir {
			return nil
		}
		stats.TotalFiles++

		rec := s.classifier.Record(fi)
		switch rec.Subtype {
		case models.TypeImage:
			stats.ImageFiles++
		case models.TypeText:
			stats.TextFiles++
		case models.TypeCode:
			stats.CodeFiles++
		default:
			stats.IgnoredFiles++
			return nil
		}
		groups[rec.Subtype] = append(groups[rec.Subtype], fi.Path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	return groups, nil
}

// enumeratePairs lists every unordered pair once per group
func enumeratePairs(groups map[models.FileType][]string) []pairJob {
	visited := make(map[string]bool)
	var jobs []pairJob
	for _, group := range groupOrder {
		files := groups[group]
		for i := 0; i < len(files); i++ {
			for j := i + 1; j < len(files); j++ {
				key := models.PairKey(files[i], files[j])
				if files[i] == files[j] || visited[key] {
					continue
				}
				visited[key] = true
				jobs = append(jobs, pairJob{index: len(jobs), group: group, a: files[i], b: files[j]})
			}
		}
	}
	return jobs
}

// comparePairs evaluates jobs on a worker pool. Results come back in job order.
func (s *DuplicateScanner) comparePairs(ctx context.Context, jobs []pairJob, workers int, threshold float64) ([]pairResult, error) {
	memo := newFileMemo()
	jobChan := make(chan pairJob, workers*2)
	resultsChan := make(chan pairResult, workers*2)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobChan {
				pair, out := s.comparePair(ctx, memo, job, threshold)
				resultsChan <- pairResult{index: job.index, pair: pair, outcome: out}
			}
		}()
	}

	go func() {
		defer close(jobChan)
		for _, job := range jobs {
			select {
			case <-ctx.Done():
				return
			case jobChan <- job:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	evaluated := make([]pairResult, len(jobs))
	processed := 0
	lastReport := time.Now()
	for r := range resultsChan {
		evaluated[r.index] = r
		processed++

		// Report progress every 100ms or every 100 pairs
		if time.Since(lastReport) > 100*time.Millisecond || processed%100 == 0 {
			s.reportProgress("comparing", processed, len(jobs), jobs[r.index].a)
			lastReport = time.Now()
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.reportProgress("comparing", processed, len(jobs), "Comparison complete")
	return evaluated, nil
}

// comparePair runs the staged comparison for one pair
func (s *DuplicateScanner) comparePair(ctx context.Context, memo *fileMemo, job pairJob, threshold float64) (*models.DuplicatePair, outcome) {
	digestA, errA := memo.digest(job.a, func() (string, error) { return filesystem.Digest(s.fs, job.a, s.config.HashAlgorithm) })
	digestB, errB := memo.digest(job.b, func() (string, error) { return filesystem.Digest(s.fs, job.b, s.config.HashAlgorithm) })
	if errA != nil || errB != nil {
		s.skip(job, "digest failed", firstErr(errA, errB))
		return nil, outcomeSkipped
	}
	if digestA == digestB {
		return &models.DuplicatePair{File1: job.a, File2: job.b, MatchType: models.MatchExact, Group: job.group}, outcomeMatch
	}

	var (
		score float64
		out   outcome
	)
	if job.group == models.TypeImage {
		score, out = s.compareImages(ctx, memo, job)
	} else {
		score, out = s.compareTexts(ctx, memo, job)
	}
	if out != outcomeScored {
		return nil, out
	}
	if score < threshold {
		return nil, outcomeNoMatch
	}
	return &models.DuplicatePair{File1: job.a, File2: job.b, MatchType: models.MatchNear, Score: score, Group: job.group}, outcomeMatch
}

// compareImages gates on pHash distance, then fuses both visual scores by
// taking the minimum
func (s *DuplicateScanner) compareImages(ctx context.Context, memo *fileMemo, job pairJob) (float64, outcome) {
	hashA, errA := memo.phash(job.a, func() (string, error) { return s.phash.ComputeHash(job.a) })
	hashB, errB := memo.phash(job.b, func() (string, error) { return s.phash.ComputeHash(job.b) })
	if errA != nil || errB != nil {
		s.skip(job, "perceptual hash failed", firstErr(errA, errB))
		return 0, outcomeSkipped
	}

	analysis, err := phash.AnalyzeSimilarity(hashA, hashB)
	if err != nil {
		s.skip(job, "perceptual hash mismatch", err)
		return 0, outcomeSkipped
	}
	if analysis.Distance > s.config.PHashMaxDistance(phash.Length) {
		s.logger.Debug("Pair filtered by perceptual hash",
			zap.String("a", job.a), zap.String("b", job.b),
			zap.Int("distance", analysis.Distance), zap.Stringer("tier", analysis.Tier))
		return 0, outcomePHashFiltered
	}

	score := 1.0
	for _, m := range []embedding.Modality{embedding.ModalityVisualGrid, embedding.ModalityVisualHistogram} {
		resA := memo.embed(job.a, string(m), func() embedding.Result { return s.registry.Embed(ctx, job.a, m) })
		resB := memo.embed(job.b, string(m), func() embedding.Result { return s.registry.Embed(ctx, job.b, m) })
		if !resA.IsOk() || !resB.IsOk() {
			s.skip(job, "visual embedding failed", firstErr(resA.Err, resB.Err))
			return 0, outcomeSkipped
		}
		sim, err := embedding.Cosine(resA.Vector, resB.Vector)
		if err != nil {
			s.skip(job, "visual embedding shape", err)
			return 0, outcomeSkipped
		}
		if sim < score {
			score = sim
		}
	}
	return score, outcomeScored
}

// compareTexts rejects short or degenerate content, then compares the
// plan embedding of each file
func (s *DuplicateScanner) compareTexts(ctx context.Context, memo *fileMemo, job pairJob) (float64, outcome) {
	for _, path := range []string{job.a, job.b} {
		n, err := memo.length(path, func() (int, error) { return s.trimmedLength(path) })
		if err != nil {
			s.skip(job, "read failed", err)
			return 0, outcomeSkipped
		}
		if n < s.config.Scan.MinTextLength {
			s.skip(job, "content too short", models.ErrDegenerateContent)
			return 0, outcomeSkipped
		}
	}

	plan, ok := embedding.PlanFor(job.group)
	if !ok {
		return 0, outcomeSkipped
	}

	resA := memo.embed(job.a, plan.String(), func() embedding.Result { return s.registry.EmbedPlan(ctx, job.a, plan) })
	resB := memo.embed(job.b, plan.String(), func() embedding.Result { return s.registry.EmbedPlan(ctx, job.b, plan) })
	if !resA.IsOk() || !resB.IsOk() {
		s.skip(job, "embedding failed", firstErr(resA.Err, resB.Err))
		return 0, outcomeSkipped
	}
	if embedding.Variance(resA.Vector) < s.config.Scan.MinVariance || embedding.Variance(resB.Vector) < s.config.Scan.MinVariance {
		s.skip(job, "degenerate embedding", models.ErrDegenerateContent)
		return 0, outcomeSkipped
	}

	sim, err := embedding.Cosine(resA.Vector, resB.Vector)
	if err != nil {
		s.skip(job, "embedding shape", err)
		return 0, outcomeSkipped
	}
	return sim, outcomeScored
}

func (s *DuplicateScanner) trimmedLength(path string) (int, error) {
	content, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", models.ErrUnreadableFile, path, err)
	}
	return utf8.RuneCountInString(strings.TrimSpace(string(content))), nil
}

func (s *DuplicateScanner) skip(job pairJob, reason string, err error) {
	s.logger.Debug("Skipping pair",
		zap.String("a", job.a),
		zap.String("b", job.b),
		zap.String("reason", reason),
		zap.Error(err))
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
