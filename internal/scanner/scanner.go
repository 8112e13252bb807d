// Package scanner 提供并发处理调度能力。
// 该层负责发现汇总文件、任务分发、并发执行和结果聚合；
// 路径推导交给 pathname，落盘交给 report。
package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/hashicorp/go-multierror"
	gitignore "github.com/monochromegane/go-gitignore"
	"golang.org/x/sync/errgroup"

	licextlog "licext/internal/log"
	"licext/internal/model"
	"licext/internal/pathname"
	"licext/internal/report"
	"licext/internal/summary"
)

// DefaultPattern 是目录扫描时匹配汇总文件的 glob。
const DefaultPattern = "**/licenses.json"

// skippedDirs 中的目录永远不会被遍历。
var skippedDirs = map[string]struct{}{
	"node_modules": {},
}

// Options 控制发现规则与输出位置。空字符串表示未指定。
type Options struct {
	TargetDir  string
	SourceDir  string
	LicenseDir string
	Pattern    string
	Exclude    []string
	NoIgnore   bool
	DryRun     bool
}

// Service 是处理服务对象。
type Service struct {
	options Options
	workers int
	logger  *log.Logger
}

// scanTask 表示一个待处理的汇总文件。
// conflict 非空时该文件不会被处理，直接记为失败。
type scanTask struct {
	path     string
	target   string
	conflict error
}

// runState 记录单次运行中已被占用的输出位置。
// targets 只由遍历 goroutine 访问；copies 由 worker 共享。
type runState struct {
	targets map[string]string

	mu     sync.Mutex
	copies map[string]*copyClaim
}

// copyClaim 保证同一目标位置只复制一次，后来者等待并复用结果。
type copyClaim struct {
	once   sync.Once
	source string
	err    error
}

func newRunState() *runState {
	return &runState{
		targets: make(map[string]string),
		copies:  make(map[string]*copyClaim),
	}
}

// workerResult 表示 worker 的执行产物，两者可以同时存在。
type workerResult struct {
	fileReport *model.FileReport
	scanError  *model.ScanError
}

// NewService 创建处理服务。logger 为 nil 时不输出日志。
func NewService(options Options, workers int, logger *log.Logger) *Service {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if options.Pattern == "" {
		options.Pattern = DefaultPattern
	}
	if logger == nil {
		logger = licextlog.Discard()
	}
	return &Service{
		options: options,
		workers: workers,
		logger:  logger,
	}
}

// ScanPaths 处理目录或单文件。
// 目录会被递归遍历，匹配 Pattern 的文件进入任务队列；单文件直接处理。
// 单个文件失败记录在结果的 Errors 中，不会中断其它文件。
func (s *Service) ScanPaths(ctx context.Context, targetPaths []string) (model.ScanResult, error) {
	var result model.ScanResult
	result.DryRun = s.options.DryRun

	if err := s.validatePatterns(); err != nil {
		return result, err
	}

	roots, err := s.resolveRoots(targetPaths)
	if err != nil {
		return result, err
	}
	for _, root := range roots {
		result.ScannedPaths = append(result.ScannedPaths, root.path)
	}

	state := newRunState()
	tasks := make(chan scanTask, s.workers*4)
	results := make(chan workerResult, s.workers*4)
	walkErrChan := make(chan error, 1)

	var workerGroup sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		workerGroup.Add(1)
		go func() {
			defer workerGroup.Done()
			s.runWorker(ctx, state, tasks, results)
		}()
	}

	go func() {
		defer close(tasks)
		walkErrChan <- s.enqueueRoots(ctx, state, roots, tasks)
	}()

	go func() {
		workerGroup.Wait()
		close(results)
	}()

	result.Files = make([]model.FileReport, 0)
	result.Errors = make([]model.ScanError, 0)

	for item := range results {
		if item.fileReport != nil {
			result.Files = append(result.Files, *item.fileReport)
		}
		if item.scanError != nil {
			result.Errors = append(result.Errors, *item.scanError)
		}
	}

	if walkErr := <-walkErrChan; walkErr != nil {
		return result, walkErr
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, ctxErr
	}

	s.buildSummaries(&result)
	return result, nil
}

type scanRoot struct {
	path  string
	isDir bool
}

// resolveRoots 把输入路径转为去重后的绝对路径。
func (s *Service) resolveRoots(targetPaths []string) ([]scanRoot, error) {
	if len(targetPaths) == 0 {
		return nil, errors.New("no paths to scan")
	}

	seen := make(map[string]struct{}, len(targetPaths))
	roots := make([]scanRoot, 0, len(targetPaths))
	for _, targetPath := range targetPaths {
		trimmedPath := strings.TrimSpace(targetPath)
		if trimmedPath == "" {
			return nil, errors.New("scan path is empty")
		}

		absolutePath, err := filepath.Abs(trimmedPath)
		if err != nil {
			return nil, fmt.Errorf("resolve absolute path: %w", err)
		}
		if _, ok := seen[absolutePath]; ok {
			continue
		}
		seen[absolutePath] = struct{}{}

		info, err := os.Stat(absolutePath)
		if err != nil {
			return nil, fmt.Errorf("stat path: %w", err)
		}
		roots = append(roots, scanRoot{path: absolutePath, isDir: info.IsDir()})
	}
	return roots, nil
}

func (s *Service) validatePatterns() error {
	if !doublestar.ValidatePattern(s.options.Pattern) {
		return fmt.Errorf("invalid pattern %q", s.options.Pattern)
	}
	for _, pattern := range s.options.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}
	return nil
}

func (s *Service) enqueueRoots(ctx context.Context, state *runState, roots []scanRoot, tasks chan<- scanTask) error {
	for _, root := range roots {
		if !root.isDir {
			if err := send(ctx, tasks, s.claimTarget(state, root.path)); err != nil {
				return err
			}
			continue
		}
		if err := s.enqueueDirectoryTasks(ctx, state, root.path, tasks); err != nil {
			return err
		}
	}
	return nil
}

// enqueueDirectoryTasks 遍历目录并把匹配的汇总文件推入任务队列。
func (s *Service) enqueueDirectoryTasks(ctx context.Context, state *runState, root string, tasks chan<- scanTask) error {
	ignoreMatcher := s.loadIgnore(root)

	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path == root {
			return nil
		}

		relativePath, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		slashPath := filepath.ToSlash(relativePath)

		if entry.IsDir() {
			if _, ok := skippedDirs[entry.Name()]; ok || strings.HasPrefix(entry.Name(), ".") {
				return fs.SkipDir
			}
			if s.excluded(slashPath) || (ignoreMatcher != nil && ignoreMatcher.Match(path, true)) {
				return fs.SkipDir
			}
			return nil
		}

		if s.excluded(slashPath) || (ignoreMatcher != nil && ignoreMatcher.Match(path, false)) {
			return nil
		}

		matched, err := doublestar.Match(s.options.Pattern, slashPath)
		if err != nil {
			return fmt.Errorf("match pattern: %w", err)
		}
		if !matched {
			return nil
		}

		s.logger.Debug("found summary", "path", path)
		return send(ctx, tasks, s.claimTarget(state, path))
	})
}

// claimTarget 推导汇总文件的 .ext.json 路径并登记占用。
// 遍历按字典序进行，因此同一目标总是由字典序最小的来源获得。
func (s *Service) claimTarget(state *runState, path string) scanTask {
	task := scanTask{path: path}

	target, err := pathname.TargetFilename(path, s.options.TargetDir, s.options.SourceDir)
	if err != nil {
		task.conflict = err
		return task
	}
	task.target = target

	if owner, ok := state.targets[target]; ok {
		task.conflict = fmt.Errorf("target %s already claimed by %s", target, owner)
		return task
	}
	state.targets[target] = path
	return task
}

func (s *Service) loadIgnore(root string) gitignore.IgnoreMatcher {
	if s.options.NoIgnore {
		return nil
	}

	gitIgnorePath := filepath.Join(root, ".gitignore")
	if _, err := os.Stat(gitIgnorePath); err != nil {
		return nil
	}

	matcher, err := gitignore.NewGitIgnore(gitIgnorePath)
	if err != nil {
		s.logger.Warn("could not parse .gitignore", "path", gitIgnorePath, "err", err)
		return nil
	}
	return matcher
}

func (s *Service) excluded(slashPath string) bool {
	for _, pattern := range s.options.Exclude {
		if ok, _ := doublestar.Match(pattern, slashPath); ok {
			return true
		}
	}
	return false
}

func send(ctx context.Context, tasks chan<- scanTask, task scanTask) error {
	select {
	case tasks <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runWorker 读取汇总、推导输出位置、复制许可证并写出 .ext.json。
func (s *Service) runWorker(ctx context.Context, state *runState, tasks <-chan scanTask, results chan<- workerResult) {
	for task := range tasks {
		if ctx.Err() != nil {
			continue
		}
		if task.conflict != nil {
			s.logger.Error("summary skipped", "path", task.path, "err", task.conflict)
			results <- workerResult{scanError: &model.ScanError{Path: task.path, Error: task.conflict.Error()}}
			continue
		}
		results <- s.processFile(ctx, state, task.path, task.target)
	}
}

func (s *Service) processFile(ctx context.Context, state *runState, path string, target string) workerResult {
	fail := func(err error) workerResult {
		s.logger.Error("summary failed", "path", path, "err", err)
		return workerResult{scanError: &model.ScanError{Path: path, Error: err.Error()}}
	}

	content, err := summary.ReadFile(path)
	if err != nil {
		return fail(err)
	}

	sourceDir := s.options.SourceDir
	if sourceDir == "" {
		sourceDir = filepath.Dir(path)
	}
	folder := pathname.LicenseFolder(s.options.LicenseDir, sourceDir)

	s.logger.Debug("processing summary", "source", path, "target", target, "licenses", folder)

	extended, copied, copyErr := s.extend(ctx, state, content, folder, filepath.Dir(target))
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fail(ctxErr)
	}
	fileReport := &model.FileReport{
		Source:        path,
		Target:        target,
		LicenseFolder: folder,
		Packages:      int64(len(content)),
		Copied:        copied,
	}

	var result workerResult
	if copyErr != nil {
		var merr *multierror.Error
		if errors.As(copyErr, &merr) {
			fileReport.Failed = int64(merr.Len())
		} else {
			fileReport.Failed = 1
		}
		result.scanError = &model.ScanError{Path: path, Error: copyErr.Error()}
		s.logger.Warn("license copies failed", "path", path, "failed", fileReport.Failed)
	}

	if !s.options.DryRun {
		if err := report.WriteSummaryFile(target, extended); err != nil {
			return fail(err)
		}
	}

	result.fileReport = fileReport
	s.logger.Info("wrote report", "target", target, "packages", fileReport.Packages, "copied", copied)
	return result
}

// extend 为每个条目补充 scope/name/version，并把许可证文件复制到 folder。
// 复制失败的条目不会写入 CopiedLicenseFile，错误合并后返回。
func (s *Service) extend(
	ctx context.Context,
	state *runState,
	content model.Summary,
	folder string,
	reportDir string,
) (model.Summary, int64, error) {
	keys := make([]string, 0, len(content))
	for key := range content {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	entries := make([]model.LicenseEntry, len(keys))
	var (
		mu     sync.Mutex
		errs   *multierror.Error
		copied int64
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.workers)

	for i, key := range keys {
		entry := content[key]
		identifier, version := pathname.ParseEntryKey(key)
		name := pathname.SplitPackageIdentifier(identifier)
		entry.PackageName = name.Name
		entry.Scope = name.Scope
		entry.Version = version
		entries[i] = entry

		if entry.LicenseFile == "" {
			continue
		}

		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			destination := pathname.LicenseFilePath(folder, name, version, entry.LicenseFile)
			if err := s.copyLicense(state, entry.LicenseFile, destination); err != nil {
				mu.Lock()
				errs = multierror.Append(errs, fmt.Errorf("%s: %w", key, err))
				mu.Unlock()
				return nil
			}

			mu.Lock()
			entries[i].CopiedLicenseFile = relativeTo(reportDir, destination)
			copied++
			mu.Unlock()
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, copied, err
	}

	extended := make(model.Summary, len(keys))
	for i, key := range keys {
		extended[key] = entries[i]
	}
	return extended, copied, errs.ErrorOrNil()
}

// copyLicense 把 source 复制到 destination，每个 destination 在一次运行中只复制一次。
// 不同来源争用同一 destination 时后来者失败。dry-run 只检查来源是否存在。
func (s *Service) copyLicense(state *runState, source string, destination string) error {
	state.mu.Lock()
	claim, ok := state.copies[destination]
	if !ok {
		claim = &copyClaim{source: source}
		state.copies[destination] = claim
	}
	state.mu.Unlock()

	if claim.source != source {
		return fmt.Errorf("license copy %s already claimed by %s", destination, claim.source)
	}

	claim.once.Do(func() {
		if s.options.DryRun {
			if _, err := os.Stat(source); err != nil {
				claim.err = fmt.Errorf("open license file: %w", err)
			}
			return
		}
		claim.err = report.CopyFile(source, destination)
	})
	return claim.err
}

// relativeTo 尽量返回相对于报告目录的路径，便于报告随目录一起移动。
func relativeTo(base string, path string) string {
	if filepath.IsAbs(base) != filepath.IsAbs(path) {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// buildSummaries 排序并计算总计信息。
func (s *Service) buildSummaries(result *model.ScanResult) {
	sort.Slice(result.Files, func(i int, j int) bool {
		return result.Files[i].Source < result.Files[j].Source
	})

	sort.Slice(result.Errors, func(i int, j int) bool {
		return result.Errors[i].Path < result.Errors[j].Path
	})

	result.Total = model.TotalMetrics{}
	for _, item := range result.Files {
		result.Total.AddFileReport(item)
	}
}
