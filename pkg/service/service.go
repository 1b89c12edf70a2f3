package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/stevelan1995/wave-engine/pkg/core/blackboard"
	"github.com/stevelan1995/wave-engine/pkg/core/engine"
	"github.com/stevelan1995/wave-engine/pkg/core/events"
	"github.com/stevelan1995/wave-engine/pkg/core/plan"
	"github.com/stevelan1995/wave-engine/pkg/core/task"
	"github.com/stevelan1995/wave-engine/pkg/storage"
)

const (
	// RunStatusSuccess 运行整体成功
	RunStatusSuccess = "SUCCESS"
	// RunStatusFailed 运行中存在失败任务
	RunStatusFailed = "FAILED"
)

// Options 服务配置选项（对外导出）
type Options struct {
	MaxWorkers int                   // 单波次内最大并发数
	DefaultTTL time.Duration         // 产物默认过期时间，0表示不过期
	Repo       storage.RunRepository // 运行历史存储，可为nil（不持久化）
	Bus        *events.Bus           // 事件总线，可为nil（不发事件）
	Artifacts  blackboard.Store      // 产物存储，nil时使用内存存储
}

// Service 计划执行服务（对外导出）
// 串联处理器注册中心、执行引擎、运行历史存储与事件总线
type Service struct {
	registry   *task.Registry
	repo       storage.RunRepository
	bus        *events.Bus
	artifacts  blackboard.Store
	maxWorkers int
	defaultTTL time.Duration
}

// New 创建服务实例（对外导出的工厂方法）
func New(registry *task.Registry, opts Options) *Service {
	artifacts := opts.Artifacts
	if artifacts == nil {
		artifacts = blackboard.NewMemoryStore()
	}
	if opts.DefaultTTL > 0 {
		artifacts = &ttlStore{Store: artifacts, defaultTTL: opts.DefaultTTL}
	}
	return &Service{
		registry:   registry,
		repo:       opts.Repo,
		bus:        opts.Bus,
		artifacts:  artifacts,
		maxWorkers: opts.MaxWorkers,
		defaultTTL: opts.DefaultTTL,
	}
}

// ttlStore 为未指定过期时间的产物补上默认TTL（内部结构）
type ttlStore struct {
	blackboard.Store
	defaultTTL time.Duration
}

func (s *ttlStore) Put(key string, value interface{}, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	return s.Store.Put(key, value, ttl)
}

// Registry 获取处理器注册中心（对外导出）
func (s *Service) Registry() *task.Registry {
	return s.registry
}

// Bus 获取事件总线（对外导出），可能为nil
func (s *Service) Bus() *events.Bus {
	return s.bus
}

// RunPlan 执行一份计划（对外导出）
// 构图失败返回error；任务级失败体现在Report中，运行记录状态为FAILED
func (s *Service) RunPlan(ctx context.Context, p *plan.Plan) (*engine.Report, error) {
	if p == nil {
		return nil, fmt.Errorf("计划不能为空")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.New().String()
	startTime := time.Now()

	runCtx := task.NewContext(ctx, runID, s.artifacts)
	runCtx.PlanName = p.Name

	engOpts := engine.Options{MaxWorkers: s.maxWorkers}
	if s.bus != nil {
		engOpts.StatusSink = s.bus.Sink()
	}
	eng, err := engine.New[task.Params](engOpts)
	if err != nil {
		return nil, err
	}

	log.Printf("🚀 [开始执行计划] Plan=%s, RunID=%s, 任务数=%d", p.Name, runID, len(p.Tasks))
	report, err := eng.Execute(runCtx, p.Descriptors(), s.registry.Dispatch())
	endTime := time.Now()

	if err != nil {
		// 构图失败也记入历史，方便排查
		s.persist(ctx, &storage.RunRecord{
			ID:           runID,
			PlanName:     p.Name,
			Status:       RunStatusFailed,
			TotalTasks:   len(p.Tasks),
			ErrorMessage: err.Error(),
			StartTime:    startTime,
			EndTime:      &endTime,
		})
		return nil, err
	}

	s.persist(ctx, toRunRecord(p, report, startTime, endTime))
	return report, nil
}

// GetRun 查询运行记录（对外导出）
func (s *Service) GetRun(ctx context.Context, id string) (*storage.RunRecord, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("运行历史存储未配置")
	}
	run, err := s.repo.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, nil
	}
	tasks, err := s.repo.GetTaskRecords(ctx, id)
	if err != nil {
		return nil, err
	}
	run.Tasks = tasks
	return run, nil
}

// ListRuns 查询运行记录列表（对外导出）
func (s *Service) ListRuns(ctx context.Context, limit, offset int) ([]*storage.RunRecord, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("运行历史存储未配置")
	}
	return s.repo.ListRuns(ctx, limit, offset)
}

// persist 保存运行记录（内部方法）
// 持久化失败只记日志，不影响本次运行结果
func (s *Service) persist(ctx context.Context, record *storage.RunRecord) {
	if s.repo == nil {
		return
	}
	if err := s.repo.SaveRun(ctx, record); err != nil {
		log.Printf("⚠️ [保存运行记录失败] RunID=%s, Error=%v", record.ID, err)
	}
}

// toRunRecord 将执行结果转换为运行记录（内部方法）
func toRunRecord(p *plan.Plan, report *engine.Report, startTime, endTime time.Time) *storage.RunRecord {
	status := RunStatusSuccess
	if report.Stats.Failed > 0 || report.Stats.Skipped > 0 {
		status = RunStatusFailed
	}

	record := &storage.RunRecord{
		ID:                report.RunID,
		PlanName:          p.Name,
		Status:            status,
		TotalTasks:        report.Stats.TotalTasks,
		Successful:        report.Stats.Successful,
		Failed:            report.Stats.Failed,
		Skipped:           report.Stats.Skipped,
		TotalWallTime:     report.Stats.TotalWallTime,
		ParallelTimeSaved: report.Stats.ParallelTimeSaved,
		StartTime:         startTime,
		EndTime:           &endTime,
	}
	if len(report.Errors) > 0 {
		first := report.Errors[0]
		record.ErrorMessage = fmt.Sprintf("任务 %s: %s", first.TaskID, first.Error)
	}

	nameOf := make(map[string]string, len(p.Tasks))
	for _, t := range p.Tasks {
		nameOf[t.ID] = t.Name
	}

	// 波次索引来自调度结果
	for waveIdx, wave := range report.Waves {
		for _, id := range wave {
			result := report.Results[id]
			if result == nil {
				continue
			}
			record.Tasks = append(record.Tasks, &storage.TaskRunRecord{
				RunID:    report.RunID,
				TaskID:   id,
				Name:     nameOf[id],
				Wave:     waveIdx,
				Status:   result.State(),
				Error:    result.Error,
				Duration: result.Duration,
			})
		}
	}
	return record
}
