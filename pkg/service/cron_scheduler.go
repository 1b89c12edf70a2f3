package service

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/stevelan1995/wave-engine/pkg/core/plan"
)

// CronScheduler 定时调度器（对外导出）
// 按Cron表达式周期性地执行已注册的计划
type CronScheduler struct {
	cron    *cron.Cron
	service *Service
	plans   map[string]*plan.Plan   // 计划名称 -> 计划
	entries map[string]cron.EntryID // 计划名称 -> cron.EntryID
	mu      sync.RWMutex
}

// NewCronScheduler 创建定时调度器（对外导出）
func NewCronScheduler(svc *Service) *CronScheduler {
	return &CronScheduler{
		cron:    cron.New(cron.WithSeconds()), // 支持秒级精度
		service: svc,
		plans:   make(map[string]*plan.Plan),
		entries: make(map[string]cron.EntryID),
	}
}

// RegisterPlan 注册计划到定时调度器（对外导出）
func (cs *CronScheduler) RegisterPlan(cronExpr string, p *plan.Plan) error {
	if p == nil {
		return fmt.Errorf("计划不能为空")
	}
	if cronExpr == "" {
		return fmt.Errorf("计划 %s 未设置Cron表达式", p.Name)
	}
	if err := p.Validate(); err != nil {
		return err
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()

	if _, exists := cs.plans[p.Name]; exists {
		return fmt.Errorf("计划 %s 已注册到定时调度器", p.Name)
	}

	// 验证Cron表达式（使用Parser支持秒级精度）
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(cronExpr); err != nil {
		return fmt.Errorf("计划 %s 的Cron表达式无效: %w", p.Name, err)
	}

	entryID, err := cs.cron.AddFunc(cronExpr, func() {
		cs.triggerPlan(p)
	})
	if err != nil {
		return fmt.Errorf("添加Cron任务失败: %w", err)
	}

	cs.plans[p.Name] = p
	cs.entries[p.Name] = entryID

	log.Printf("✅ [Cron调度器] 已注册计划: Name=%s, CronExpr=%s", p.Name, cronExpr)
	return nil
}

// UnregisterPlan 取消注册计划（对外导出）
func (cs *CronScheduler) UnregisterPlan(planName string) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	entryID, exists := cs.entries[planName]
	if !exists {
		return fmt.Errorf("计划 %s 未注册到定时调度器", planName)
	}

	cs.cron.Remove(entryID)
	delete(cs.plans, planName)
	delete(cs.entries, planName)

	log.Printf("✅ [Cron调度器] 已取消注册计划: Name=%s", planName)
	return nil
}

// triggerPlan 触发计划执行（内部方法）
func (cs *CronScheduler) triggerPlan(p *plan.Plan) {
	log.Printf("🕐 [Cron调度器] 触发计划执行: Name=%s", p.Name)

	report, err := cs.service.RunPlan(context.Background(), p)
	if err != nil {
		log.Printf("❌ [Cron调度器] 计划执行失败: Name=%s, Error=%v", p.Name, err)
		return
	}
	log.Printf("✅ [Cron调度器] 计划执行完成: Name=%s, RunID=%s, 成功=%d, 失败=%d",
		p.Name, report.RunID, report.Stats.Successful, report.Stats.Failed)
}

// Start 启动定时调度器（对外导出）
func (cs *CronScheduler) Start() {
	cs.cron.Start()
	log.Println("✅ [Cron调度器] 已启动")
}

// Stop 停止定时调度器（对外导出）
func (cs *CronScheduler) Stop() {
	cs.cron.Stop()
	log.Println("✅ [Cron调度器] 已停止")
}

// RegisteredPlans 获取已注册的计划名称列表（对外导出）
func (cs *CronScheduler) RegisteredPlans() []string {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	names := make([]string, 0, len(cs.plans))
	for name := range cs.plans {
		names = append(names, name)
	}
	return names
}
