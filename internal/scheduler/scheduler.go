package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler управляет запланированными задачами
type Scheduler struct {
	cron        *cron.Cron
	ctx         context.Context
	cancel      context.CancelFunc
	reportFunc  func(ctx context.Context) error
	refreshFunc func(ctx context.Context) error
	tasks       []task
}

type task struct {
	name string
	spec string
	run  func(ctx context.Context) error
}

// New создает новый планировщик в указанной временной зоне
func New(loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		ctx:    ctx,
		cancel: cancel,
	}
}

// SetReportFunction устанавливает функцию ежедневного отчета
func (s *Scheduler) SetReportFunction(f func(ctx context.Context) error) {
	s.reportFunc = f
}

// SetRefreshFunction устанавливает функцию обновления индекса
func (s *Scheduler) SetRefreshFunction(f func(ctx context.Context) error) {
	s.refreshFunc = f
}

// AddTask добавляет служебную задачу, которая регистрируется при Start.
// Пустое расписание отключает задачу.
func (s *Scheduler) AddTask(name, spec string, f func(ctx context.Context) error) {
	if spec == "" || f == nil {
		return
	}
	s.tasks = append(s.tasks, task{name: name, spec: spec, run: f})
}

// Start регистрирует задачи и запускает планировщик. Пустое расписание
// отключает соответствующую задачу.
func (s *Scheduler) Start(reportSpec, refreshSpec string) error {
	if s.reportFunc != nil && reportSpec != "" {
		if _, err := s.cron.AddFunc(reportSpec, func() {
			log.Println("🕘 Triggered daily report generation")
			if err := s.reportFunc(s.ctx); err != nil {
				log.Printf("❌ Daily report generation failed: %v", err)
			}
		}); err != nil {
			return err
		}
		log.Printf("📅 Daily report scheduled: %s", reportSpec)
	} else {
		log.Println("⚠️ Report function not set, scheduler will not generate reports")
	}

	if s.refreshFunc != nil && refreshSpec != "" {
		if _, err := s.cron.AddFunc(refreshSpec, func() {
			if err := s.refreshFunc(s.ctx); err != nil {
				log.Printf("❌ Index refresh failed: %v", err)
			}
		}); err != nil {
			return err
		}
		log.Printf("📅 Index refresh scheduled: %s", refreshSpec)
	}

	for _, t := range s.tasks {
		t := t
		if _, err := s.cron.AddFunc(t.spec, func() {
			if err := t.run(s.ctx); err != nil {
				log.Printf("❌ Task %s failed: %v", t.name, err)
			}
		}); err != nil {
			return fmt.Errorf("task %s: %w", t.name, err)
		}
		log.Printf("📅 Task %s scheduled: %s", t.name, t.spec)
	}

	s.cron.Start()
	return nil
}

// Stop останавливает планировщик
func (s *Scheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	if s.cancel != nil {
		s.cancel()
	}
	log.Println("📅 Scheduler stopped")
}

// IsRunning проверяет, запущен ли планировщик
func (s *Scheduler) IsRunning() bool {
	return s.cron != nil && len(s.cron.Entries()) > 0
}
