package cron

import (
	log "log/slog"

	"github.com/robfig/cron/v3"
)

// Job 带名字的定时任务
type Job interface {
	cron.Job
	Name() string
}

type entry struct {
	spec string
	job  Job
}

type Manager struct {
	engine  *cron.Cron
	entries []entry
}

func NewCronManager() *Manager {
	return &Manager{
		engine: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)),
		),
	}
}

// Add 登记任务，Start 前调用
func (s *Manager) Add(spec string, job Job) {
	s.entries = append(s.entries, entry{spec: spec, job: job})
}

// RegisterJobs 注册定时任务
func (s *Manager) RegisterJobs() error {
	for _, e := range s.entries {
		if _, err := s.engine.AddJob(e.spec, e.job); err != nil {
			return err
		}
		log.Info("cron job registered", "job", e.job.Name(), "spec", e.spec)
	}
	return nil
}

func (s *Manager) Start() {
	log.Info("Cron 定时任务引擎启动")
	s.engine.Start()
}

// Stop 等待正在执行的任务结束
func (s *Manager) Stop() {
	log.Info("Cron 定时任务引擎停止")
	<-s.engine.Stop().Done()
}
