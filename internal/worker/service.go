package worker

import (
	"context"
	"errors"

	"github.com/ibheros/studio/internal/config"
	"github.com/ibheros/studio/internal/logger"
	"github.com/ibheros/studio/internal/queue"

	"github.com/hibiken/asynq"
)

var (
	errQueueDisabled  = errors.New("queue disabled")
	errNilConsumer    = errors.New("consumer is nil")
	errWorkerNotReady = errors.New("worker not initialized")
)

// Service 邮件任务消费进程
type Service struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	queues map[string]int
}

// NewService 按队列配置创建消费服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	switch {
	case cfg == nil || !cfg.Enabled:
		return nil, errQueueDisabled
	case consumer == nil:
		return nil, errNilConsumer
	}
	redisOpt, serverCfg := queue.BuildServerConfig(cfg)
	svc := &Service{
		server: asynq.NewServer(redisOpt, serverCfg),
		mux:    asynq.NewServeMux(),
		queues: serverCfg.Queues,
	}
	consumer.Register(svc.mux)
	return svc, nil
}

// Name 服务名称
func (s *Service) Name() string {
	return "worker"
}

// Start 开始消费，直到 ctx 结束
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errWorkerNotReady
	}
	if err := s.server.Start(s.mux); err != nil {
		return err
	}
	logger.S().Infow("worker_started", "queues", s.queues)
	<-ctx.Done()
	return nil
}

// Stop 等待进行中的任务后关闭
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	s.server.Shutdown()
	logger.S().Infow("worker_stopped")
	return nil
}
