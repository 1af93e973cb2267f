package worker

import (
	"context"
	"errors"
	"time"

	"github.com/omniorder/internal/config"
	"github.com/omniorder/internal/logger"
	"github.com/omniorder/internal/queue"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
)

// Service 异步队列服务：asynq 消费 + cron 周期调度
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
	cron     *cron.Cron
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		consumer: consumer,
		cron:     cron.New(),
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if err := s.schedule(); err != nil {
		return err
	}
	s.cron.Start()
	_ = ctx
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	if s.cron != nil {
		stopCtx := s.cron.Stop()
		select {
		case <-stopCtx.Done():
		case <-ctx.Done():
		}
	}
	s.server.Shutdown()
	return nil
}

// schedule 注册周期任务：预留过期清扫与全渠道库存同步
func (s *Service) schedule() error {
	cfg := s.consumer.Config
	client := s.consumer.QueueClient

	sweepCron := cfg.Reservation.SweepCron
	if sweepCron == "" {
		sweepCron = "* * * * *"
	}
	if _, err := s.cron.AddFunc(sweepCron, func() {
		err := client.EnqueueReservationExpire(queue.ReservationExpirePayload{
			BatchLimit: cfg.Reservation.SweepBatchLimit,
		})
		if err != nil {
			logger.Warnw("worker_sweep_enqueue_failed", "error", err)
		}
	}); err != nil {
		return err
	}

	syncCron := cfg.Sync.Cron
	if syncCron == "" {
		syncCron = "*/5 * * * *"
	}
	if _, err := s.cron.AddFunc(syncCron, func() {
		channels, err := s.consumer.ChannelRepo.ListActive()
		if err != nil {
			logger.Warnw("worker_sync_list_channels_failed", "error", err)
			return
		}
		now := time.Now()
		for i := range channels {
			ch := &channels[i]
			// 渠道可自带同步间隔，未到期的跳过
			if minutes := ch.SyncFrequencyMinutes(); minutes > 0 && ch.LastSyncAt != nil {
				if now.Sub(*ch.LastSyncAt) < time.Duration(minutes)*time.Minute {
					continue
				}
			}
			if err := client.EnqueueChannelStockSync(queue.ChannelStockSyncPayload{ChannelID: ch.ID}); err != nil {
				logger.Warnw("worker_sync_enqueue_failed", "channel_id", ch.ID, "error", err)
			}
		}
	}); err != nil {
		return err
	}
	return nil
}
