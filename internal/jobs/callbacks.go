package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/Changaizkhan/autopair-final/internal/config"
	"github.com/Changaizkhan/autopair-final/internal/models"
	"github.com/Changaizkhan/autopair-final/internal/services"
	"github.com/Changaizkhan/autopair-final/internal/storage"
	"github.com/Changaizkhan/autopair-final/internal/utils"
)

// TaskCallback places a scheduled callback call.
const TaskCallback = "leads.callback"

type CallbackPayload struct {
	LeadID      string `json:"leadId"`
	ScheduledAt int64  `json:"scheduledAt"`
}

func NewCallbackTask(payload CallbackPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCallback, data, asynq.MaxRetry(0)), nil
}

func ParseCallbackPayload(task *asynq.Task) (CallbackPayload, error) {
	var payload CallbackPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("decode callback payload: %w", err)
	}
	return payload, nil
}

// CallbackQueue enqueues callback tasks on Redis.
type CallbackQueue struct {
	client *asynq.Client
	queue  string
}

var _ services.CallbackScheduler = (*CallbackQueue)(nil)

func NewCallbackQueue(cfg config.SchedulerConfig) (*CallbackQueue, error) {
	opt, err := redisClientOpt(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	return &CallbackQueue{client: asynq.NewClient(opt), queue: queueName(cfg)}, nil
}

func (q *CallbackQueue) Close() error {
	if q == nil || q.client == nil {
		return nil
	}
	return q.client.Close()
}

// ScheduleCallback enqueues a call to leadID at the given time.
func (q *CallbackQueue) ScheduleCallback(ctx context.Context, leadID string, at time.Time) error {
	task, err := NewCallbackTask(CallbackPayload{LeadID: leadID, ScheduledAt: utils.EpochMillis(at)})
	if err != nil {
		return err
	}
	info, err := q.client.EnqueueContext(ctx, task, asynq.ProcessAt(at), asynq.Queue(q.queue))
	if err != nil {
		return fmt.Errorf("enqueue callback: %w", err)
	}
	log.Infof("⏰ Callback for lead %s queued at %s (task %s)", leadID, at.Format(time.RFC3339), info.ID)
	return nil
}

// CallbackWorker consumes callback tasks and places the call.
type CallbackWorker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	leads     storage.LeadStore
	messenger services.Messenger
	voice     *services.VoiceService
	journal   *services.Journal
}

func NewCallbackWorker(cfg config.SchedulerConfig, leads storage.LeadStore, messenger services.Messenger, voice *services.VoiceService, journal *services.Journal) (*CallbackWorker, error) {
	opt, err := redisClientOpt(cfg.RedisURL)
	if err != nil {
		return nil, err
	}

	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 5
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &CallbackWorker{
		server:    server,
		mux:       mux,
		leads:     leads,
		messenger: messenger,
		voice:     voice,
		journal:   journal,
	}
	mux.HandleFunc(TaskCallback, w.handleCallback)
	return w, nil
}

// Run serves tasks until ctx is cancelled.
func (w *CallbackWorker) Run(ctx context.Context) error {
	if err := w.server.Start(w.mux); err != nil {
		return fmt.Errorf("start callback worker: %w", err)
	}
	log.Info("⏰ Callback worker started")

	<-ctx.Done()
	w.server.Shutdown()
	log.Info("⏹️  Callback worker stopped")
	return nil
}

func (w *CallbackWorker) handleCallback(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseCallbackPayload(task)
	if err != nil {
		return err
	}
	return RunCallback(ctx, payload, w.leads, w.messenger, w.voice, w.journal)
}

// RunCallback calls the lead if it is still waiting for exactly this scheduled
// call. A lead that moved on, was rescheduled, or has no stored time is left alone.
func RunCallback(ctx context.Context, payload CallbackPayload, leads storage.LeadStore, messenger services.Messenger, voice *services.VoiceService, journal *services.Journal) error {
	lead, err := leads.GetLead(ctx, payload.LeadID)
	if err != nil {
		return fmt.Errorf("load lead %s: %w", payload.LeadID, err)
	}
	if lead.Status() != models.StatusCallScheduled {
		log.Infof("Lead %s is %q, skipping scheduled callback", lead.ID, lead.Status())
		return nil
	}
	if stored := lead.Prop(models.PropScheduledTime); stored != strconv.FormatInt(payload.ScheduledAt, 10) {
		log.Infof("Lead %s is scheduled for %q, skipping callback for %d", lead.ID, stored, payload.ScheduledAt)
		return nil
	}

	if err := messenger.PlaceCall(ctx, lead.Phone(), voice.CallHandlerURL(lead.ID)); err != nil {
		return fmt.Errorf("callback to lead %s: %w", lead.ID, err)
	}
	journal.Record(ctx, lead.ID, models.ChannelVoice, models.DirectionOutbound, voice.CallHandlerURL(lead.ID), "callback placed")

	if _, err := leads.UpdateLead(ctx, lead.ID, map[string]string{
		models.PropStatus:       string(models.StatusCallRequested),
		models.PropLastResponse: strconv.FormatInt(utils.EpochMillis(utils.NowInBusinessZone()), 10),
	}); err != nil {
		log.Errorf("❌ Failed to update lead %s after callback: %v", lead.ID, err)
	}
	return nil
}

func queueName(cfg config.SchedulerConfig) string {
	if cfg.Queue == "" {
		return "default"
	}
	return cfg.Queue
}

func redisClientOpt(redisURL string) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, fmt.Errorf("parse redis url: %w", err)
	}
	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Username:  opt.Username,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	}, nil
}
