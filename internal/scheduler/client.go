package scheduler

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"loanflow_backend/internal/loans/domain"
	"loanflow_backend/platform/config"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

const stageTaskMaxRetry = 5

// Client enqueues delayed stage tasks. It implements loans.StageScheduler.
type Client struct {
	client *asynq.Client
	queue  string
}

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queue,
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// ScheduleStage enqueues the stage task to run after the given delay. The
// deterministic task ID makes duplicate schedules a no-op, so the submitter
// and the reconciler can both call this safely.
func (c *Client) ScheduleStage(ctx context.Context, applicationID uuid.UUID, agentType domain.AgentType, delay time.Duration) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewLoanStageTask(LoanStagePayload{
		ApplicationID: applicationID.String(),
		AgentType:     string(agentType),
	})
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task,
		asynq.ProcessIn(delay),
		asynq.TaskID(StageTaskID(applicationID, agentType)),
		asynq.Queue(c.queue),
		asynq.MaxRetry(stageTaskMaxRetry),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		// Already scheduled; the existing task will run the stage.
		return nil
	}
	return err
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
