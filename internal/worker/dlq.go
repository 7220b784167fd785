package worker

// dlq.go: jobs that exhausted MaxJobAttempts, or failed permanently, are parked
// in dlq:{queue} with the failure reason so an operator can inspect or replay them.

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DLQPrefix = "dlq:"

// ErrPermanent marks a failure that retrying cannot fix (bad payload, missing client).
var ErrPermanent = errors.New("permanent job failure")

// DeadJob is a Job plus why and when it was given up on.
type DeadJob struct {
	Job
	Queue    string    `json:"queue"`
	Reason   string    `json:"reason"`
	FailedAt time.Time `json:"failed_at"`
}

func deadLetter(ctx context.Context, rdb *redis.Client, queue string, job Job, reason string) {
	data, err := json.Marshal(DeadJob{Job: job, Queue: queue, Reason: reason, FailedAt: time.Now().UTC()})
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: marshal failed, job lost")
		return
	}
	if err := rdb.LPush(ctx, DLQPrefix+queue, data).Err(); err != nil {
		log.Error().Err(err).Str("queue", queue).Str("type", job.Type).Msg("dlq: push failed, job lost")
		return
	}
	log.Warn().
		Str("queue", queue).
		Str("type", job.Type).
		Int("attempts", job.Attempts).
		Str("reason", reason).
		Msg("dlq: job parked")
}

// DLQLength returns the number of parked jobs of a queue.
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+queue).Result()
}

// PeekDLQ returns up to n parked jobs of a queue, newest first, without removing them.
func PeekDLQ(ctx context.Context, rdb *redis.Client, queue string, n int64) ([]DeadJob, error) {
	raws, err := rdb.LRange(ctx, DLQPrefix+queue, 0, n-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]DeadJob, 0, len(raws))
	for _, raw := range raws {
		var dj DeadJob
		if err := json.Unmarshal([]byte(raw), &dj); err != nil {
			return nil, err
		}
		out = append(out, dj)
	}
	return out, nil
}
