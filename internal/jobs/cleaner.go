package jobs

import (
	"context"
	"path"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"sportrent/internal/models"
	"sportrent/internal/storage"
)

const (
	cleanupGroup    = "cleaners"
	cleanupConsumer = "api"
)

// UserLister and EquipmentLister are the read slices of the stores the
// cleaner scans for referenced files.
type UserLister interface {
	List(ctx context.Context) ([]models.User, error)
}

type EquipmentLister interface {
	List(ctx context.Context) ([]models.Equipment, error)
}

// Cleaner consumes cleanup tasks and removes upload files no longer
// referenced by any equipment image or user avatar.
type Cleaner struct {
	queue     *redis.Client
	local     *storage.LocalStore
	users     UserLister
	equipment EquipmentLister
	log       zerolog.Logger
}

func NewCleaner(queue *redis.Client, local *storage.LocalStore, users UserLister, equipment EquipmentLister, log zerolog.Logger) *Cleaner {
	return &Cleaner{
		queue:     queue,
		local:     local,
		users:     users,
		equipment: equipment,
		log:       log,
	}
}

// Start blocks reading the cleanup stream until ctx is cancelled. A nil
// queue disables the consumer.
func (c *Cleaner) Start(ctx context.Context) error {
	if c.queue == nil {
		return nil
	}

	err := c.queue.XGroupCreateMkStream(ctx, CleanupStream, cleanupGroup, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := c.read(ctx); err != nil && ctx.Err() == nil {
			c.log.Error().Err(err).Msg("cleanup stream read error")
			time.Sleep(2 * time.Second)
		}
	}
}

func (c *Cleaner) read(ctx context.Context) error {
	result, err := c.queue.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    cleanupGroup,
		Consumer: cleanupConsumer,
		Streams:  []string{CleanupStream, ">"},
		Count:    10,
		Block:    5 * time.Second,
	}).Result()
	if err != nil && err != redis.Nil {
		return err
	}

	for _, stream := range result {
		for _, msg := range stream.Messages {
			if err := c.Sweep(ctx); err != nil {
				c.log.Error().
					Err(err).
					Str("message_id", msg.ID).
					Msg("cleanup sweep failed")
				continue
			}
			if err := c.queue.XAck(ctx, CleanupStream, cleanupGroup, msg.ID).Err(); err != nil {
				c.log.Error().Err(err).Str("message_id", msg.ID).Msg("ack failed")
			}
		}
	}
	return nil
}

// Sweep deletes files in the upload directory that no stored record
// references. Referenced names are compared by base name so absolute
// avatar URLs and bare image filenames resolve the same way.
func (c *Cleaner) Sweep(ctx context.Context) error {
	referenced, err := c.referencedFiles(ctx)
	if err != nil {
		return err
	}

	files, err := c.local.ListFiles()
	if err != nil {
		return err
	}

	removed := 0
	for _, name := range files {
		if referenced[name] {
			continue
		}
		if err := c.local.Remove(name); err != nil {
			c.log.Error().Err(err).Str("file", name).Msg("remove orphan failed")
			continue
		}
		removed++
	}

	c.log.Info().
		Int("scanned", len(files)).
		Int("removed", removed).
		Msg("upload cleanup finished")
	return nil
}

func (c *Cleaner) referencedFiles(ctx context.Context) (map[string]bool, error) {
	referenced := make(map[string]bool)

	items, err := c.equipment.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		for _, image := range item.Images {
			referenced[path.Base(image)] = true
		}
	}

	users, err := c.users.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, user := range users {
		if user.ProfilePicture == "" {
			continue
		}
		referenced[path.Base(user.ProfilePicture)] = true
	}

	return referenced, nil
}
