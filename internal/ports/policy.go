package ports

import "time"

// Policy controls how frames reach subscribers.
type Policy struct {
	MaxQueueLen  int           `yaml:"queue_len"`
	MaxBatchSize int           `yaml:"max_batch_size"`
	IdleSleep    time.Duration `yaml:"idle_sleep"`
	BlockTimeout time.Duration `yaml:"block_timeout"`

	OnQueueFull string `yaml:"on_queue_full"` // "block", "drop"
}
