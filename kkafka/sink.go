package kkafka

import (
	"context"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/birdayz/kflow/kblock"
)

// Producer is the part of *kgo.Client a Sink needs.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

var _ Producer = (*kgo.Client)(nil)

type SinkConfig[T any] struct {
	Topic string
	// Key derives the record key. Records are produced without a key if nil.
	Key   func(T) []byte
	Value Serializer[T]
}

// Sink is a target that produces every accepted item as a record. A failed
// produce faults the sink.
type Sink[T any] struct {
	*kblock.ActionBlock[T]
	producer Producer
	cfg      SinkConfig[T]
}

// NewSink creates a sink producing to cfg.Topic through p. The block options
// control capacity and parallelism; records are produced in order with the
// default parallelism of one.
func NewSink[T any](p Producer, cfg SinkConfig[T], opts ...kblock.Option) (*Sink[T], error) {
	if cfg.Topic == "" {
		return nil, fmt.Errorf("sink requires a topic")
	}
	if cfg.Value == nil {
		return nil, fmt.Errorf("sink for topic %s requires a value serializer", cfg.Topic)
	}
	s := &Sink[T]{
		producer: p,
		cfg:      cfg,
	}
	s.ActionBlock = kblock.NewActionBlock(s.produce, opts...)
	return s, nil
}

func (s *Sink[T]) produce(ctx context.Context, item T) error {
	value, err := s.cfg.Value(item)
	if err != nil {
		return fmt.Errorf("failed to serialize record for topic %s: %w", s.cfg.Topic, err)
	}
	r := &kgo.Record{
		Topic: s.cfg.Topic,
		Value: value,
	}
	if s.cfg.Key != nil {
		r.Key = s.cfg.Key(item)
	}
	if err := s.producer.ProduceSync(ctx, r).FirstErr(); err != nil {
		return fmt.Errorf("failed to produce to %s: %w", s.cfg.Topic, err)
	}
	return nil
}
