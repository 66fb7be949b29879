// Package kkafka connects flows to Kafka through franz-go.
//
// A Sink is a kblock.Target that produces every accepted item, so it can be
// registered as a flow child or wrapped with kflow.FromTarget. A Consumer
// turns polled records into an iter.Seq for kflow.InFlow.DrainFrom; Feed
// does both and completes the flow when consumption ends.
//
//	cl, _ := kgo.NewClient(kgo.SeedBrokers(brokers...), kgo.ConsumeTopics("orders"))
//	in, _ := kflow.FromTarget[string](sink)
//	kkafka.Feed(ctx, in, kkafka.NewConsumer(cl, kkafka.String.Deserializer, kkafka.WithLimit(100)))
package kkafka
