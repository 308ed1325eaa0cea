//go:build ignore

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const stream = "stream:hotspot:loaded"

type HotspotLoadedEvent struct {
	BatchID   uuid.UUID `json:"batch_id"`
	Source    string    `json:"source"`
	Rows      int       `json:"rows"`
	DateFrom  string    `json:"date_from,omitempty"`
	DateTo    string    `json:"date_to,omitempty"`
	LoadedAt  time.Time `json:"loaded_at"`
	Dimension string    `json:"dimension,omitempty"`
}

func main() {
	redisAddr := flag.String("redis", "localhost:6379", "Redis address for streams")
	group := flag.String("group", "hotspot-cache-workers", "Consumer group of the cache worker")
	dimension := flag.String("dimension", "", "Dimension to invalidate; empty drops everything")
	flag.Parse()

	client := redis.NewClient(&redis.Options{
		Addr: *redisAddr,
	})
	defer client.Close()

	ctx := context.Background()

	// Проверка подключения
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	before, _ := client.Keys(ctx, "olap:*").Result()

	event := HotspotLoadedEvent{
		BatchID:   uuid.New(),
		Source:    "test_publish",
		Rows:      1,
		DateFrom:  "2024-08-01",
		DateTo:    "2024-08-31",
		LoadedAt:  time.Now().UTC(),
		Dimension: *dimension,
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Fatalf("Failed to marshal event: %v", err)
	}

	result, err := client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()
	if err != nil {
		log.Fatalf("Failed to publish event: %v", err)
	}

	fmt.Printf("Event published\n")
	fmt.Printf("   Stream: %s\n", stream)
	fmt.Printf("   Message ID: %s\n", result)
	fmt.Printf("   Batch ID: %s\n", event.BatchID)
	fmt.Printf("   Cached query keys before: %d\n", len(before))

	// Ждём, пока воркер подтвердит сообщение
	fmt.Printf("\nWaiting for %s to ack...\n", *group)

	timeout := time.After(30 * time.Second)
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-timeout:
			fmt.Println("Timeout waiting for the worker")
			return
		case <-ticker.C:
			groups, err := client.XInfoGroups(ctx, stream).Result()
			if err != nil {
				continue
			}
			for _, g := range groups {
				if g.Name != *group || g.Pending > 0 || g.LastDeliveredID < result {
					continue
				}
				after, _ := client.Keys(ctx, "olap:*").Result()
				fmt.Printf("Acked. Cached query keys after: %d\n", len(after))
				return
			}
		}
	}
}
