// ruleflow/tools/stressor/main.go

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/redis/go-redis/v9"
	"github.com/schollz/progressbar/v3"

	"rulehub/ruleflow/pkg/model"
)

var (
	redisAddr  string
	channel    string
	eventRate  int
	eventCount int
	numOrders  int
)

var eventTypes = []string{"order_placed", "order_shipped", "customer_signup", "cart_abandoned"}

func init() {
	flag.StringVar(&redisAddr, "redis", "localhost:6379", "Redis address")
	flag.StringVar(&channel, "channel", "ruleflow_triggers", "Trigger channel")
	flag.IntVar(&eventRate, "rate", 10, "Number of trigger events per second")
	flag.IntVar(&eventCount, "count", 1000, "Total number of events to publish")
	flag.IntVar(&numOrders, "orders", 50, "Number of fake orders to seed")
	flag.Parse()
}

func main() {
	ctx := context.Background()

	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		panic(fmt.Sprintf("Failed to connect to Redis: %v", err))
	}

	fmt.Printf("Connected to Redis at %s\n", redisAddr)

	gofakeit.Seed(time.Now().UnixNano())
	orderIDs, err := seedOrders(ctx, rdb, numOrders)
	if err != nil {
		panic(fmt.Sprintf("Failed to seed orders: %v", err))
	}
	fmt.Printf("Seeded %d orders, publishing %d events at %d/s on %q\n",
		numOrders, eventCount, eventRate, channel)

	bar := progressbar.Default(int64(eventCount))
	ticker := time.NewTicker(time.Second / time.Duration(eventRate))
	defer ticker.Stop()

	published := 0
	for range ticker.C {
		if err := publishEvent(ctx, rdb, orderIDs); err != nil {
			fmt.Printf("Error publishing event: %v\n", err)
			continue
		}
		bar.Add(1)
		published++
		if published >= eventCount {
			break
		}
	}

	fmt.Printf("\nPublished %d trigger events\n", published)
}

func seedOrders(ctx context.Context, rdb *redis.Client, n int) ([]string, error) {
	ids := make([]string, n)
	for i := range ids {
		id := fmt.Sprintf("stress-o%d", i+1)
		order := map[string]interface{}{
			"id":        id,
			"total":     gofakeit.Float64Range(5, 5000),
			"itemCount": gofakeit.Number(1, 12),
			"status":    gofakeit.RandomString([]string{"pending", "paid", "shipped"}),
			"expedited": gofakeit.Bool(),
		}
		data, err := json.Marshal(order)
		if err != nil {
			return nil, err
		}
		if err := rdb.Set(ctx, "order:"+id, data, 0).Err(); err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}

func publishEvent(ctx context.Context, rdb *redis.Client, orderIDs []string) error {
	event := model.TriggerEvent{
		EventType: eventTypes[rand.Intn(len(eventTypes))],
		OrderID:   orderIDs[rand.Intn(len(orderIDs))],
		Data: map[string]interface{}{
			"source": gofakeit.RandomString([]string{"web", "mobile", "api"}),
		},
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return rdb.Publish(ctx, channel, payload).Err()
}
