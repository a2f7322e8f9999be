// ruleflow/tools/redis_setup/main.go

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"

	"rulehub/ruleflow/pkg/model"
	"rulehub/ruleflow/pkg/store"
)

var ctx = context.Background()

func main() {
	redisAddr := flag.String("redis", "localhost:6379", "Redis address")
	rulesetFile := flag.String("ruleset", "", "Ruleset file produced by rule_gen")
	flag.Parse()

	rdb := connectToRedis(*redisAddr)

	if err := initializeRedis(rdb); err != nil {
		fmt.Printf("Error seeding entities: %v\n", err)
		os.Exit(1)
	}

	if *rulesetFile != "" {
		count, err := loadRuleset(rdb, *rulesetFile)
		if err != nil {
			fmt.Printf("Error loading ruleset: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Loaded %d rules from %s\n", count, *rulesetFile)
	}

	startCLI(rdb)
}

func connectToRedis(addr string) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return rdb
}

// initializeRedis seeds a small set of entities so freshly loaded rules have
// something to match against.
func initializeRedis(rdb *redis.Client) error {
	entities := map[string]map[string]interface{}{
		"customer:c1": {"tier": "premium", "lifetimeValue": 12400.50, "orderCount": 37, "verified": true, "country": "US"},
		"customer:c2": {"tier": "basic", "lifetimeValue": 89.99, "orderCount": 2, "verified": false, "country": "DE"},
		"order:o1":    {"id": "o1", "total": 1500, "itemCount": 3, "status": "paid", "expedited": true},
		"order:o2":    {"id": "o2", "total": 42.5, "itemCount": 1, "status": "pending", "expedited": false},
		"product:p1":  {"id": "p1", "price": 999.99, "stock": 12, "category": "electronics", "discontinued": false},
	}

	for key, entity := range entities {
		data, err := json.Marshal(entity)
		if err != nil {
			return err
		}
		if err := rdb.Set(ctx, key, data, 0).Err(); err != nil {
			fmt.Printf("Error setting %s: %v\n", key, err)
			return err
		}
		fmt.Printf("Seeded %s\n", key)
	}
	return nil
}

type ruleset struct {
	Rules []model.Rule `json:"rules"`
}

func loadRuleset(rdb *redis.Client, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	var rs ruleset
	if err := json.Unmarshal(data, &rs); err != nil {
		return 0, fmt.Errorf("error decoding ruleset: %w", err)
	}

	st := store.NewRedisStoreFromClient(rdb)
	for i := range rs.Rules {
		if err := st.SaveRule(ctx, &rs.Rules[i]); err != nil {
			return i, fmt.Errorf("error saving rule %s: %w", rs.Rules[i].ID, err)
		}
	}
	return len(rs.Rules), nil
}

func startCLI(rdb *redis.Client) {
	reader := bufio.NewReader(os.Stdin)

	for {
		fmt.Print("Enter command (set <kind:id> <json>, trigger <eventType> [orderId] or exit): ")
		input, _ := reader.ReadString('\n')
		input = strings.TrimSpace(input)

		if input == "exit" {
			break
		}

		err := processCommand(rdb, input)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	}
}

func processCommand(rdb *redis.Client, input string) error {
	parts := strings.SplitN(input, " ", 3)

	switch {
	case len(parts) == 3 && parts[0] == "set":
		return setEntity(rdb, parts[1], parts[2])
	case len(parts) >= 2 && parts[0] == "trigger":
		orderID := ""
		if len(parts) == 3 {
			orderID = parts[2]
		}
		return publishTrigger(rdb, parts[1], orderID)
	default:
		return fmt.Errorf("invalid command. Use 'set <kind:id> <json>' or 'trigger <eventType> [orderId]'")
	}
}

func setEntity(rdb *redis.Client, key, payload string) error {
	var entity map[string]interface{}
	if err := json.Unmarshal([]byte(payload), &entity); err != nil {
		return fmt.Errorf("entity must be a JSON object: %v", err)
	}

	if err := rdb.Set(ctx, key, payload, 0).Err(); err != nil {
		return fmt.Errorf("error setting %s: %v", key, err)
	}

	fmt.Printf("Set %s\n", key)
	return nil
}

func publishTrigger(rdb *redis.Client, eventType, orderID string) error {
	event := model.TriggerEvent{
		EventType: eventType,
		OrderID:   orderID,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if err := rdb.Publish(ctx, "ruleflow_triggers", payload).Err(); err != nil {
		return fmt.Errorf("error publishing trigger: %v", err)
	}

	fmt.Printf("Published trigger %s\n", payload)
	return nil
}
