// ruleflow/tools/rule_gen/main.go

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"

	"rulehub/ruleflow/pkg/model"
)

type Ruleset struct {
	Rules []model.Rule `json:"rules"`
}

var entityFields = map[string][]string{
	"order":    {"total", "itemCount", "status", "shippingCost", "expedited"},
	"customer": {"tier", "lifetimeValue", "orderCount", "verified", "country"},
	"product":  {"price", "stock", "category", "discontinued"},
	"event":    {"source", "channel"},
}

var fieldTypes = map[string]string{
	"total":         "numeric",
	"itemCount":     "numeric",
	"shippingCost":  "numeric",
	"lifetimeValue": "numeric",
	"orderCount":    "numeric",
	"price":         "numeric",
	"stock":         "numeric",
	"expedited":     "boolean",
	"verified":      "boolean",
	"discontinued":  "boolean",
	"status":        "string",
	"tier":          "string",
	"country":       "string",
	"category":      "string",
	"source":        "string",
	"channel":       "string",
}

var stringValues = map[string][]string{
	"status":   {"pending", "paid", "shipped", "cancelled"},
	"tier":     {"basic", "silver", "gold", "premium"},
	"country":  {"US", "DE", "FR", "JP", "BR"},
	"category": {"electronics", "clothing", "books", "toys"},
	"source":   {"web", "mobile", "api"},
	"channel":  {"checkout", "support", "marketing"},
}

var operators = map[string][]string{
	"numeric": {"==", "!=", "<", "<=", ">", ">="},
	"boolean": {"==", "!="},
	"string":  {"==", "!="},
}

func getRandomField() (string, string) {
	entities := make([]string, 0, len(entityFields))
	for entity := range entityFields {
		entities = append(entities, entity)
	}

	entity := entities[rand.Intn(len(entities))]
	fields := entityFields[entity]
	field := fields[rand.Intn(len(fields))]

	return entity, field
}

func generateValue(field string) string {
	switch fieldTypes[field] {
	case "numeric":
		return fmt.Sprintf("%.2f", gofakeit.Float64Range(1, 5000))
	case "boolean":
		if gofakeit.Bool() {
			return "true"
		}
		return "false"
	default:
		values := stringValues[field]
		return fmt.Sprintf("%q", values[rand.Intn(len(values))])
	}
}

func generateCondition() string {
	entity, field := getRandomField()
	ops := operators[fieldTypes[field]]
	return fmt.Sprintf("%s.%s %s %s", entity, field, ops[rand.Intn(len(ops))], generateValue(field))
}

func generateAction() string {
	switch rand.Intn(5) {
	case 0:
		return fmt.Sprintf("send_email(to: %q, subject: %q)", gofakeit.Email(), gofakeit.Sentence(4))
	case 1:
		return fmt.Sprintf("send_sms(to: %q, message: %q)", gofakeit.Phone(), gofakeit.Sentence(3))
	case 2:
		return fmt.Sprintf("call_webhook(url: \"https://hooks.example.com/%s\", method: \"POST\")", gofakeit.Word())
	case 3:
		return "update_database(table: \"orders\", operation: \"update\", id: \"order.id\", status: \"flagged\")"
	default:
		return fmt.Sprintf("send_notification(message: %q, channel: \"alerts\")", gofakeit.Sentence(3))
	}
}

func generateDSL() string {
	dsl := "WHEN " + generateCondition()
	for i := rand.Intn(3); i > 0; i-- {
		dsl += "\nAND " + generateCondition()
	}

	dsl += "\nTHEN " + generateAction()
	for i := rand.Intn(2); i > 0; i-- {
		dsl += "\nAND " + generateAction()
	}
	return dsl
}

func generateRule(index int) model.Rule {
	now := time.Now()
	tags := []string{"orders", "customers", "inventory", "alerts"}
	return model.Rule{
		ID:        uuid.NewString(),
		Name:      fmt.Sprintf("rule-%d", index),
		DSL:       generateDSL(),
		Status:    model.RuleStatusActive,
		Priority:  rand.Intn(20) + 1,
		Tags:      []string{tags[rand.Intn(len(tags))]},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func generateRuleset(numRules int) Ruleset {
	ruleset := Ruleset{Rules: make([]model.Rule, numRules)}
	for i := range ruleset.Rules {
		ruleset.Rules[i] = generateRule(i + 1)
	}
	return ruleset
}

func parseFlags(args []string) (int, string) {
	fs := flag.NewFlagSet("rule_gen", flag.ExitOnError)
	numRules := fs.Int("rules", 1000, "Number of rules to generate")
	outputFile := fs.String("output", "generated_ruleset.json", "Output file name")
	fs.Parse(args)
	return *numRules, *outputFile
}

func writeRulesetToFile(ruleset Ruleset, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(ruleset)
}

func main() {
	numRules, outputFile := parseFlags(os.Args[1:])

	gofakeit.Seed(time.Now().UnixNano())

	ruleset := generateRuleset(numRules)
	if err := writeRulesetToFile(ruleset, outputFile); err != nil {
		fmt.Printf("Error writing ruleset: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generated ruleset with %d rules. Saved to %s\n", numRules, outputFile)
}
