// ruleflow/pkg/runtime/context.go

package runtime

import (
	"context"

	"rulehub/ruleflow/pkg/logging"
	"rulehub/ruleflow/pkg/model"
	"rulehub/ruleflow/pkg/store"
)

// BuildContext resolves the entities a trigger event references into the
// execution context for a batch. Missing entities are simply absent from
// the context; conditions referencing them then fail their own clause
// instead of failing the batch.
func BuildContext(ctx context.Context, st store.Store, event model.TriggerEvent) (model.ExecutionContext, model.TriggeredBy) {
	ectx := model.ExecutionContext{}
	if event.Data != nil {
		ectx["eventData"] = event.Data
	}

	load := func(kind, id string) {
		if id == "" {
			return
		}
		entity, err := st.GetEntity(ctx, kind, id)
		if err != nil {
			logging.Logger.Warn().Err(err).Str("kind", kind).Str("id", id).Msg("Failed to load entity")
			return
		}
		if entity != nil {
			ectx[kind] = entity
		}
	}

	load("customer", event.CustomerID)
	load("order", event.OrderID)
	load("product", event.ProductID)

	return ectx, model.TriggeredBy{
		EventType: event.EventType,
		EventData: event.Data,
	}
}
