package scheduler

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const TaskEnhanceImages = "ai.enhance_images"

const TaskGenerateSuggestions = "ai.generate_suggestions"

// ProductPayload identifies the product an AI task works on.
type ProductPayload struct {
	ProductID string `json:"productId"`
}

func NewEnhanceImagesTask(productID uuid.UUID) (*asynq.Task, error) {
	return newProductTask(TaskEnhanceImages, productID)
}

func NewGenerateSuggestionsTask(productID uuid.UUID) (*asynq.Task, error) {
	return newProductTask(TaskGenerateSuggestions, productID)
}

func newProductTask(taskType string, productID uuid.UUID) (*asynq.Task, error) {
	data, err := json.Marshal(ProductPayload{ProductID: productID.String()})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(taskType, data), nil
}

// ParseProductPayload decodes a task payload and validates the product id.
func ParseProductPayload(task *asynq.Task) (uuid.UUID, error) {
	var payload ProductPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return uuid.Nil, fmt.Errorf("decode %s payload: %w", task.Type(), err)
	}
	id, err := uuid.Parse(payload.ProductID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("decode %s payload: invalid productId: %w", task.Type(), err)
	}
	return id, nil
}
