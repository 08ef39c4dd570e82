package cipher

import (
	"context"
	"fmt"
)

// OperationType defines the category of a transformation.
type OperationType string

const (
	OperationTypeEncode     OperationType = "encode"
	OperationTypeDecode     OperationType = "decode"
	OperationTypeTransform  OperationType = "transform"
	OperationTypePreprocess OperationType = "preprocess"
)

// Operation is a named transformation over a byte sequence.
type Operation interface {
	// Name returns the unique identifier for this operation
	Name() string

	// Type returns the category of this operation
	Type() OperationType

	// Description returns a human-readable description
	Description() string

	// Execute applies the operation to the input data. Implementations must not
	// modify input.
	Execute(ctx context.Context, input []byte, params map[string]any) ([]byte, error)

	// Reverse returns the inverse operation if available
	Reverse() (Operation, bool)
}

// OperationConfig names one step of a pipeline.
type OperationConfig struct {
	Name       string         `yaml:"name" json:"name"`
	Parameters map[string]any `yaml:"parameters,omitempty" json:"parameters,omitempty"`
}

// Pipeline is a chain of operations applied in order.
type Pipeline struct {
	Operations []OperationConfig `yaml:"operations" json:"operations"`
}

// Execute runs the pipeline on the input data. The first failing step aborts the run.
func (p *Pipeline) Execute(ctx context.Context, input []byte) ([]byte, error) {
	result := input
	for i, step := range p.Operations {
		op, ok := GetOperation(step.Name)
		if !ok {
			return nil, fmt.Errorf("unknown operation at step %d: %s", i, step.Name)
		}
		out, err := op.Execute(ctx, result, step.Parameters)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name, err)
		}
		result = out
	}
	return result, nil
}

// Reverse builds the inverse pipeline. Every step must have an inverse operation.
func (p *Pipeline) Reverse() (*Pipeline, error) {
	reversed := &Pipeline{Operations: make([]OperationConfig, len(p.Operations))}
	for i, step := range p.Operations {
		op, ok := GetOperation(step.Name)
		if !ok {
			return nil, fmt.Errorf("unknown operation: %s", step.Name)
		}
		inverse, ok := op.Reverse()
		if !ok {
			return nil, fmt.Errorf("operation %s is not reversible", step.Name)
		}
		reversed.Operations[len(p.Operations)-1-i] = OperationConfig{
			Name:       inverse.Name(),
			Parameters: step.Parameters,
		}
	}
	return reversed, nil
}

// BaseOperation carries the descriptive fields shared by all operations.
type BaseOperation struct {
	NameValue        string
	TypeValue        OperationType
	DescriptionValue string
	ReverseOp        Operation
}

func (b *BaseOperation) Name() string {
	return b.NameValue
}

func (b *BaseOperation) Type() OperationType {
	return b.TypeValue
}

func (b *BaseOperation) Description() string {
	return b.DescriptionValue
}

func (b *BaseOperation) Reverse() (Operation, bool) {
	if b.ReverseOp == nil {
		return nil, false
	}
	return b.ReverseOp, true
}
