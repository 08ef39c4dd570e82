package cipher

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Operation)
)

// RegisterOperation adds op to the process-wide registry. Names must be unique.
func RegisterOperation(op Operation) error {
	if op == nil {
		return errors.New("cannot register nil operation")
	}
	name := op.Name()
	if name == "" {
		return errors.New("operation name cannot be empty")
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[name]; exists {
		return fmt.Errorf("operation %s is already registered", name)
	}
	registry[name] = op
	return nil
}

func mustRegister(ops ...Operation) {
	for _, op := range ops {
		if err := RegisterOperation(op); err != nil {
			panic(err)
		}
	}
}

// GetOperation looks up a registered operation by name.
func GetOperation(name string) (Operation, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	op, ok := registry[name]
	return op, ok
}

// ListOperations returns every registered operation sorted by name.
func ListOperations() []Operation {
	registryMu.RLock()
	ops := make([]Operation, 0, len(registry))
	for _, op := range registry {
		ops = append(ops, op)
	}
	registryMu.RUnlock()

	sort.Slice(ops, func(i, j int) bool {
		return ops[i].Name() < ops[j].Name()
	})
	return ops
}

// UnregisterOperation removes an operation from the registry (mainly for testing).
func UnregisterOperation(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(registry, name)
}
