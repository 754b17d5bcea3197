package modelsheet

import (
	"github.com/goliatone/go-modelsheet/pkg/metamodel"
	"github.com/goliatone/go-modelsheet/pkg/modelfile"
	"github.com/goliatone/go-modelsheet/pkg/store"
)

// LoadModels reads model files and directories in order.
func LoadModels(paths ...string) ([]metamodel.Model, error) {
	return modelfile.LoadPaths(paths...)
}

// OpenStore loads paths into a new in-memory store.
func OpenStore(paths ...string) (*store.Memory, error) {
	models, err := LoadModels(paths...)
	if err != nil {
		return nil, err
	}
	st := &store.Memory{}
	if err := st.Load(models...); err != nil {
		return nil, err
	}
	return st, nil
}
