package weather

import (
	"context"
)

// Story is a generated sentence plus the decision path that produced it.
type Story struct {
	Text   string `json:"story"`
	Bucket string `json:"bucket"`
	Rule   string `json:"rule"`
}

// Narrator turns one observation into a story. Implementations must be
// total and free of side effects on the observation.
type Narrator interface {
	Explain(obs Observation) Story
}

// Source abstracts where observations come from (remote CSV, local file).
type Source interface {
	Name() string
	Load(ctx context.Context) ([]Observation, error)
}

// Store is the contract the in-memory store (and any future persistent store) must satisfy.
type Store interface {
	SaveDataset(ds Dataset)
	Latest() (Dataset, error)
	History() []Dataset
}
