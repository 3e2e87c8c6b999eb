package testsupport

import (
	"context"
	"io"
	"sync"

	"pokedex/internal/classifier"
)

// Classifier is an in-memory classifier.Classifier returning a fixed answer.
type Classifier struct {
	Label *string
	Index int
	Err   error

	mu    sync.Mutex
	calls int
	seen  []byte
}

var _ classifier.Classifier = (*Classifier)(nil)

// Predict records the upload and returns the configured answer.
func (c *Classifier) Predict(_ context.Context, _ string, image io.Reader) (classifier.Prediction, error) {
	data, err := io.ReadAll(image)
	c.mu.Lock()
	c.calls++
	c.seen = data
	c.mu.Unlock()
	if err != nil {
		return classifier.Prediction{}, err
	}
	if c.Err != nil {
		return classifier.Prediction{}, c.Err
	}
	return classifier.Prediction{Index: c.Index, Label: c.Label}, nil
}

// Label returns a pointer to s, for building predictions.
func Label(s string) *string {
	return &s
}

// CallCount reports how many times Predict ran.
func (c *Classifier) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// Uploaded returns the bytes of the most recent upload.
func (c *Classifier) Uploaded() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seen
}
