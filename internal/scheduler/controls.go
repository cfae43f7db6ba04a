package scheduler

import (
	"math"
	"sync"
)

// ControlSteps is the number of steps a control moves through between 0
// and 1.
const ControlSteps = 100

// Quantize clamps v to [0,1] and rounds it to a multiple of
// 1/ControlSteps.
func Quantize(v float64) float64 {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= 1:
		return 1
	}
	return math.Round(v*ControlSteps) / ControlSteps
}

// ControlVector is a control surface of N quantized sliders. It is safe
// for concurrent use, so a UI goroutine can set values while the frame
// loop samples them.
type ControlVector struct {
	mu     sync.Mutex
	values []float64
}

// NewControlVector returns a vector holding the quantized defaults.
func NewControlVector(defaults []float64) *ControlVector {
	c := &ControlVector{}
	c.SetAll(defaults)
	return c
}

// Rebuild replaces the sliders to match a newly selected shape.
func (c *ControlVector) Rebuild(params []Param) {
	defaults := make([]float64, len(params))
	for i, p := range params {
		defaults[i] = p.Default
	}
	c.SetAll(defaults)
}

// Set updates slider i. Out-of-range indices are ignored.
func (c *ControlVector) Set(i int, v float64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= len(c.values) {
		return false
	}
	c.values[i] = Quantize(v)
	return true
}

// SetAll replaces every slider, resizing the vector to len(vs).
func (c *ControlVector) SetAll(vs []float64) {
	values := make([]float64, len(vs))
	for i, v := range vs {
		values[i] = Quantize(v)
	}
	c.mu.Lock()
	c.values = values
	c.mu.Unlock()
}

// Sample returns a copy of the current values.
func (c *ControlVector) Sample() []float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]float64(nil), c.values...)
}

func (c *ControlVector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.values)
}
