package loads

import (
	"fmt"
	"log"
	"sync"
)

// Board holds the simulated load states. Nothing reaches hardware.
type Board struct {
	mu    sync.RWMutex
	loads []Load
}

func NewBoard(initial []Load) *Board {
	loads := make([]Load, len(initial))
	copy(loads, initial)
	for i := range loads {
		loads[i].Color = loads[i].Category.Color()
	}
	return &Board{loads: loads}
}

func (b *Board) List() []Load {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Load, len(b.loads))
	copy(out, b.loads)
	return out
}

// Toggle flips the load and returns its new state.
func (b *Board) Toggle(id string) (Load, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.loads {
		if b.loads[i].ID == id {
			b.loads[i].On = !b.loads[i].On
			log.Printf("loads: %s switched %s", b.loads[i].Name, onOff(b.loads[i].On))
			return b.loads[i], nil
		}
	}
	return Load{}, fmt.Errorf("%w: %s", ErrUnknownLoad, id)
}

// TotalActivePower is the sum of watts of all loads that are on.
func (b *Board) TotalActivePower() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	total := 0.0
	for _, l := range b.loads {
		if l.On {
			total += l.PowerWatts
		}
	}
	return total
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
