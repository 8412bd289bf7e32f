package delivery

import (
	"cmp"
	"math/rand/v2"
	"slices"
	"strings"

	"food-delivery-Orurh/internal/domain"
)

// Picker names accepted by NewPicker.
const (
	PickerRandom           = "random"
	PickerFewestDeliveries = "fewest_deliveries"
)

// RandomPicker tries couriers in uniformly random order.
type RandomPicker struct {
	shuffle func(n int, swap func(i, j int))
}

// NewRandomPicker returns a RandomPicker backed by the global generator.
func NewRandomPicker() *RandomPicker {
	return &RandomPicker{shuffle: rand.Shuffle}
}

// Rank returns a shuffled copy of candidates.
func (p *RandomPicker) Rank(candidates []domain.Courier) []domain.Courier {
	out := slices.Clone(candidates)
	p.shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// FewestDeliveriesPicker prefers couriers with fewer completed deliveries, then higher rating.
type FewestDeliveriesPicker struct{}

// Rank returns candidates sorted by preference.
func (FewestDeliveriesPicker) Rank(candidates []domain.Courier) []domain.Courier {
	out := slices.Clone(candidates)
	slices.SortStableFunc(out, func(a, b domain.Courier) int {
		switch {
		case a.CompletedDeliveries != b.CompletedDeliveries:
			return cmp.Compare(a.CompletedDeliveries, b.CompletedDeliveries)
		case a.Rating != b.Rating:
			return cmp.Compare(b.Rating, a.Rating)
		default:
			return cmp.Compare(a.ID, b.ID)
		}
	})
	return out
}

// NewPicker resolves a picker by name, falling back to random.
func NewPicker(name string) CourierPicker {
	if strings.EqualFold(strings.TrimSpace(name), PickerFewestDeliveries) {
		return FewestDeliveriesPicker{}
	}
	return NewRandomPicker()
}
