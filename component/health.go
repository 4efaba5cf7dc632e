package component

// Health is the damage sink shared by the player and NPCs. The player-death
// edge seen by the AI is read from IsDead.
type Health struct {
	Max     float64
	Current float64
	Dead    bool

	OnDamage func(h *Health, amount float64)
	OnDeath  func(h *Health)
	OnRevive func(h *Health)
}

// NewHealth creates a Health component with max/current initialized.
func NewHealth(max float64) *Health {
	if max <= 0 {
		max = 1
	}
	return &Health{Max: max, Current: max}
}

// IsDead reports whether health reached zero.
func (h *Health) IsDead() bool {
	return h != nil && (h.Dead || h.Current <= 0)
}

// ApplyDamage subtracts amount. Returns true if damage was applied.
func (h *Health) ApplyDamage(amount float64) bool {
	if h == nil || h.IsDead() || amount <= 0 {
		return false
	}
	h.Current -= amount
	if h.Current < 0 {
		h.Current = 0
	}
	if h.OnDamage != nil {
		h.OnDamage(h, amount)
	}
	if h.Current <= 0 {
		h.Dead = true
		if h.OnDeath != nil {
			h.OnDeath(h)
		}
	}
	return true
}

// Kill drops health to zero regardless of its current value.
func (h *Health) Kill() {
	if h == nil || h.IsDead() {
		return
	}
	h.ApplyDamage(h.Current)
}

// Heal restores health up to Max. The dead stay dead; use Revive.
func (h *Health) Heal(amount float64) {
	if h == nil || h.IsDead() || amount <= 0 {
		return
	}
	h.Current = min(h.Current+amount, h.Max)
}

// Revive brings the owner back at full health.
func (h *Health) Revive() {
	if h == nil {
		return
	}
	wasDead := h.IsDead()
	h.Dead = false
	h.Current = h.Max
	if wasDead && h.OnRevive != nil {
		h.OnRevive(h)
	}
}

// Fraction returns Current/Max in [0, 1].
func (h *Health) Fraction() float64 {
	if h == nil || h.Max <= 0 {
		return 0
	}
	return h.Current / h.Max
}
