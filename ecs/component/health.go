package component

import engine "github.com/milk9111/nightshade/component"

// HealthComponent shares the Health the owning controller or NPC reads.
var HealthComponent = NewComponent[engine.Health]()
