package component

import "github.com/milk9111/nightshade/player"

var PlayerComponent = NewComponent[player.Machine]()
