package component

import "github.com/milk9111/nightshade/ai"

var AIComponent = NewComponent[ai.Machine]()
