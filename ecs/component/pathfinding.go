package component

import "github.com/milk9111/nightshade/nav"

// NavAgentComponent is stepped by the navigation system after the AI has
// chosen this tick's destination.
var NavAgentComponent = NewComponent[nav.GridAgent]()
