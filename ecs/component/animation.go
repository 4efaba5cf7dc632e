package component

import engine "github.com/milk9111/nightshade/component"

var AnimatorComponent = NewComponent[engine.Animator]()
