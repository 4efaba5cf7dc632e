package component

type PlayerTag struct{}

var PlayerTagComponent = NewComponent[PlayerTag]()

type NPCTag struct{}

var NPCTagComponent = NewComponent[NPCTag]()

// Name is the scene-authored name of an entity ("player", "shambler").
type Name struct {
	Value string
}

var NameComponent = NewComponent[Name]()
