package transform

import "usmtf_importer/internal/output"

// basePlatformType is the scenario type every generated platform type
// derives from.
const basePlatformType = "WSF_PLATFORM"

// PlatformTypeDefinition declares a platform type, one per aircraft type.
type PlatformTypeDefinition struct {
	Type string
	Base string
}

func NewPlatformTypeDefinition(aircraftType string) PlatformTypeDefinition {
	return PlatformTypeDefinition{Type: replaceSpaces(aircraftType), Base: basePlatformType}
}

// FileName is the name of the file the definition is exported to.
func (d PlatformTypeDefinition) FileName() string { return d.Type + ".txt" }

func (d PlatformTypeDefinition) OutputBlock() *output.Block {
	return output.NewBlock("platform_type", d.Type+" "+d.Base)
}

// Platform is one aircraft of an ATO mission.
type Platform struct {
	Name           string
	Category       string
	Position       string
	TypeDefinition PlatformTypeDefinition
}

func (p Platform) OutputBlock() *output.Block {
	b := output.NewBlock("platform", p.Name+" "+p.TypeDefinition.Type)
	b.SetSpaced("category", p.Category)
	b.SetSpaced("position", p.Position)
	return b
}
