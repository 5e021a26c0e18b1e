package shared

// DamageType categorizes damage for resistance and vulnerability lookups.
type DamageType string

const (
	DamageTypeBludgeoning DamageType = "bludgeoning"
	DamageTypePiercing    DamageType = "piercing"
	DamageTypeSlashing    DamageType = "slashing"
	DamageTypeFire        DamageType = "fire"
	DamageTypeCold        DamageType = "cold"
	DamageTypeLightning   DamageType = "lightning"
	DamageTypeThunder     DamageType = "thunder"
	DamageTypeAcid        DamageType = "acid"
	DamageTypePoison      DamageType = "poison"
	DamageTypeNecrotic    DamageType = "necrotic"
	DamageTypeRadiant     DamageType = "radiant"
	DamageTypeForce       DamageType = "force"
	DamageTypePsychic     DamageType = "psychic"
)
