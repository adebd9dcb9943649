package config

import (
	"github.com/dshills/modsync/internal/config/keycode"
	"github.com/dshills/modsync/internal/config/registry"
	"github.com/dshills/modsync/internal/config/section"
)

// Section names.
const (
	SectionGeneral    = "General"
	SectionServer     = "Server"
	SectionItems      = "Items"
	SectionAutoStack  = "AutoStack"
	SectionDurability = "Durability"
	SectionArmor      = "Armor"
	SectionShields    = "Shields"
	SectionPlayer     = "Player"
	SectionHotkeys    = "Hotkeys"
)

// DefaultConfigVersion is the version of the built-in defaults.
const DefaultConfigVersion = "1"

// GeneralConfig holds settings about the configuration file itself.
// The section is never synced.
type GeneralConfig struct {
	section.Meta

	// DisableConfigAutoUpdates stops the file from being merged with the
	// upstream template at startup.
	DisableConfigAutoUpdates bool

	// ConfigVersion is fixed by the defaults and never read from a file.
	ConfigVersion string
}

// GeneralSection describes GeneralConfig.
var GeneralSection = section.New[GeneralConfig](SectionGeneral, false,
	func() GeneralConfig {
		return GeneralConfig{ConfigVersion: DefaultConfigVersion}
	},
	registry.Bool("DisableConfigAutoUpdates", func(c *GeneralConfig) *bool { return &c.DisableConfigAutoUpdates }).With(registry.PolicyLocalOnly),
	registry.String("ConfigVersion", func(c *GeneralConfig) *string { return &c.ConfigVersion }).With(registry.PolicyNever),
)

// ServerConfig holds server behavior and the sync switches.
type ServerConfig struct {
	section.Meta

	MaxPlayers            int
	DisableServerPassword bool
	EnforceMod            bool

	// ServerSyncsConfig makes clients adopt the server's document.
	ServerSyncsConfig bool

	// ServerSyncHotkeys lets the server's document overwrite keybindings.
	ServerSyncHotkeys bool

	// DataRate is the network send rate in KiB/s.
	DataRate       int
	WelcomeMessage string
}

// ServerSection describes ServerConfig.
var ServerSection = section.New[ServerConfig](SectionServer, true,
	func() ServerConfig {
		return ServerConfig{
			MaxPlayers:        10,
			EnforceMod:        true,
			ServerSyncsConfig: true,
			DataRate:          60,
		}
	},
	registry.Int("MaxPlayers", func(c *ServerConfig) *int { return &c.MaxPlayers }),
	registry.Bool("DisableServerPassword", func(c *ServerConfig) *bool { return &c.DisableServerPassword }),
	registry.Bool("EnforceMod", func(c *ServerConfig) *bool { return &c.EnforceMod }).With(registry.PolicyRemoteOnly),
	registry.Bool("ServerSyncsConfig", func(c *ServerConfig) *bool { return &c.ServerSyncsConfig }),
	registry.Bool("ServerSyncHotkeys", func(c *ServerConfig) *bool { return &c.ServerSyncHotkeys }),
	registry.Int("DataRate", func(c *ServerConfig) *int { return &c.DataRate }),
	registry.String("WelcomeMessage", func(c *ServerConfig) *string { return &c.WelcomeMessage }),
)

// ItemsConfig holds item weight, stack and drop settings. Percentages are
// modifiers: 50 means +50%, -100 or less means zero.
type ItemsConfig struct {
	section.Meta

	NoTeleportPrevention                 bool
	BaseItemWeightReduction              float64
	ItemStackMultiplier                  float64
	DroppedItemOnGroundDurationInSeconds float64
	ItemsFloatInWater                    bool
}

// ItemsSection describes ItemsConfig.
var ItemsSection = section.New[ItemsConfig](SectionItems, true,
	func() ItemsConfig {
		return ItemsConfig{DroppedItemOnGroundDurationInSeconds: 3600}
	},
	registry.Bool("NoTeleportPrevention", func(c *ItemsConfig) *bool { return &c.NoTeleportPrevention }),
	registry.Float("BaseItemWeightReduction", func(c *ItemsConfig) *float64 { return &c.BaseItemWeightReduction }),
	registry.Float("ItemStackMultiplier", func(c *ItemsConfig) *float64 { return &c.ItemStackMultiplier }),
	registry.Float("DroppedItemOnGroundDurationInSeconds", func(c *ItemsConfig) *float64 { return &c.DroppedItemOnGroundDurationInSeconds }),
	registry.Bool("ItemsFloatInWater", func(c *ItemsConfig) *bool { return &c.ItemsFloatInWater }),
)

// AutoStackConfig controls stacking items into nearby containers.
type AutoStackConfig struct {
	section.Meta

	AutoStackAllRange                  float64
	AutoStackAllIgnorePrivateAreaCheck bool
	AutoStackAllIgnoreEquipment        bool
	IgnoreAmmo                         bool
	IgnoreFood                         bool
	IgnoreMead                         bool
}

// AutoStackSection describes AutoStackConfig.
var AutoStackSection = section.New[AutoStackConfig](SectionAutoStack, true,
	func() AutoStackConfig {
		return AutoStackConfig{AutoStackAllRange: 10}
	},
	registry.Float("AutoStackAllRange", func(c *AutoStackConfig) *float64 { return &c.AutoStackAllRange }),
	registry.Bool("AutoStackAllIgnorePrivateAreaCheck", func(c *AutoStackConfig) *bool { return &c.AutoStackAllIgnorePrivateAreaCheck }),
	registry.Bool("AutoStackAllIgnoreEquipment", func(c *AutoStackConfig) *bool { return &c.AutoStackAllIgnoreEquipment }),
	registry.Bool("IgnoreAmmo", func(c *AutoStackConfig) *bool { return &c.IgnoreAmmo }),
	registry.Bool("IgnoreFood", func(c *AutoStackConfig) *bool { return &c.IgnoreFood }),
	registry.Bool("IgnoreMead", func(c *AutoStackConfig) *bool { return &c.IgnoreMead }),
)

// DurabilityConfig holds percentage modifiers of maximum durability per
// tool or item type.
type DurabilityConfig struct {
	section.Meta

	Axes       float64
	Pickaxes   float64
	Hammer     float64
	Cultivator float64
	Hoe        float64
	Torch      float64
	Weapons    float64
	Bows       float64
	Shields    float64
	Armor      float64
}

// DurabilitySection describes DurabilityConfig.
var DurabilitySection = section.New[DurabilityConfig](SectionDurability, true,
	func() DurabilityConfig { return DurabilityConfig{} },
	registry.Float("Axes", func(c *DurabilityConfig) *float64 { return &c.Axes }),
	registry.Float("Pickaxes", func(c *DurabilityConfig) *float64 { return &c.Pickaxes }),
	registry.Float("Hammer", func(c *DurabilityConfig) *float64 { return &c.Hammer }),
	registry.Float("Cultivator", func(c *DurabilityConfig) *float64 { return &c.Cultivator }),
	registry.Float("Hoe", func(c *DurabilityConfig) *float64 { return &c.Hoe }),
	registry.Float("Torch", func(c *DurabilityConfig) *float64 { return &c.Torch }),
	registry.Float("Weapons", func(c *DurabilityConfig) *float64 { return &c.Weapons }),
	registry.Float("Bows", func(c *DurabilityConfig) *float64 { return &c.Bows }),
	registry.Float("Shields", func(c *DurabilityConfig) *float64 { return &c.Shields }),
	registry.Float("Armor", func(c *DurabilityConfig) *float64 { return &c.Armor }),
)

// ArmorConfig holds percentage modifiers of armor per slot.
type ArmorConfig struct {
	section.Meta

	Helmets float64
	Chests  float64
	Legs    float64
	Capes   float64
}

// ArmorSection describes ArmorConfig.
var ArmorSection = section.New[ArmorConfig](SectionArmor, true,
	func() ArmorConfig { return ArmorConfig{} },
	registry.Float("Helmets", func(c *ArmorConfig) *float64 { return &c.Helmets }),
	registry.Float("Chests", func(c *ArmorConfig) *float64 { return &c.Chests }),
	registry.Float("Legs", func(c *ArmorConfig) *float64 { return &c.Legs }),
	registry.Float("Capes", func(c *ArmorConfig) *float64 { return &c.Capes }),
)

// ShieldsConfig holds the shield block rating modifier.
type ShieldsConfig struct {
	section.Meta

	BlockRating float64
}

// ShieldsSection describes ShieldsConfig.
var ShieldsSection = section.New[ShieldsConfig](SectionShields, true,
	func() ShieldsConfig { return ShieldsConfig{} },
	registry.Float("BlockRating", func(c *ShieldsConfig) *float64 { return &c.BlockRating }),
)

// DamageType is a bit set of damage kinds.
type DamageType int

// Damage kinds.
const (
	DamageBlunt     DamageType = 1 << iota
	DamageSlash
	DamagePierce
	DamageChop
	DamagePickaxe
	DamageFire
	DamageFrost
	DamageLightning
	DamagePoison
	DamageSpirit
)

// DamageTypes is the flags type of DamageType fields.
var DamageTypes = registry.NewFlags("DamageType",
	registry.Symbol{Name: "Blunt", Value: int(DamageBlunt)},
	registry.Symbol{Name: "Slash", Value: int(DamageSlash)},
	registry.Symbol{Name: "Pierce", Value: int(DamagePierce)},
	registry.Symbol{Name: "Chop", Value: int(DamageChop)},
	registry.Symbol{Name: "Pickaxe", Value: int(DamagePickaxe)},
	registry.Symbol{Name: "Fire", Value: int(DamageFire)},
	registry.Symbol{Name: "Frost", Value: int(DamageFrost)},
	registry.Symbol{Name: "Lightning", Value: int(DamageLightning)},
	registry.Symbol{Name: "Poison", Value: int(DamagePoison)},
	registry.Symbol{Name: "Spirit", Value: int(DamageSpirit)},
)

// Has reports whether d contains every bit of other.
func (d DamageType) Has(other DamageType) bool {
	return d&other == other
}

// String returns the document form of d.
func (d DamageType) String() string {
	return DamageTypes.Format(int(d))
}

// DeathPenalty selects what a player loses on death.
type DeathPenalty int

// Death penalties.
const (
	DeathPenaltyDefault DeathPenalty = iota
	DeathPenaltyReduced
	DeathPenaltyDisabled
)

// DeathPenalties is the enum type of DeathPenalty fields.
var DeathPenalties = registry.NewEnum("DeathPenalty",
	registry.Symbol{Name: "Default", Value: int(DeathPenaltyDefault)},
	registry.Symbol{Name: "Reduced", Value: int(DeathPenaltyReduced)},
	registry.Symbol{Name: "Disabled", Value: int(DeathPenaltyDisabled)},
)

// String returns the document form of p.
func (p DeathPenalty) String() string {
	return DeathPenalties.Format(int(p))
}

// PlayerConfig holds player carry weight and damage settings.
type PlayerConfig struct {
	section.Meta

	BaseMaximumWeight  float64
	BaseMegingjordBuff float64
	ImmuneDamageTypes  DamageType
	DeathPenalty       DeathPenalty
}

// PlayerSection describes PlayerConfig.
var PlayerSection = section.New[PlayerConfig](SectionPlayer, true,
	func() PlayerConfig {
		return PlayerConfig{
			BaseMaximumWeight:  300,
			BaseMegingjordBuff: 150,
		}
	},
	registry.Float("BaseMaximumWeight", func(c *PlayerConfig) *float64 { return &c.BaseMaximumWeight }),
	registry.Float("BaseMegingjordBuff", func(c *PlayerConfig) *float64 { return &c.BaseMegingjordBuff }),
	registry.Flags("ImmuneDamageTypes", DamageTypes, func(c *PlayerConfig) *DamageType { return &c.ImmuneDamageTypes }),
	registry.Enum("DeathPenalty", DeathPenalties, func(c *PlayerConfig) *DeathPenalty { return &c.DeathPenalty }),
)

// HotkeysConfig holds keybindings. Keybindings keep their local values
// during a remote sync unless the server syncs hotkeys.
type HotkeysConfig struct {
	section.Meta

	RollForwards              keycode.KeyCode
	RollBackwards             keycode.KeyCode
	EnterAdvancedBuildingMode keycode.KeyCode
	ExitAdvancedBuildingMode  keycode.KeyCode
}

// HotkeysSection describes HotkeysConfig.
var HotkeysSection = section.New[HotkeysConfig](SectionHotkeys, false,
	func() HotkeysConfig {
		return HotkeysConfig{
			RollForwards:              keycode.F9,
			RollBackwards:             keycode.F10,
			EnterAdvancedBuildingMode: keycode.F1,
			ExitAdvancedBuildingMode:  keycode.F3,
		}
	},
	registry.KeyCode("RollForwards", func(c *HotkeysConfig) *keycode.KeyCode { return &c.RollForwards }),
	registry.KeyCode("RollBackwards", func(c *HotkeysConfig) *keycode.KeyCode { return &c.RollBackwards }),
	registry.KeyCode("EnterAdvancedBuildingMode", func(c *HotkeysConfig) *keycode.KeyCode { return &c.EnterAdvancedBuildingMode }),
	registry.KeyCode("ExitAdvancedBuildingMode", func(c *HotkeysConfig) *keycode.KeyCode { return &c.ExitAdvancedBuildingMode }),
)
