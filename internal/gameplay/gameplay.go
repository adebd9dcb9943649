// Package gameplay applies the configuration to game values.
//
// Every function reads one *config.Configuration snapshot and leaves the
// game value untouched when the section it depends on is disabled.
// Percent modifiers follow one rule: 50 adds half, -50 removes half and
// -100 or less yields zero.
package gameplay

import (
	"cmp"
	"math"

	"github.com/dshills/modsync/internal/config"
)

// DefaultDropDuration is the number of seconds a dropped item stays on
// the ground unless configured otherwise.
const DefaultDropDuration = 3600.0

// ApplyModifier applies a percent modifier to target.
func ApplyModifier(target, percent float64) float64 {
	if percent <= -100 {
		return 0
	}
	return target + target/100*percent
}

// Clamp limits v to [lo, hi].
func Clamp[T cmp.Ordered](v, lo, hi T) T {
	return min(max(v, lo), hi)
}

// ApplyItem returns it with the Items section applied: weight, stack
// size and teleport prevention.
func ApplyItem(cfg *config.Configuration, it Item) Item {
	if !cfg.Items.IsEnabled() {
		return it
	}
	it.Weight = ItemWeight(cfg, it.Weight)
	it.MaxStackSize = MaxStackSize(cfg, it.MaxStackSize)
	if cfg.Items.NoTeleportPrevention {
		it.Teleportable = true
	}
	return it
}

// ItemWeight returns the weight of an item after the weight modifier.
func ItemWeight(cfg *config.Configuration, weight float64) float64 {
	if !cfg.Items.IsEnabled() {
		return weight
	}
	return ApplyModifier(weight, cfg.Items.BaseItemWeightReduction)
}

// MaxStackSize returns the stack size after the stack multiplier. Items
// that do not stack are left alone, as are multipliers below one.
func MaxStackSize(cfg *config.Configuration, size int) int {
	if !cfg.Items.IsEnabled() || size <= 1 || cfg.Items.ItemStackMultiplier < 1 {
		return size
	}
	return int(ApplyModifier(float64(size), cfg.Items.ItemStackMultiplier))
}

// FloatsInWater reports whether dropped items should float.
func FloatsInWater(cfg *config.Configuration) bool {
	return cfg.Items.IsEnabled() && cfg.Items.ItemsFloatInWater
}

// DropDuration returns how long a dropped item stays on the ground.
// Without a local player the default applies.
func DropDuration(cfg *config.Configuration, hasLocalPlayer bool) float64 {
	if !cfg.Items.IsEnabled() || !hasLocalPlayer {
		return DefaultDropDuration
	}
	return Clamp(cfg.Items.DroppedItemOnGroundDurationInSeconds, 0, DefaultDropDuration)
}

// MaxDurability returns the maximum durability of it at quality. Tools are
// matched by item family first; weapons, bows, shields and armor by type
// unless a tool modifier already applied.
func MaxDurability(cfg *config.Configuration, it Item, quality int) float64 {
	base := it.MaxDurability + float64(max(0, quality-1))*it.DurabilityPerLevel
	if !cfg.Durability.IsEnabled() {
		return base
	}
	d := cfg.Durability

	percent, modified := 0.0, true
	switch it.Family() {
	case "pickaxe":
		percent = d.Pickaxes
	case "axe":
		percent = d.Axes
	case "hammer":
		percent = d.Hammer
	case "cultivator":
		percent = d.Cultivator
	case "hoe":
		percent = d.Hoe
	case "torch":
		percent = d.Torch
	default:
		modified = false
	}

	if !modified {
		switch {
		case it.Type == ItemOneHandedWeapon || it.Type == ItemTwoHandedWeapon:
			percent = d.Weapons
		case it.Type == ItemBow:
			percent = d.Bows
		case it.Type == ItemShield:
			percent = d.Shields
		case it.Type.IsArmor():
			percent = d.Armor
		default:
			return base
		}
	}
	return ApplyModifier(base, percent)
}

// Armor returns the armor value of it after the per-slot modifier.
func Armor(cfg *config.Configuration, it Item, armor float64) float64 {
	if !cfg.Armor.IsEnabled() {
		return armor
	}
	a := cfg.Armor
	switch it.Type {
	case ItemHelmet:
		return ApplyModifier(armor, a.Helmets)
	case ItemChest:
		return ApplyModifier(armor, a.Chests)
	case ItemLegs:
		return ApplyModifier(armor, a.Legs)
	case ItemShoulder:
		return ApplyModifier(armor, a.Capes)
	default:
		return armor
	}
}

// BlockPower returns the base block power of it at quality.
func BlockPower(cfg *config.Configuration, it Item, quality int) float64 {
	base := it.BlockPower + float64(max(0, quality-1))*it.BlockPowerPerLevel
	if !cfg.Shields.IsEnabled() {
		return base
	}
	return ApplyModifier(base, cfg.Shields.BlockRating)
}

// MaxCarryWeight returns the carry limit, with the belt bonus when the
// player wears one.
func MaxCarryWeight(cfg *config.Configuration, megingjord bool) float64 {
	weight, buff := 300.0, 150.0
	if cfg.Player.IsEnabled() {
		weight, buff = cfg.Player.BaseMaximumWeight, cfg.Player.BaseMegingjordBuff
	}
	if megingjord {
		weight += buff
	}
	return weight
}

// IsImmune reports whether the player takes no damage of kind dt.
func IsImmune(cfg *config.Configuration, dt config.DamageType) bool {
	return cfg.Player.IsEnabled() && dt != 0 && cfg.Player.ImmuneDamageTypes.Has(dt)
}

// AutoStackFilter returns the predicate deciding which items are moved
// into nearby containers. With AutoStack disabled every item qualifies.
func AutoStackFilter(cfg *config.Configuration) func(Item) bool {
	if !cfg.AutoStack.IsEnabled() {
		return func(Item) bool { return true }
	}
	a := *cfg.AutoStack
	return func(it Item) bool {
		switch {
		case a.IgnoreAmmo && it.IsAmmo():
			return false
		case a.IgnoreFood && it.IsFood():
			return false
		case a.IgnoreMead && it.IsMead():
			return false
		case a.AutoStackAllIgnoreEquipment && it.Equipped:
			return false
		default:
			return true
		}
	}
}

// InAutoStackRange reports whether a container at distance is reached.
func InAutoStackRange(cfg *config.Configuration, distance float64) bool {
	if math.IsNaN(distance) || distance < 0 {
		return false
	}
	rng := 10.0
	if cfg.AutoStack.IsEnabled() {
		rng = cfg.AutoStack.AutoStackAllRange
	}
	return distance <= rng
}
