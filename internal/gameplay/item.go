package gameplay

import "strings"

// ItemType is the equipment category of an item.
type ItemType int

// Item types.
const (
	ItemMaterial ItemType = iota
	ItemConsumable
	ItemOneHandedWeapon
	ItemTwoHandedWeapon
	ItemBow
	ItemShield
	ItemHelmet
	ItemChest
	ItemLegs
	ItemShoulder
	ItemAmmo
	ItemTool
	ItemTrophy
)

var itemTypeNames = [...]string{
	ItemMaterial:        "material",
	ItemConsumable:      "consumable",
	ItemOneHandedWeapon: "one-handed-weapon",
	ItemTwoHandedWeapon: "two-handed-weapon",
	ItemBow:             "bow",
	ItemShield:          "shield",
	ItemHelmet:          "helmet",
	ItemChest:           "chest",
	ItemLegs:            "legs",
	ItemShoulder:        "shoulder",
	ItemAmmo:            "ammo",
	ItemTool:            "tool",
	ItemTrophy:          "trophy",
}

// String returns the item type name.
func (t ItemType) String() string {
	if t >= 0 && int(t) < len(itemTypeNames) {
		return itemTypeNames[t]
	}
	return "unknown"
}

// IsArmor reports whether t is worn in an armor slot.
func (t ItemType) IsArmor() bool {
	switch t {
	case ItemHelmet, ItemChest, ItemLegs, ItemShoulder:
		return true
	default:
		return false
	}
}

// IsEquipment reports whether t can be equipped.
func (t ItemType) IsEquipment() bool {
	switch t {
	case ItemOneHandedWeapon, ItemTwoHandedWeapon, ItemBow, ItemShield, ItemTool:
		return true
	default:
		return t.IsArmor()
	}
}

// Item is the shared data of one item kind.
type Item struct {
	// Name is the localization token, e.g. "$item_pickaxe_iron".
	Name string
	Type ItemType

	Weight       float64
	MaxStackSize int
	Teleportable bool

	MaxDurability      float64
	DurabilityPerLevel float64

	BlockPower         float64
	BlockPowerPerLevel float64

	// AmmoType is set for arrows, bolts and other projectiles.
	AmmoType string

	Food        float64
	FoodStamina float64
	FoodEitr    float64
	IsDrink     bool

	// Equipped is set for items currently worn or held.
	Equipped bool
}

// Family returns the first word of the item name, e.g. "pickaxe" for
// "$item_pickaxe_iron".
func (it Item) Family() string {
	name := strings.TrimPrefix(it.Name, "$item_")
	family, _, _ := strings.Cut(name, "_")
	return family
}

// IsAmmo reports whether the item is ammunition. Turret bolts are loaded
// into turrets and do not count.
func (it Item) IsAmmo() bool {
	return it.AmmoType != "" && !strings.HasSuffix(it.AmmoType, "turretbolt")
}

// IsFood reports whether the item is an edible consumable.
func (it Item) IsFood() bool {
	return it.Type == ItemConsumable && (it.Food > 0 || it.FoodEitr > 0 || it.FoodStamina > 0)
}

// IsMead reports whether the item is a drink.
func (it Item) IsMead() bool {
	return it.IsDrink
}
