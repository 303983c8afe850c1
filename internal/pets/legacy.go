package pets

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"tidepool/server/catalog"
)

// ErrInvalidLegacy is returned when a legacy save is not valid JSON.
var ErrInvalidLegacy = errors.New("pets: invalid legacy save")

// LegacyTile is a grid cell recovered from a legacy save.
type LegacyTile struct {
	X        int
	Y        int
	PetID    string
	Unlocked bool
}

// LegacyBuff is a standalone buff recovered from a legacy save.
type LegacyBuff struct {
	Buff       catalog.Buff
	InstanceID string
	Placed     bool
	X          int
	Y          int
	LastMoved  int64
}

// LegacyState is everything ImportLegacy could recover. Skipped lists the
// ids of pets that could not be mapped to a template.
type LegacyState struct {
	Cash    int64
	HasCash bool
	Pets    []Pet
	Tiles   []LegacyTile
	Buffs   []LegacyBuff
	Skipped []string
}

// ImportLegacy reads a save written by the browser client: either a bare
// pet array or an object with cash, pets, buffs and grid keys. Template
// keys are recovered from instance ids; deprecated buff pets are skipped.
func ImportLegacy(data []byte, cat *catalog.Catalog, now int64) (LegacyState, error) {
	if !gjson.ValidBytes(data) {
		return LegacyState{}, ErrInvalidLegacy
	}
	root := gjson.ParseBytes(data)
	var state LegacyState

	petList := root
	if root.IsObject() {
		petList = root.Get("pets")
		if cash := root.Get("cash"); cash.Exists() {
			state.Cash = cash.Int()
			state.HasCash = true
		}
	}
	for _, raw := range petList.Array() {
		pet, ok := legacyPet(raw, cat, now)
		if !ok {
			state.Skipped = append(state.Skipped, raw.Get("id").String())
			continue
		}
		state.Pets = append(state.Pets, pet)
	}

	if root.IsObject() {
		for _, raw := range root.Get("buffs").Array() {
			b, ok := legacyBuff(raw.Get("buff"), cat)
			if !ok {
				b, ok = legacyBuff(raw, cat)
			}
			if !ok {
				continue
			}
			lb := LegacyBuff{
				Buff:       b,
				InstanceID: raw.Get("instanceId").String(),
				LastMoved:  raw.Get("lastMoved").Int(),
			}
			if pos := raw.Get("position"); pos.Exists() {
				lb.Placed = true
				lb.X = int(pos.Get("x").Int())
				lb.Y = int(pos.Get("y").Int())
			}
			state.Buffs = append(state.Buffs, lb)
		}
		root.Get("grid.tiles").ForEach(func(_, row gjson.Result) bool {
			row.ForEach(func(_, tile gjson.Result) bool {
				state.Tiles = append(state.Tiles, LegacyTile{
					X:        int(tile.Get("position.x").Int()),
					Y:        int(tile.Get("position.y").Int()),
					PetID:    tile.Get("petId").String(),
					Unlocked: tile.Get("unlocked").Bool(),
				})
				return true
			})
			return true
		})
	}
	return state, nil
}

func legacyPet(raw gjson.Result, cat *catalog.Catalog, now int64) (Pet, bool) {
	id := raw.Get("id").String()
	if id == "" || raw.Get("providesBuffs").Exists() {
		return Pet{}, false
	}
	key := raw.Get("templateKey").String()
	if key == "" {
		key = TemplateKeyFromID(id)
	}
	if strings.HasPrefix(key, "pet-buff-") {
		return Pet{}, false
	}
	tpl, err := cat.Template(key)
	if err != nil {
		return Pet{}, false
	}

	pet := NewFromTemplate(tpl, id, nil, now)
	if name := raw.Get("name").String(); name != "" {
		pet.Name = name
	}
	if r := raw.Get("tickTimeRange").Array(); len(r) == 2 && r[0].Int() > 0 && r[1].Int() >= r[0].Int() {
		pet.TickTimeRange = [2]int{int(r[0].Int()), int(r[1].Int())}
	}
	if capacity := raw.Get("maxGemCapacity").Int(); capacity > 0 {
		pet.MaxGemCapacity = int(capacity)
	}
	if last := raw.Get("lastGenerated"); last.Exists() {
		pet.LastGenerated = last.Int()
	}
	pet.GenerationCount = int(raw.Get("generationCount").Int())
	pet.DisabledUntil = raw.Get("disabledUntil").Int()
	pet.Locked = raw.Get("locked").Bool()
	pet.Merged = raw.Get("merged").Bool()
	pet.StarRating = int(raw.Get("starRating").Int())

	for _, rb := range raw.Get("buffs").Array() {
		if b, ok := legacyBuff(rb, cat); ok {
			pet.Buffs = append(pet.Buffs, b)
		}
	}

	gems := int(raw.Get("currentGems").Int())
	if gems < 0 {
		gems = 0
	}
	if capacity := pet.EffectiveCapacity(); gems > capacity {
		gems = capacity
	}
	pet.CurrentGems = gems
	return pet, true
}

// legacyBuff prefers the catalog definition for known ids and falls back to
// decoding the embedded document.
func legacyBuff(raw gjson.Result, cat *catalog.Catalog) (catalog.Buff, bool) {
	if !raw.IsObject() {
		return catalog.Buff{}, false
	}
	if b, ok := cat.Buff(raw.Get("id").String()); ok {
		return b, true
	}
	var b catalog.Buff
	if err := json.Unmarshal([]byte(raw.Raw), &b); err != nil {
		return catalog.Buff{}, false
	}
	if b.ID == "" || b.Type == "" {
		return catalog.Buff{}, false
	}
	return b, true
}

// String summarises an import for logs.
func (s LegacyState) String() string {
	return fmt.Sprintf("pets=%d buffs=%d tiles=%d skipped=%d", len(s.Pets), len(s.Buffs), len(s.Tiles), len(s.Skipped))
}
