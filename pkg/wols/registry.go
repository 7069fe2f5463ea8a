package wols

import (
	"sort"
	"strings"
	"sync"
)

// registry holds the process-wide mutable vocabulary of the standard: the
// type-alias table, the platform-label map, the species and stage code
// tables, and the migration list. All access goes through the lock so
// registration from multiple goroutines stays safe.
type registry struct {
	mu            sync.RWMutex
	aliasTable    map[string]Type
	platformTable map[string]Type
	platformNames map[Type]string
	speciesByCode map[string]string
	codeBySpecies map[string]string
	stageByCode   map[string]Stage
	codeByStage   map[Stage]string
	migrations    []migration
}

var defaultRegistry = newRegistry()

// Built-in vocabulary. Seeds are slices, not maps, so seeding order is
// deterministic (first platform label per type becomes its representative).
var builtinAliases = []struct {
	alias string
	t     Type
}{
	{"LIQUID_CULTURE", TypeCulture},
	{"LC", TypeCulture},
	{"AGAR", TypeCulture},
	{"AGAR_CULTURE", TypeCulture},
	{"SLANT", TypeCulture},
	{"PLATE", TypeCulture},
	{"GRAIN_SPAWN", TypeSpawn},
	{"GRAIN", TypeSpawn},
	{"SAWDUST_SPAWN", TypeSpawn},
	{"SPAWN_BAG", TypeSpawn},
	{"BULK_SUBSTRATE", TypeSubstrate},
	{"BLOCK", TypeSubstrate},
	{"PRINT", TypeSporePrint},
	{"SYRINGE", TypeSporeSyringe},
	{"FRUIT", TypeFruitBody},
	{"MUSHROOM", TypeFruitBody},
	{"CLONE", TypeTissueSample},
	{"TISSUE", TypeTissueSample},
}

var builtinPlatforms = []struct {
	label string
	t     Type
}{
	{"Liquid Culture Syringe", TypeCulture},
	{"Agar Plate", TypeCulture},
	{"Culture Slant", TypeCulture},
	{"Grain Spawn Bag", TypeSpawn},
	{"Sawdust Spawn Block", TypeSpawn},
	{"Colonized Substrate Block", TypeSubstrate},
	{"Bulk Substrate Bag", TypeSubstrate},
	{"Spore Print", TypeSporePrint},
	{"Spore Syringe", TypeSporeSyringe},
	{"Fresh Mushroom", TypeFruitBody},
	{"Dried Fruit Body", TypeFruitBody},
	{"Tissue Clone", TypeTissueSample},
}

var builtinSpeciesCodes = []struct{ code, species string }{
	{"PLEOS", "Pleurotus ostreatus"},
	{"PLEER", "Pleurotus eryngii"},
	{"LENED", "Lentinula edodes"},
	{"HERER", "Hericium erinaceus"},
	{"GANLU", "Ganoderma lucidum"},
	{"AGABI", "Agaricus bisporus"},
	{"TRAVE", "Trametes versicolor"},
	{"CORMI", "Cordyceps militaris"},
	{"FLAVE", "Flammulina velutipes"},
	{"GRIFR", "Grifola frondosa"},
}

var builtinStageCodes = []struct {
	code  string
	stage Stage
}{
	{"IN", StageInoculated},
	{"CZ", StageColonizing},
	{"CD", StageColonized},
	{"PN", StagePinning},
	{"FR", StageFruiting},
	{"HV", StageHarvested},
	{"DM", StageDormant},
	{"CT", StageContaminated},
}

func newRegistry() *registry {
	r := &registry{
		aliasTable:    make(map[string]Type),
		platformTable: make(map[string]Type),
		platformNames: make(map[Type]string),
		speciesByCode: make(map[string]string),
		codeBySpecies: make(map[string]string),
		stageByCode:   make(map[string]Stage),
		codeByStage:   make(map[Stage]string),
	}
	for _, seed := range builtinAliases {
		r.registerAlias(seed.alias, seed.t)
	}
	for _, seed := range builtinPlatforms {
		r.registerPlatform(seed.label, seed.t)
	}
	for _, seed := range builtinSpeciesCodes {
		r.registerSpeciesCode(seed.code, seed.species)
	}
	for _, seed := range builtinStageCodes {
		r.registerStageCode(seed.code, seed.stage)
	}
	return r
}

func (r *registry) aliasFor(upper string) (Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.aliasTable[upper]
	return t, ok
}

func (r *registry) registerAlias(alias string, t Type) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aliasTable[upperAlias(alias)] = t
}

func (r *registry) aliases() map[string]Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]Type, len(r.aliasTable))
	for k, v := range r.aliasTable {
		out[k] = v
	}
	return out
}

func (r *registry) platformFor(key string) (Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.platformTable[key]
	return t, ok
}

func (r *registry) platformLabel(t Type) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	label, ok := r.platformNames[t]
	return label, ok
}

// registerPlatform updates the forward map, the representative label (first
// registration per type wins), and the alias table in one critical section.
func (r *registry) registerPlatform(label string, t Type) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.platformTable[platformKey(label)] = t
	if _, ok := r.platformNames[t]; !ok {
		r.platformNames[t] = label
	}
	r.aliasTable[upperAlias(label)] = t
}

// registerSpeciesCode replaces forward and reverse entries atomically,
// dropping stale pairs so neither direction dangles.
func (r *registry) registerSpeciesCode(code, species string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.speciesByCode[code]; ok {
		delete(r.codeBySpecies, prev)
	}
	if prev, ok := r.codeBySpecies[species]; ok {
		delete(r.speciesByCode, prev)
	}
	r.speciesByCode[code] = species
	r.codeBySpecies[species] = code
}

func (r *registry) speciesFor(code string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	species, ok := r.speciesByCode[code]
	return species, ok
}

func (r *registry) codeForSpecies(species string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	code, ok := r.codeBySpecies[species]
	return code, ok
}

func (r *registry) speciesCodes() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.speciesByCode))
	for k, v := range r.speciesByCode {
		out[k] = v
	}
	return out
}

func (r *registry) registerStageCode(code string, stage Stage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.stageByCode[code]; ok {
		delete(r.codeByStage, prev)
	}
	if prev, ok := r.codeByStage[stage]; ok {
		delete(r.stageByCode, prev)
	}
	r.stageByCode[code] = stage
	r.codeByStage[stage] = code
}

func (r *registry) stageFor(code string) (Stage, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stage, ok := r.stageByCode[code]
	return stage, ok
}

func (r *registry) codeForStage(stage Stage) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	code, ok := r.codeByStage[stage]
	return code, ok
}

func (r *registry) stageCodes() map[string]Stage {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]Stage, len(r.stageByCode))
	for k, v := range r.stageByCode {
		out[k] = v
	}
	return out
}

// registerMigration appends a step and re-sorts the list by source version,
// so registration order never affects resolution. The sort is stable: for
// duplicate source versions the earlier registration wins lookup.
func (r *registry) registerMigration(m migration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.migrations = append(r.migrations, m)
	sort.SliceStable(r.migrations, func(i, j int) bool {
		return CompareVersions(r.migrations[i].from, r.migrations[j].from) < 0
	})
}

func (r *registry) migrationSnapshot() []migration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]migration, len(r.migrations))
	copy(out, r.migrations)
	return out
}

func upperAlias(alias string) string {
	return strings.ToUpper(alias)
}
