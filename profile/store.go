package profile

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/theoremus-urban-solutions/apc-anonymizer/schema"
)

// profileMap pairs the two directions of one profile collection:
// vehicle -> model and model -> compiled profile.
type profileMap struct {
	vehicleModels map[string]string
	modelProfiles map[string]*VehicleProfile
}

func newProfileMap() profileMap {
	return profileMap{
		vehicleModels: map[string]string{},
		modelProfiles: map[string]*VehicleProfile{},
	}
}

// Store resolves vehicle profiles from a merged view of a slowly-changing
// base collection and a continuously refreshed overlay.
//
// Once an overlay update has spoken for a key, the base's entry for that key
// is evicted for good: a later, narrower overlay must not let a stale base
// entry resurface.
type Store struct {
	mu   sync.RWMutex
	base profileMap
	// effective view, rebuilt on every accepted overlay update
	vehicleModels map[string]string
	modelProfiles map[string]*VehicleProfile
}

// NewStore returns an empty store. Resolve misses everything until SeedBase
// or ApplyCollection succeeds.
func NewStore() *Store {
	return &Store{
		base:          newProfileMap(),
		vehicleModels: map[string]string{},
		modelProfiles: map[string]*VehicleProfile{},
	}
}

// SeedBase compiles a collection into the base map and makes it the
// effective view. Meant for the deploy-time seed, before any overlay
// message has arrived.
func (s *Store) SeedBase(c *schema.ProfileCollection) error {
	compiled, err := compileCollection(c)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.base = compiled
	s.vehicleModels = mergeStringMaps(compiled.vehicleModels, nil)
	s.modelProfiles = mergeProfileMaps(compiled.modelProfiles, nil)
	return nil
}

// Resolve returns the compiled profile for a unique vehicle ID, if the
// merged view knows both the vehicle's model and that model's profile.
func (s *Store) Resolve(vehicleID string) (*VehicleProfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	model, ok := s.vehicleModels[vehicleID]
	if !ok {
		return nil, false
	}
	p, ok := s.modelProfiles[model]
	return p, ok
}

// ApplyCollection validates and compiles a freshly parsed collection and
// installs it as the new overlay. On any validation failure the prior state
// is left untouched.
func (s *Store) ApplyCollection(c *schema.ProfileCollection) error {
	overlay, err := compileCollection(c)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range overlay.vehicleModels {
		delete(s.base.vehicleModels, k)
	}
	for k := range overlay.modelProfiles {
		delete(s.base.modelProfiles, k)
	}
	s.vehicleModels = mergeStringMaps(s.base.vehicleModels, overlay.vehicleModels)
	s.modelProfiles = mergeProfileMaps(s.base.modelProfiles, overlay.modelProfiles)
	return nil
}

// VehicleCount returns the number of vehicles in the effective view.
func (s *Store) VehicleCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vehicleModels)
}

// compileCollection checks collection consistency and compiles each model's
// CSV table. A model whose table fails to parse is skipped and logged; the
// rest of the collection still compiles.
func compileCollection(c *schema.ProfileCollection) (profileMap, error) {
	if err := checkConsistency(c); err != nil {
		return profileMap{}, err
	}
	out := newProfileMap()
	for vehicleID, model := range c.VehicleModels {
		out.vehicleModels[vehicleID] = model
	}
	for model, csvText := range c.ModelProfiles {
		p, err := Compile(model, csvText)
		if err != nil {
			log.Printf("skipping model in profile collection: %v", err)
			continue
		}
		out.modelProfiles[model] = p
	}
	return out, nil
}

// checkConsistency requires every model referenced by a vehicle to exist in
// modelProfiles and vice versa, and every vehicle key to carry the
// feed-publisher delimiter.
func checkConsistency(c *schema.ProfileCollection) error {
	referenced := map[string]struct{}{}
	for vehicleID, model := range c.VehicleModels {
		if !strings.Contains(vehicleID, ":") {
			return fmt.Errorf("vehicle key %q lacks the \":\" feed publisher separator", vehicleID)
		}
		referenced[model] = struct{}{}
	}
	for model := range referenced {
		if _, ok := c.ModelProfiles[model]; !ok {
			return fmt.Errorf("model %q referenced in vehicleModels is missing from modelProfiles", model)
		}
	}
	for model := range c.ModelProfiles {
		if _, ok := referenced[model]; !ok {
			return fmt.Errorf("model %q in modelProfiles is referenced by no vehicle", model)
		}
	}
	return nil
}

func mergeStringMaps(base, overlay map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		out[k] = v
	}
	return out
}

func mergeProfileMaps(base, overlay map[string]*VehicleProfile) map[string]*VehicleProfile {
	out := make(map[string]*VehicleProfile, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		out[k] = v
	}
	return out
}
