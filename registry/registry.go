// Package registry keeps the per-vehicle set of accepted counting devices,
// replaced wholesale per feed publisher from vehicle catalogue updates.
package registry

import (
	"strings"
	"sync"

	"github.com/theoremus-urban-solutions/apc-anonymizer/schema"
)

// Registry maps a unique vehicle ID to the lower-cased identifiers of its
// accepted counting devices. A vehicle with no entry accepts any device.
type Registry struct {
	mu       sync.RWMutex
	accepted map[string]map[string]struct{}
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{accepted: map[string]map[string]struct{}{}}
}

// NewFromSeed builds a registry from a configured seed map. Device IDs are
// lower-cased; vehicles with an empty device list get no entry.
func NewFromSeed(seed map[string][]string) *Registry {
	r := New()
	for vehicleID, deviceIDs := range seed {
		set := map[string]struct{}{}
		for _, id := range deviceIDs {
			if id != "" {
				set[strings.ToLower(id)] = struct{}{}
			}
		}
		if len(set) > 0 {
			r.accepted[vehicleID] = set
		}
	}
	return r
}

// IsAccepted reports whether the device may count for the vehicle: true if
// the vehicle is unknown to the registry, or if the lower-cased device ID is
// listed for it.
func (r *Registry) IsAccepted(vehicleID, deviceID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set, ok := r.accepted[vehicleID]
	if !ok {
		return true
	}
	_, ok = set[strings.ToLower(deviceID)]
	return ok
}

// ReplaceForFeedPublisher replaces every entry under the feed publisher's
// prefix with the passenger counters of the supplied catalogue snapshot.
// Returns the number of vehicles with at least one counter.
func (r *Registry) ReplaceForFeedPublisher(feedPublisherID string, vehicles []schema.CatalogueVehicle) int {
	prefix := feedPublisherID + ":"
	r.mu.Lock()
	defer r.mu.Unlock()
	for key := range r.accepted {
		if strings.HasPrefix(key, prefix) {
			delete(r.accepted, key)
		}
	}
	added := 0
	for _, vehicle := range vehicles {
		vehicleID, ok := UniqueVehicleID(feedPublisherID, vehicle.OperatorID, vehicle.VehicleShortName)
		if !ok {
			continue
		}
		set := map[string]struct{}{}
		for _, eq := range vehicle.Equipment {
			if eq.Type == schema.EquipmentTypePassengerCounter && eq.ID != "" {
				set[strings.ToLower(eq.ID)] = struct{}{}
			}
		}
		if len(set) > 0 {
			r.accepted[vehicleID] = set
			added++
		}
	}
	return added
}

// Len returns the number of vehicles with a device restriction.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.accepted)
}

// UniqueVehicleID builds feedPublisherId:operatorId_vehicleShortName, the
// vehicle key format of the catalogue feed.
func UniqueVehicleID(feedPublisherID, operatorID, vehicleShortName string) (string, bool) {
	if operatorID == "" || vehicleShortName == "" {
		return "", false
	}
	return feedPublisherID + ":" + operatorID + "_" + vehicleShortName, true
}

// catalogueTopicPrefix precedes the feed publisher suffix in catalogue topic
// names, e.g. vehicle-catalogue-fi-jyvaskyla.
const catalogueTopicPrefix = "vehicle-catalogue-"

// FeedPublisherFromTopic derives the feed publisher ID from a catalogue
// topic name. The last path segment is matched against the
// vehicle-catalogue-<suffix> pattern with dashes converted to colons; if the
// pattern does not apply, the segment is matched against the known feed
// publishers by substring containment with colons converted to dashes.
func FeedPublisherFromTopic(topic string, knownFeedPublishers []string) (string, bool) {
	parts := strings.Split(topic, "/")
	name := parts[len(parts)-1]
	if name == "" {
		return "", false
	}
	if i := strings.Index(name, catalogueTopicPrefix); i >= 0 {
		suffix := name[i+len(catalogueTopicPrefix):]
		if suffix != "" {
			return strings.ReplaceAll(suffix, "-", ":"), true
		}
	}
	for _, fp := range knownFeedPublishers {
		if fp != "" && strings.Contains(name, strings.ReplaceAll(fp, ":", "-")) {
			return fp, true
		}
	}
	return "", false
}
