// Package schema defines the broker message payloads this service consumes
// and produces.
//
// Four payloads matter:
//   - Matched APC: door-level passenger counts joined with a GTFS Realtime
//     trip descriptor (inbound)
//   - Profile collection: per-vehicle-model CSV probability tables (inbound)
//   - Vehicle catalogue: fleet equipment listings (inbound)
//   - Anonymized APC: the published occupancy message (outbound)
//
// Only the field sets are defined here; transport encoding belongs to the
// broker client.
package schema
