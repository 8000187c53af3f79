// Package permission provides the permission-key vocabulary, an ordered
// permission catalog, and the dependency engine that keeps a role's
// permission set consistent with its read/write prerequisite rules.
//
// # Key format
//
// A permission key has the form "<resource>:<action>", for example
// "employee:read_all". The resource half groups keys in the [Catalog].
//
// # Dependency rules
//
// [Rules] holds two static relations: RequiresRead maps a write key to the
// read key it depends on, and CascadesTo maps a read key to the write keys
// that must be revoked with it. [Rules.Toggle] and [Rules.GroupToggle]
// apply them single-hop; [NewRules] rejects tables that chain, which keeps
// single-hop application equal to the full closure.
//
// # What this package must NOT do
//
//   - Access the network or any credential store.
//   - Import hrauth, jwt, session or access.
//   - Mutate a caller's [Set]; every operation returns a fresh set.
package permission
